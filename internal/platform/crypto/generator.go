// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// GenerateSecureRandomString creates a cryptographically secure random string.
// n is the number of bytes of randomness, resulting string length will be larger due to base64 encoding.
func GenerateSecureRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateNumericCode returns a uniformly random decimal code of exactly
// digits digits, leading zeros excluded (1000-9999 for four digits).
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 9 {
		return "", fmt.Errorf("unsupported code length %d", digits)
	}
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	n, err := rand.Int(rand.Reader, big.NewInt(low*9))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+low), nil
}
