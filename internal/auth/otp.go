// File: internal/auth/otp.go
package auth

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// maxOTPAttempts bounds guesses against one issued code.
const maxOTPAttempts = 5

// OTPStore keeps issued one-time codes until they are used or expire.
type OTPStore interface {
	Put(phone, code string)
	// Verify consumes the code on success.
	Verify(phone, code string) bool
}

type otpEntry struct {
	code     string
	attempts int
}

// InMemoryOTPStore is an OTPStore backed by an expiring cache.
type InMemoryOTPStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

// NewInMemoryOTPStore creates a store whose codes live for ttl.
func NewInMemoryOTPStore(ttl time.Duration) *InMemoryOTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryOTPStore{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Put replaces any earlier code for the phone.
func (s *InMemoryOTPStore) Put(phone, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(phone, &otpEntry{code: code}, s.ttl)
}

func (s *InMemoryOTPStore) Verify(phone, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.cache.Get(phone)
	if !found {
		return false
	}
	entry := v.(*otpEntry)
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) == 1 {
		s.cache.Delete(phone)
		return true
	}
	entry.attempts++
	if entry.attempts >= maxOTPAttempts {
		s.cache.Delete(phone)
	}
	return false
}
