// File: internal/common/context_helpers.go
package common

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTokenFromContext retrieves the bearer token from the Authorization header.
// Returns an empty string if not found.
func GetTokenFromContext(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetUserIDFromContext retrieves the user ID from the Gin context.
// Returns uuid.Nil if not found or not a UUID.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetUserPhoneFromContext returns the phone of an authenticated caller, or "".
func GetUserPhoneFromContext(c *gin.Context) string {
	return c.GetString(UserPhoneKey)
}

// DistrictOrDefault trims the district and falls back to the default one.
func DistrictOrDefault(district string) string {
	if d := strings.TrimSpace(district); d != "" {
		return d
	}
	return DefaultDistrict
}

// LikePattern builds a case-insensitive substring pattern for
// `LOWER(col) LIKE ? ESCAPE '\'`, escaping the LIKE wildcards.
func LikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
