// File: internal/shared/core.go
package shared

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSubject is the user data needed to mint a session token.
type TokenSubject interface {
	GetID() uuid.UUID
	GetPhone() string
	GetRole() string
}

// TokenService issues and validates the session tokens handed out after
// OTP verification.
type TokenService interface {
	GenerateAccessToken(subject TokenSubject) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Phone  string    `json:"phone"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenResponse is returned to the client after a successful OTP check.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}
