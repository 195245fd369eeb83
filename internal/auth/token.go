// File: internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/platform/crypto"
	"krishipredict_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenIssuer = "krishipredict_backend"

type JWTService struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg *config.Config, logger *zap.Logger) shared.TokenService {
	return &JWTService{cfg: cfg, logger: logger.Named("JWTService")}
}

func (s *JWTService) secret() ([]byte, error) {
	if s.cfg.JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY is not configured")
	}
	return []byte(s.cfg.JWTSecretKey), nil
}

func (s *JWTService) GenerateAccessToken(subject shared.TokenSubject) (string, time.Time, error) {
	key, err := s.secret()
	if err != nil {
		return "", time.Time{}, err
	}
	jti, err := crypto.GenerateSecureRandomString(16)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not generate token id: %w", err)
	}

	now := time.Now()
	expirationTime := now.Add(s.cfg.JWTAccessTokenExpiryMinutes)
	claims := &shared.Claims{
		UserID: subject.GetID(),
		Phone:  subject.GetPhone(),
		Role:   subject.GetRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   subject.GetID().String(),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign access token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// ValidateToken validates a JWT token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*shared.Claims, error) {
	key, err := s.secret()
	if err != nil {
		return nil, err
	}
	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
