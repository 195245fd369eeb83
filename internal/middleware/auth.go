// File: internal/middleware/auth.go
package middleware

import (
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(tokenService shared.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}
		if !authenticate(c, tokenService, tokenString, logger) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when a bearer token
// is present and rejects only tokens that are present but invalid.
func OptionalAuthMiddleware(tokenService shared.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString != "" && !authenticate(c, tokenService, tokenString, logger) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokenService shared.TokenService, tokenString string, logger *zap.Logger) bool {
	claims, err := tokenService.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("Token validation failed", zap.Error(err))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
		return false
	}

	c.Set(common.UserIDKey, claims.UserID)
	c.Set(common.UserPhoneKey, claims.Phone)
	c.Set(common.UserRoleKey, claims.Role)

	logger.Debug("User authenticated",
		zap.String("userID", claims.UserID.String()),
		zap.String("role", claims.Role),
	)
	return true
}
