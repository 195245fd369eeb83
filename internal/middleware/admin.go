// File: internal/middleware/admin.go
package middleware

import (
	"crypto/subtle"

	"krishipredict_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminKeyMiddleware gates the admin back-office on a shared key sent in the
// X-Admin-Key header. An empty configured key locks the routes entirely.
func AdminKeyMiddleware(adminKey string, logger *zap.Logger) gin.HandlerFunc {
	expected := []byte(adminKey)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			logger.Warn("Admin route requested but ADMIN_PASSWORD is not configured", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Admin access is disabled."))
			return
		}
		provided := []byte(c.GetHeader(common.AdminKeyHeader))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			logger.Warn("Rejected admin request", zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid admin key."))
			return
		}
		c.Next()
	}
}
