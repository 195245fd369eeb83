// File: internal/common/response.go
package common

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondWithError sends a JSON error response. Errors that are not an
// APIError are logged and hidden behind a generic 500.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		if l, exists := c.Get(LoggerKey); exists {
			if logger, ok := l.(*zap.Logger); ok {
				logger.Error("Unhandled internal error being wrapped", zap.Error(err))
			}
		}
		apiErr = ErrInternalServer
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

// RespondRaw relays an upstream JSON body unchanged.
func RespondRaw(c *gin.Context, statusCode int, body []byte) {
	c.Data(statusCode, "application/json; charset=utf-8", body)
}
