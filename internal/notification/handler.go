// File: internal/notification/handler.go
package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("NotificationHandler"),
	}
}

// RegisterRoutes sets up the public notification feed.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications", h.getNotifications)
}

// getNotifications answers 500 with an empty list on failure, which is what
// the app renders as "no notices".
func (h *Handler) getNotifications(c *gin.Context) {
	notifications, err := h.service.Feed(c.Request.Context(), c.Query("district"))
	if err != nil {
		h.logger.Error("Loading notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, []Notification{})
		return
	}
	c.JSON(http.StatusOK, notifications)
}
