// File: internal/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllUsers is the broadcast audience reported for notices sent everywhere.
const AllUsers = "All Users"

// Handler struct holds dependencies for the admin back-office.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("AdminHandler")}
}

// RegisterRoutes sets up the /admin routes behind adminMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, adminMW gin.HandlerFunc) {
	adminGroup := router.Group("/admin")
	adminGroup.Use(adminMW)
	{
		adminGroup.GET("/stats", h.stats)

		adminGroup.GET("/users", h.users)
		adminGroup.DELETE("/user/:id", h.deleteUser)

		adminGroup.GET("/reports", h.reports)
		adminGroup.DELETE("/report/:id", h.deleteReport)

		adminGroup.GET("/listings", h.listings)
		adminGroup.DELETE("/listing/:id", h.deleteListing)

		adminGroup.POST("/broadcast", h.broadcast)
	}
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Stats failed", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Stats failed"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) users(c *gin.Context) {
	users, err := h.service.Users(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) reports(c *gin.Context) {
	reports, err := h.service.Reports(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handler) listings(c *gin.Context) {
	listings, err := h.service.Listings(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) deleteUser(c *gin.Context) {
	h.delete(c, h.service.DeleteUser)
}

func (h *Handler) deleteReport(c *gin.Context) {
	h.delete(c, h.service.DeleteReport)
}

func (h *Handler) deleteListing(c *gin.Context) {
	h.delete(c, h.service.DeleteListing)
}

func (h *Handler) delete(c *gin.Context, del func(ctx context.Context, id uuid.UUID) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.StatusResponse{Status: "deleted"})
}

func (h *Handler) broadcast(c *gin.Context) {
	var req notification.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	n, err := h.service.Broadcast(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	audience := AllUsers
	if n.TargetDistrict != notification.TargetAll {
		audience = n.TargetDistrict
	}
	c.JSON(http.StatusOK, common.StatusResponse{Status: "sent", Count: audience})
}
