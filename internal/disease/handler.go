// File: internal/disease/handler.go
package disease

import (
	"net/http"

	"krishipredict_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for disease handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new disease handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("DiseaseHandler")}
}

// RegisterRoutes sets up detection and alert routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/disease/detect", h.detect)
	router.GET("/alerts/:district", h.alerts)
}

func (h *Handler) detect(c *gin.Context) {
	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	raw, err := h.service.Detect(c.Request.Context(), body)
	if err != nil {
		h.logger.Error("Disease detection failed", zap.Error(err))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithMessage("Disease analysis failed"))
		return
	}
	common.RespondRaw(c, http.StatusOK, raw)
}

// alerts degrades to an empty list when the store fails.
func (h *Handler) alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context(), c.Param("district"))
	if err != nil {
		h.logger.Error("Loading alerts failed", zap.String("district", c.Param("district")), zap.Error(err))
		c.JSON(http.StatusOK, []Alert{})
		return
	}
	c.JSON(http.StatusOK, alerts)
}
