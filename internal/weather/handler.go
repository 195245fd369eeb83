// File: internal/weather/handler.go
package weather

import (
	"net/http"

	"krishipredict_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for the weather handler.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new weather handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("WeatherHandler")}
}

// RegisterRoutes sets up the weather route.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/weather/:district", h.forecast)
}

func (h *Handler) forecast(c *gin.Context) {
	forecast, err := h.service.Forecast(c.Request.Context(), c.Param("district"))
	if err != nil {
		h.logger.Error("Weather fetch failed", zap.String("district", c.Param("district")), zap.Error(err))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithMessage("Weather unavailable. Please try again."))
		return
	}
	c.JSON(http.StatusOK, forecast)
}
