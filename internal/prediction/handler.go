// File: internal/prediction/handler.go
package prediction

import (
	"net/http"

	"krishipredict_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultAreaAcres is sent when the client leaves area_acres out.
const DefaultAreaAcres = 1.0

var errMLUnavailable = common.ErrServiceUnavailable.WithMessage("ML Server unavailable. Please try again.")

// Handler proxies price prediction requests.
type Handler struct {
	client Client
	logger *zap.Logger
}

// NewHandler creates a new prediction handler.
func NewHandler(client Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, logger: logger.Named("PredictionHandler")}
}

// RegisterRoutes sets up the routes for price prediction.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/predict", h.predict)
}

func (h *Handler) predict(c *gin.Context) {
	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if v, ok := body["area_acres"]; !ok || v == nil {
		body["area_acres"] = DefaultAreaAcres
	}

	raw, err := h.client.PredictRaw(c.Request.Context(), body)
	if err != nil {
		h.logger.Error("Prediction request failed", zap.Error(err))
		common.RespondWithError(c, errMLUnavailable)
		return
	}
	common.RespondRaw(c, http.StatusOK, raw)
}
