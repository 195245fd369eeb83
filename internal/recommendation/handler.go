// File: internal/recommendation/handler.go
package recommendation

import (
	"net/http"

	"krishipredict_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves crop recommendations and the agronomy calculators.
type Handler struct {
	ranker Ranker
	logger *zap.Logger
}

// NewHandler creates a new recommendation handler.
func NewHandler(ranker Ranker, logger *zap.Logger) *Handler {
	return &Handler{ranker: ranker, logger: logger.Named("RecommendationHandler")}
}

// RegisterRoutes sets up the recommendation and calculator routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recommendations/:district", h.recommend)

	calc := router.Group("/calculator")
	{
		calc.POST("/profit", h.profit)
		calc.POST("/fertilizer", h.fertilizer)
	}
}

func (h *Handler) recommend(c *gin.Context) {
	rec, err := h.ranker.Rank(c.Request.Context(), c.Param("district"))
	if err != nil {
		common.RespondWithError(c, common.ErrServiceUnavailable.WithMessage("Analysis failed. Try again."))
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) profit(c *gin.Context) {
	var req ProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	c.JSON(http.StatusOK, SimulateProfit(req))
}

func (h *Handler) fertilizer(c *gin.Context) {
	var req FertilizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	c.JSON(http.StatusOK, PlanFertilizer(req))
}
