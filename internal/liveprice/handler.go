// File: internal/liveprice/handler.go
package liveprice

import (
	"fmt"
	"net/http"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the live mandi price board. It talks to the repository
// directly; there is no logic beyond the time window.
type Handler struct {
	repo     Repository
	activity activity.Recorder
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new live price handler.
func NewHandler(repo Repository, recorder activity.Recorder, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		repo:     repo,
		activity: recorder,
		cfg:      cfg,
		logger:   logger.Named("LivePriceHandler"),
		now:      time.Now,
	}
}

// RegisterRoutes sets up the /report routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reportGroup := router.Group("/report")
	{
		reportGroup.POST("/add", h.add)
		reportGroup.GET("/recent/:district", h.recent)
	}
}

func (h *Handler) add(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	price := req.ToLivePrice(h.now(), h.cfg.DistrictOr(""))
	if err := h.repo.Create(c.Request.Context(), price); err != nil {
		h.logger.Error("Saving live price failed", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Failed"))
		return
	}
	h.activity.Record(c.Request.Context(), activity.KindPriceReported,
		fmt.Sprintf("%s: %s at Rs %g in %s", price.District, price.Crop, price.Price, price.Mandi))
	c.JSON(http.StatusOK, common.StatusResponse{Status: "success"})
}

func (h *Handler) recent(c *gin.Context) {
	since := h.now().Add(-RecentWindow)
	prices, err := h.repo.Recent(c.Request.Context(), c.Param("district"), since, RecentLimit)
	if err != nil {
		h.logger.Error("Loading live prices failed", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Fetch failed"))
		return
	}
	c.JSON(http.StatusOK, prices)
}
