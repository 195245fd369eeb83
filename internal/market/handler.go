// File: internal/market/handler.go
package market

import (
	"net/http"

	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for Kisan Bazaar handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new market handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	common.RegisterValidators()
	return &Handler{service: service, logger: logger.Named("MarketHandler")}
}

// RegisterRoutes sets up the /market routes. identityMW attaches the
// caller's token claims if any.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, identityMW gin.HandlerFunc) {
	marketGroup := router.Group("/market")
	{
		marketGroup.POST("/sell", h.sell)
		marketGroup.GET("/list/:district", h.listByDistrict)
		marketGroup.GET("/search", h.search)

		sellerGroup := marketGroup.Group("/listing/:id")
		sellerGroup.Use(identityMW)
		{
			sellerGroup.PATCH("/status", h.updateStatus)
			sellerGroup.POST("/image", h.uploadImage)
		}
	}
}

func (h *Handler) sell(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Sell: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	listing, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, CreatedResponse{
		Status:  "success",
		Message: "Crop Listed Successfully",
		Listing: listing,
	})
}

func (h *Handler) listByDistrict(c *gin.Context) {
	listings, err := h.service.ListByDistrict(c.Request.Context(), c.Param("district"))
	if err != nil {
		h.logger.Error("Listing fetch failed", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Fetch failed"))
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *Handler) search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	listings, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("Listing search failed", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithMessage("Search failed"))
		return
	}
	c.JSON(http.StatusOK, listings)
}

// callerMayAct rejects a signed-in caller acting for another seller.
func callerMayAct(c *gin.Context, sellerPhone string) bool {
	caller := common.GetUserPhoneFromContext(c)
	return caller == "" || caller == user.NormalizePhone(sellerPhone)
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if !callerMayAct(c, req.SellerPhone) {
		common.RespondWithError(c, common.ErrForbidden)
		return
	}

	listing, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) uploadImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}
	sellerPhone := c.PostForm("sellerPhone")
	if sellerPhone == "" {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"sellerphone": "The sellerphone field is required."}))
		return
	}
	if !callerMayAct(c, sellerPhone) {
		common.RespondWithError(c, common.ErrForbidden)
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("An image file is required in the 'image' field."))
		return
	}

	listing, err := h.service.AttachImage(c.Request.Context(), id, sellerPhone, file)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
