// File: internal/auth/handler.go
package auth

import (
	"net/http"

	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	common.RegisterValidators()
	return &Handler{
		service: service,
		logger:  logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the /auth routes. loginMW guards the endpoints that
// send or check OTPs; identityMW attaches the caller's token claims if any;
// authMW requires them.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, loginMW, identityMW, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", loginMW, h.login)
		authGroup.POST("/verify-otp", loginMW, h.verifyOTP)
		authGroup.POST("/update", identityMW, h.update)
		authGroup.GET("/profile/:phone", h.profile)
		authGroup.GET("/me", authMW, h.me)
	}
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Login: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err).WithMessage("Phone required"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Phone)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	resp, err := h.service.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Update: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	// A signed-in caller may only edit their own profile.
	if callerPhone := common.GetUserPhoneFromContext(c); callerPhone != "" &&
		callerPhone != user.NormalizePhone(req.Phone) {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You can only update your own profile."))
		return
	}

	usr, err := h.service.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, UpdateProfileResponse{Status: "success", User: usr})
}

func (h *Handler) profile(c *gin.Context) {
	usr, err := h.service.GetProfile(c.Request.Context(), c.Param("phone"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// me returns the profile of the token holder.
func (h *Handler) me(c *gin.Context) {
	phone := common.GetUserPhoneFromContext(c)
	if phone == "" {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	h.logger.Debug("Profile requested by token holder", zap.String("userID", common.GetUserIDFromContext(c).String()))
	usr, err := h.service.GetProfile(c.Request.Context(), phone)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}
