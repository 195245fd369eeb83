// File: internal/chat/handler.go
package chat

import (
	"errors"
	"net/http"

	"krishipredict_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request is the body of POST /chat. Lang is an optional language code for
// the fallback replies.
type Request struct {
	Message string `json:"message" binding:"required,max=4000"`
	Lang    string `json:"lang" binding:"max=35"`
}

// Response always carries a reply, even when the provider is down.
type Response struct {
	Reply string `json:"reply"`
}

// Handler struct holds dependencies for the chatbot handler.
type Handler struct {
	client Client
	logger *zap.Logger
}

// NewHandler creates a new chat handler.
func NewHandler(client Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, logger: logger.Named("ChatHandler")}
}

// RegisterRoutes sets up the chat route.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/chat", h.chat)
}

func (h *Handler) chat(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	reply, err := h.client.Complete(c.Request.Context(), req.Message)
	if err != nil {
		tag := replyLanguage(req.Lang, c.GetHeader("Accept-Language"))
		if errors.Is(err, ErrNotConfigured) {
			reply = canned(tag, replyUnavailable)
		} else {
			h.logger.Error("Chat completion failed", zap.Error(err))
			reply = canned(tag, replyNetworkError)
		}
	}
	c.JSON(http.StatusOK, Response{Reply: reply})
}
