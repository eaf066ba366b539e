package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/dto"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/services"
)

type MessageHandler struct {
	messages *services.MessageService
	log      *logger.Logger
}

func NewMessageHandler(messages *services.MessageService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		log:      log,
	}
}

// ListConversations returns the caller's conversations, most recent first.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	conversations, err := h.messages.GetUserConversations(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"conversations": conversations})
}

// SendMessage stores a message from the caller.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req dto.CreateMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, _ := middleware.GetUserID(c)
	msg, err := h.messages.CreateMessage(c.Request.Context(), userID, req.ToUserID, req.Content)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"message": msg})
}

// MarkAsRead flags a message as read.
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	if err := h.messages.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, nil)
}
