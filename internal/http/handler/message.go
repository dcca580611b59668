package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/dto"
	"bookline.app/core/internal/service"
	"bookline.app/core/internal/store"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Reply records a staff-authored message in a conversation. This is the
// endpoint that cancels the conversation's pending automated follow-up.
func (h *MessageHandler) Reply(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversation_id")
	if !ok {
		return
	}

	var req dto.StaffReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageService.StaffReply(ctx, tenantID, conversationID, req.Body)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to record staff reply", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record reply"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(msg))
}

func (h *MessageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversation_id")
	if !ok {
		return
	}

	messages, err := h.messageService.List(ctx, tenantID, conversationID, 100)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list messages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageResponses(messages)})
}
