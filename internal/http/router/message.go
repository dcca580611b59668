package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
)

func MessageRouter(rg *gin.RouterGroup, h *handler.MessageHandler) {
	rg.GET("/:conversation_id/messages", h.List)
	rg.POST("/:conversation_id/messages", h.Reply)
}
