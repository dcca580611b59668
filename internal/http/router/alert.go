package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
)

func AlertRouter(rg *gin.RouterGroup, h *handler.AlertHandler) {
	rg.GET("", h.ListActive)
	rg.POST("/:alert_id/resolve", h.Resolve)
}
