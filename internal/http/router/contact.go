package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
)

func ContactRouter(rg *gin.RouterGroup, h *handler.ContactHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:contact_id", h.Get)
	rg.PUT("/:contact_id", h.Update)
	rg.DELETE("/:contact_id", h.Delete)
}
