package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
)

func InventoryRouter(rg *gin.RouterGroup, h *handler.InventoryHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.POST("/:item_id/deduct", h.Deduct)
	rg.POST("/:item_id/restock", h.Restock)
}
