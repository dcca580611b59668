package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
)

func BookingRouter(rg *gin.RouterGroup, h *handler.BookingHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:booking_id", h.Get)
	rg.POST("/:booking_id/cancel", h.Cancel)
}
