package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
	"bookline.app/core/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public endpoints: the self-service booking page and the intake form
	// page linked from outbound messages.
	bookingHandler := handler.NewBookingHandler(services.Bookings())
	formHandler := handler.NewFormHandler(services.Forms())
	public := router.Group("/public/tenants/:tenant_id")
	{
		public.POST("/bookings", bookingHandler.CreatePublic)
		public.POST("/forms/submissions/:submission_id/complete", formHandler.CompleteSubmission)
	}

	v1 := router.Group("/api/v1/tenants/:tenant_id")
	{
		contactHandler := handler.NewContactHandler(services.Contacts())
		ContactRouter(v1.Group("/contacts"), contactHandler)

		BookingRouter(v1.Group("/bookings"), bookingHandler)

		messageHandler := handler.NewMessageHandler(services.Messages())
		MessageRouter(v1.Group("/conversations"), messageHandler)

		FormRouter(v1.Group("/forms"), formHandler)

		inventoryHandler := handler.NewInventoryHandler(services.Inventory())
		InventoryRouter(v1.Group("/inventory"), inventoryHandler)

		alertHandler := handler.NewAlertHandler(services.Alerts())
		AlertRouter(v1.Group("/alerts"), alertHandler)
	}
}
