package router

import (
	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/handler"
)

func FormRouter(rg *gin.RouterGroup, h *handler.FormHandler) {
	rg.POST("/templates", h.CreateTemplate)
	rg.GET("/templates", h.ListTemplates)
	rg.POST("/templates/link", h.LinkTemplate)
	rg.GET("/submissions/:submission_id", h.GetSubmission)
}
