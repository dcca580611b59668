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

type FormHandler struct {
	formService service.FormService
}

func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

func (h *FormHandler) CreateTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	var req dto.CreateFormTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmpl, err := h.formService.CreateTemplate(ctx, tenantID, req.Name, req.Fields)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create form template", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create form template"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToFormTemplateResponse(tmpl))
}

func (h *FormHandler) LinkTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	var req dto.LinkFormTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.formService.LinkTemplate(ctx, tenantID, req.BookingTypeID, req.FormTemplateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking type or form template not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to link form template", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link form template"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *FormHandler) ListTemplates(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	templates, err := h.formService.ListTemplates(ctx, tenantID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list form templates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list form templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": dto.ToFormTemplateResponses(templates)})
}

func (h *FormHandler) GetSubmission(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	submissionID, ok := pathID(c, "submission_id")
	if !ok {
		return
	}

	submission, err := h.formService.GetSubmission(ctx, tenantID, submissionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form submission not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load form submission", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load form submission"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFormSubmissionResponse(submission))
}

// CompleteSubmission serves the public form page: the contact submits their
// answers here.
func (h *FormHandler) CompleteSubmission(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	submissionID, ok := pathID(c, "submission_id")
	if !ok {
		return
	}

	var req dto.CompleteSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.formService.CompleteSubmission(ctx, tenantID, submissionID, req.Answers); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form submission not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to complete form submission", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete form submission"})
		return
	}

	c.Status(http.StatusNoContent)
}
