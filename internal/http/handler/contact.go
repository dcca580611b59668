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

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactService.Create(ctx, tenantID, service.CreateContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contact"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToContactResponse(contact))
}

func (h *ContactHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	contactID, ok := pathID(c, "contact_id")
	if !ok {
		return
	}

	contact, err := h.contactService.Get(ctx, tenantID, contactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contact"})
		return
	}

	c.JSON(http.StatusOK, dto.ToContactResponse(contact))
}

func (h *ContactHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	contactID, ok := pathID(c, "contact_id")
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactService.Get(ctx, tenantID, contactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contact"})
		return
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Notes = req.Notes

	if err := h.contactService.Update(ctx, contact); err != nil {
		slog.ErrorContext(ctx, "failed to update contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update contact"})
		return
	}

	c.JSON(http.StatusOK, dto.ToContactResponse(contact))
}

func (h *ContactHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	contactID, ok := pathID(c, "contact_id")
	if !ok {
		return
	}

	if err := h.contactService.Delete(ctx, tenantID, contactID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to delete contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete contact"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ContactHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	contacts, err := h.contactService.List(ctx, tenantID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": dto.ToContactResponses(contacts)})
}
