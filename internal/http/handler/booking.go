package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookline.app/core/internal/http/dto"
	"bookline.app/core/internal/service"
	"bookline.app/core/internal/store"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.Create(ctx, tenantID, service.CreateBookingInput{
		ContactID:     req.ContactID,
		BookingTypeID: req.BookingTypeID,
		ScheduledAt:   req.ScheduledAt,
		Notes:         req.Notes,
	})
	if err != nil {
		h.replyCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// CreatePublic serves the unauthenticated booking page.
func (h *BookingHandler) CreatePublic(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	var req dto.PublicBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == nil && req.Phone == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an email or phone number is required"})
		return
	}

	booking, err := h.bookingService.CreatePublic(ctx, tenantID, service.PublicBookingInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		BookingTypeID: req.BookingTypeID,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		h.replyCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}

	if err := h.bookingService.Cancel(ctx, tenantID, bookingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to cancel booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(ctx, tenantID, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	bookings, err := h.bookingService.List(ctx, tenantID, int32(limit))
	if err != nil {
		slog.ErrorContext(ctx, "failed to list bookings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": dto.ToBookingResponses(bookings)})
}

func (h *BookingHandler) replyCreateError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contact or booking type not found"})
	case errors.Is(err, service.ErrBookingTypeInactive):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "booking type is not active"})
	default:
		slog.ErrorContext(ctx, "failed to create booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
	}
}
