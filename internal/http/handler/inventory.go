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

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	var req dto.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventoryService.Create(ctx, tenantID, service.CreateInventoryItemInput{
		Name:          req.Name,
		SKU:           req.SKU,
		Quantity:      req.Quantity,
		ReorderLevel:  req.ReorderLevel,
		BookingTypeID: req.BookingTypeID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create inventory item", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create inventory item"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToInventoryItemResponse(item))
}

func (h *InventoryHandler) Deduct(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req dto.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventoryService.Deduct(ctx, tenantID, itemID, req.Amount)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory item not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to deduct inventory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deduct inventory"})
		return
	}

	c.JSON(http.StatusOK, dto.ToInventoryItemResponse(item))
}

func (h *InventoryHandler) Restock(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req dto.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventoryService.Restock(ctx, tenantID, itemID, req.Amount)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory item not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to restock inventory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restock inventory"})
		return
	}

	c.JSON(http.StatusOK, dto.ToInventoryItemResponse(item))
}

func (h *InventoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := pathID(c, "tenant_id")
	if !ok {
		return
	}

	items, err := h.inventoryService.List(ctx, tenantID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list inventory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.ToInventoryItemResponses(items)})
}
