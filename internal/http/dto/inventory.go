package dto

import (
	"time"

	"bookline.app/core/internal/model"
)

type CreateInventoryItemRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=255"`
	SKU           *string `json:"sku,omitempty" binding:"omitempty,max=64"`
	Quantity      int64   `json:"quantity" binding:"min=0"`
	ReorderLevel  int64   `json:"reorder_level" binding:"min=0"`
	BookingTypeID *int64  `json:"booking_type_id,string,omitempty"`
}

type AdjustInventoryRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type InventoryItemResponse struct {
	ID            int64     `json:"id,string"`
	Name          string    `json:"name"`
	SKU           *string   `json:"sku,omitempty"`
	Quantity      int64     `json:"quantity"`
	ReorderLevel  int64     `json:"reorder_level"`
	BookingTypeID *int64    `json:"booking_type_id,string,omitempty"`
	IsLow         bool      `json:"is_low"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToInventoryItemResponse(item *model.InventoryItem) *InventoryItemResponse {
	return &InventoryItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		SKU:           item.SKU,
		Quantity:      item.Quantity,
		ReorderLevel:  item.ReorderLevel,
		BookingTypeID: item.BookingTypeID,
		IsLow:         item.IsLow(),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func ToInventoryItemResponses(items []model.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, 0, len(items))
	for i := range items {
		out = append(out, *ToInventoryItemResponse(&items[i]))
	}
	return out
}
