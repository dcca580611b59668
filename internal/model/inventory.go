package model

import "time"

type InventoryItem struct {
	ID            int64
	TenantID      int64
	Name          string
	SKU           *string
	Quantity      int64
	ReorderLevel  int64 // alerting threshold; quantity at or below it is "low"
	BookingTypeID *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLow reports whether the item sits at or below its reorder level.
func (i *InventoryItem) IsLow() bool {
	return i.Quantity <= i.ReorderLevel
}
