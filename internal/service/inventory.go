package service

import (
	"context"
	"fmt"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/store"
)

type CreateInventoryItemInput struct {
	Name          string
	SKU           *string
	Quantity      int64
	ReorderLevel  int64
	BookingTypeID *int64
}

type InventoryService interface {
	Create(ctx context.Context, tenantID int64, input CreateInventoryItemInput) (*model.InventoryItem, error)
	// Deduct consumes stock and announces the reorder-level crossing, if
	// this deduction caused one.
	Deduct(ctx context.Context, tenantID, itemID, amount int64) (*model.InventoryItem, error)
	Restock(ctx context.Context, tenantID, itemID, amount int64) (*model.InventoryItem, error)
	List(ctx context.Context, tenantID int64) ([]model.InventoryItem, error)
}

type inventoryService struct {
	stores store.Provider
	bus    *bus.Bus
}

func NewInventoryService(stores store.Provider, b *bus.Bus) InventoryService {
	return &inventoryService{stores: stores, bus: b}
}

func (s *inventoryService) Create(ctx context.Context, tenantID int64, input CreateInventoryItemInput) (*model.InventoryItem, error) {
	item := &model.InventoryItem{
		ID:            id.New(),
		TenantID:      tenantID,
		Name:          input.Name,
		SKU:           input.SKU,
		Quantity:      input.Quantity,
		ReorderLevel:  input.ReorderLevel,
		BookingTypeID: input.BookingTypeID,
	}
	if err := s.stores.Inventory().Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) Deduct(ctx context.Context, tenantID, itemID, amount int64) (*model.InventoryItem, error) {
	item, err := s.stores.Inventory().GetByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	wasLow := item.IsLow()
	updated, err := s.stores.Inventory().Deduct(ctx, tenantID, itemID, amount)
	if err != nil {
		return nil, fmt.Errorf("deducting inventory: %w", err)
	}

	if !wasLow && updated.IsLow() {
		s.bus.Emit(ctx, domain.InventoryLow{
			TenantID:     tenantID,
			ItemID:       updated.ID,
			Quantity:     updated.Quantity,
			ReorderLevel: updated.ReorderLevel,
			TraceID:      logger.TraceID(ctx),
		})
	}
	return updated, nil
}

func (s *inventoryService) Restock(ctx context.Context, tenantID, itemID, amount int64) (*model.InventoryItem, error) {
	updated, err := s.stores.Inventory().Deduct(ctx, tenantID, itemID, -amount)
	if err != nil {
		return nil, fmt.Errorf("restocking inventory: %w", err)
	}
	return updated, nil
}

func (s *inventoryService) List(ctx context.Context, tenantID int64) ([]model.InventoryItem, error) {
	return s.stores.Inventory().ListByTenant(ctx, tenantID)
}
