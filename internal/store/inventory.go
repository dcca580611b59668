package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type inventoryStore struct {
	q db.Querier
}

const inventoryColumns = `id, tenant_id, name, sku, quantity, reorder_level, booking_type_id, created_at, updated_at`

func (s *inventoryStore) scan(row pgx.Row) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := row.Scan(
		&item.ID, &item.TenantID, &item.Name, &item.SKU, &item.Quantity,
		&item.ReorderLevel, &item.BookingTypeID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *inventoryStore) GetByID(ctx context.Context, tenantID, id int64) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE tenant_id = $1 AND id = $2`
	return s.scan(s.q.QueryRow(ctx, query, tenantID, id))
}

func (s *inventoryStore) GetByBookingType(ctx context.Context, tenantID, bookingTypeID int64) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items
			  WHERE tenant_id = $1 AND booking_type_id = $2`
	return s.scan(s.q.QueryRow(ctx, query, tenantID, bookingTypeID))
}

func (s *inventoryStore) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `INSERT INTO inventory_items (id, tenant_id, name, sku, quantity, reorder_level, booking_type_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err := s.q.Exec(ctx, query,
		item.ID, item.TenantID, item.Name, item.SKU, item.Quantity,
		item.ReorderLevel, item.BookingTypeID,
	)
	return err
}

// Deduct decrements quantity in place and returns the updated row so callers
// can compare against the reorder level without a second read.
func (s *inventoryStore) Deduct(ctx context.Context, tenantID, id, amount int64) (*model.InventoryItem, error) {
	query := `UPDATE inventory_items SET quantity = quantity - $3, updated_at = now()
			  WHERE tenant_id = $1 AND id = $2
			  RETURNING ` + inventoryColumns
	return s.scan(s.q.QueryRow(ctx, query, tenantID, id, amount))
}

func (s *inventoryStore) Update(ctx context.Context, item *model.InventoryItem) error {
	query := `UPDATE inventory_items
			  SET name = $3, sku = $4, quantity = $5, reorder_level = $6, booking_type_id = $7, updated_at = now()
			  WHERE tenant_id = $1 AND id = $2`

	tag, err := s.q.Exec(ctx, query,
		item.TenantID, item.ID, item.Name, item.SKU, item.Quantity,
		item.ReorderLevel, item.BookingTypeID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *inventoryStore) ListByTenant(ctx context.Context, tenantID int64) ([]model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE tenant_id = $1 ORDER BY name`

	rows, err := s.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		var item model.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.Name, &item.SKU, &item.Quantity,
			&item.ReorderLevel, &item.BookingTypeID, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
