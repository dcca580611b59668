package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type bookingStore struct {
	q db.Querier
}

const bookingColumns = `id, tenant_id, contact_id, booking_type_id, status, scheduled_at, notes, created_at, updated_at`

func (s *bookingStore) GetByID(ctx context.Context, tenantID, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2`

	var b model.Booking
	err := s.q.QueryRow(ctx, query, tenantID, id).Scan(
		&b.ID, &b.TenantID, &b.ContactID, &b.BookingTypeID,
		&b.Status, &b.ScheduledAt, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *bookingStore) Create(ctx context.Context, booking *model.Booking) error {
	query := `INSERT INTO bookings (id, tenant_id, contact_id, booking_type_id, status, scheduled_at, notes, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err := s.q.Exec(ctx, query,
		booking.ID, booking.TenantID, booking.ContactID, booking.BookingTypeID,
		booking.Status, booking.ScheduledAt, booking.Notes,
	)
	return err
}

func (s *bookingStore) UpdateStatus(ctx context.Context, tenantID, id int64, status model.BookingStatus) error {
	query := `UPDATE bookings SET status = $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`

	tag, err := s.q.Exec(ctx, query, tenantID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *bookingStore) ListByTenant(ctx context.Context, tenantID int64, limit int32) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
			  WHERE tenant_id = $1 ORDER BY scheduled_at DESC LIMIT $2`
	return s.list(ctx, query, tenantID, limit)
}

func (s *bookingStore) ListByContact(ctx context.Context, tenantID, contactID int64) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
			  WHERE tenant_id = $1 AND contact_id = $2 ORDER BY scheduled_at DESC`
	return s.list(ctx, query, tenantID, contactID)
}

func (s *bookingStore) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.ContactID, &b.BookingTypeID,
			&b.Status, &b.ScheduledAt, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

type bookingTypeStore struct {
	q db.Querier
}

func (s *bookingTypeStore) GetByID(ctx context.Context, tenantID, id int64) (*model.BookingType, error) {
	query := `SELECT id, tenant_id, name, duration_minutes, price_cents, is_active, created_at, updated_at
			  FROM booking_types WHERE tenant_id = $1 AND id = $2`

	var bt model.BookingType
	err := s.q.QueryRow(ctx, query, tenantID, id).Scan(
		&bt.ID, &bt.TenantID, &bt.Name, &bt.DurationMinutes,
		&bt.PriceCents, &bt.IsActive, &bt.CreatedAt, &bt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bt, nil
}

func (s *bookingTypeStore) Create(ctx context.Context, bt *model.BookingType) error {
	query := `INSERT INTO booking_types (id, tenant_id, name, duration_minutes, price_cents, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now(), now())`

	_, err := s.q.Exec(ctx, query,
		bt.ID, bt.TenantID, bt.Name, bt.DurationMinutes, bt.PriceCents, bt.IsActive,
	)
	return err
}

func (s *bookingTypeStore) ListByTenant(ctx context.Context, tenantID int64) ([]model.BookingType, error) {
	query := `SELECT id, tenant_id, name, duration_minutes, price_cents, is_active, created_at, updated_at
			  FROM booking_types WHERE tenant_id = $1 ORDER BY name`

	rows, err := s.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []model.BookingType
	for rows.Next() {
		var bt model.BookingType
		if err := rows.Scan(
			&bt.ID, &bt.TenantID, &bt.Name, &bt.DurationMinutes,
			&bt.PriceCents, &bt.IsActive, &bt.CreatedAt, &bt.UpdatedAt,
		); err != nil {
			return nil, err
		}
		types = append(types, bt)
	}
	return types, rows.Err()
}

func (s *bookingTypeStore) ListFormTemplates(ctx context.Context, tenantID, bookingTypeID int64) ([]model.FormTemplate, error) {
	query := `SELECT ft.id, ft.tenant_id, ft.name, ft.fields, ft.is_active, ft.created_at, ft.updated_at
			  FROM form_templates ft
			  JOIN booking_type_forms btf ON btf.form_template_id = ft.id
			  WHERE ft.tenant_id = $1 AND btf.booking_type_id = $2 AND ft.is_active
			  ORDER BY ft.name`

	rows, err := s.q.Query(ctx, query, tenantID, bookingTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []model.FormTemplate
	for rows.Next() {
		var ft model.FormTemplate
		if err := rows.Scan(
			&ft.ID, &ft.TenantID, &ft.Name, &ft.Fields, &ft.IsActive, &ft.CreatedAt, &ft.UpdatedAt,
		); err != nil {
			return nil, err
		}
		templates = append(templates, ft)
	}
	return templates, rows.Err()
}

func (s *bookingTypeStore) LinkFormTemplate(ctx context.Context, tenantID, bookingTypeID, formTemplateID int64) error {
	query := `INSERT INTO booking_type_forms (tenant_id, booking_type_id, form_template_id)
			  VALUES ($1, $2, $3)
			  ON CONFLICT DO NOTHING`

	_, err := s.q.Exec(ctx, query, tenantID, bookingTypeID, formTemplateID)
	return err
}
