package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type contactStore struct {
	q db.Querier
}

const contactColumns = `id, tenant_id, first_name, last_name, email, phone, notes, created_at, updated_at`

func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	err := row.Scan(
		&c.ID, &c.TenantID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *contactStore) GetByID(ctx context.Context, tenantID, id int64) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE tenant_id = $1 AND id = $2`
	return scanContact(s.q.QueryRow(ctx, query, tenantID, id))
}

func (s *contactStore) Create(ctx context.Context, contact *model.Contact) error {
	query := `INSERT INTO contacts (id, tenant_id, first_name, last_name, email, phone, notes, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err := s.q.Exec(ctx, query,
		contact.ID, contact.TenantID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.Notes,
	)
	return err
}

func (s *contactStore) Update(ctx context.Context, contact *model.Contact) error {
	query := `UPDATE contacts
			  SET first_name = $3, last_name = $4, email = $5, phone = $6, notes = $7, updated_at = now()
			  WHERE tenant_id = $1 AND id = $2`

	tag, err := s.q.Exec(ctx, query,
		contact.TenantID, contact.ID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *contactStore) Delete(ctx context.Context, tenantID, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM contacts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *contactStore) ListByTenant(ctx context.Context, tenantID int64) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE tenant_id = $1 ORDER BY created_at DESC`

	rows, err := s.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.FirstName, &c.LastName,
			&c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
