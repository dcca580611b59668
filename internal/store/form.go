package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type formTemplateStore struct {
	q db.Querier
}

func (s *formTemplateStore) GetByID(ctx context.Context, tenantID, id int64) (*model.FormTemplate, error) {
	query := `SELECT id, tenant_id, name, fields, is_active, created_at, updated_at
			  FROM form_templates WHERE tenant_id = $1 AND id = $2`

	var ft model.FormTemplate
	err := s.q.QueryRow(ctx, query, tenantID, id).Scan(
		&ft.ID, &ft.TenantID, &ft.Name, &ft.Fields, &ft.IsActive, &ft.CreatedAt, &ft.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ft, nil
}

func (s *formTemplateStore) Create(ctx context.Context, ft *model.FormTemplate) error {
	query := `INSERT INTO form_templates (id, tenant_id, name, fields, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, now(), now())`

	_, err := s.q.Exec(ctx, query, ft.ID, ft.TenantID, ft.Name, ft.Fields, ft.IsActive)
	return err
}

func (s *formTemplateStore) ListByTenant(ctx context.Context, tenantID int64) ([]model.FormTemplate, error) {
	query := `SELECT id, tenant_id, name, fields, is_active, created_at, updated_at
			  FROM form_templates WHERE tenant_id = $1 ORDER BY name`

	rows, err := s.q.Query(ctx, query, tenantID)
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

type formSubmissionStore struct {
	q db.Querier
}

const formSubmissionColumns = `id, tenant_id, form_template_id, booking_id, contact_id, status, answers, completed_at, created_at, updated_at`

func (s *formSubmissionStore) GetByID(ctx context.Context, tenantID, id int64) (*model.FormSubmission, error) {
	query := `SELECT ` + formSubmissionColumns + ` FROM form_submissions WHERE tenant_id = $1 AND id = $2`

	var fs model.FormSubmission
	err := s.q.QueryRow(ctx, query, tenantID, id).Scan(
		&fs.ID, &fs.TenantID, &fs.FormTemplateID, &fs.BookingID, &fs.ContactID,
		&fs.Status, &fs.Answers, &fs.CompletedAt, &fs.CreatedAt, &fs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fs, nil
}

func (s *formSubmissionStore) Create(ctx context.Context, fs *model.FormSubmission) error {
	query := `INSERT INTO form_submissions (id, tenant_id, form_template_id, booking_id, contact_id, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now(), now())`

	_, err := s.q.Exec(ctx, query,
		fs.ID, fs.TenantID, fs.FormTemplateID, fs.BookingID, fs.ContactID, fs.Status,
	)
	return err
}

func (s *formSubmissionStore) Complete(ctx context.Context, tenantID, id int64, answers []byte) error {
	query := `UPDATE form_submissions
			  SET status = $3, answers = $4, completed_at = now(), updated_at = now()
			  WHERE tenant_id = $1 AND id = $2`

	tag, err := s.q.Exec(ctx, query, tenantID, id, model.FormSubmissionStatusCompleted, answers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOverdueIfPending flips a still-pending submission to overdue. The status
// guard in the WHERE clause makes the transition happen at most once even when
// the same check job runs twice.
func (s *formSubmissionStore) MarkOverdueIfPending(ctx context.Context, tenantID, id int64) (bool, error) {
	query := `UPDATE form_submissions SET status = $3, updated_at = now()
			  WHERE tenant_id = $1 AND id = $2 AND status = $4`

	tag, err := s.q.Exec(ctx, query, tenantID, id,
		model.FormSubmissionStatusOverdue, model.FormSubmissionStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *formSubmissionStore) ListByBooking(ctx context.Context, tenantID, bookingID int64) ([]model.FormSubmission, error) {
	query := `SELECT ` + formSubmissionColumns + ` FROM form_submissions
			  WHERE tenant_id = $1 AND booking_id = $2 ORDER BY created_at`

	rows, err := s.q.Query(ctx, query, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []model.FormSubmission
	for rows.Next() {
		var fs model.FormSubmission
		if err := rows.Scan(
			&fs.ID, &fs.TenantID, &fs.FormTemplateID, &fs.BookingID, &fs.ContactID,
			&fs.Status, &fs.Answers, &fs.CompletedAt, &fs.CreatedAt, &fs.UpdatedAt,
		); err != nil {
			return nil, err
		}
		submissions = append(submissions, fs)
	}
	return submissions, rows.Err()
}
