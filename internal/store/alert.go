package store

import (
	"context"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type alertStore struct {
	q db.Querier
}

func (s *alertStore) Create(ctx context.Context, alert *model.Alert) error {
	query := `INSERT INTO alerts (id, tenant_id, type, subject_id, message, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now(), now())`

	_, err := s.q.Exec(ctx, query,
		alert.ID, alert.TenantID, alert.Type, alert.SubjectID, alert.Message, alert.Status,
	)
	return err
}

func (s *alertStore) HasActive(ctx context.Context, tenantID int64, alertType model.AlertType, subjectID int64) (bool, error) {
	query := `SELECT EXISTS (
				SELECT 1 FROM alerts
				WHERE tenant_id = $1 AND type = $2 AND subject_id = $3 AND status = $4
			  )`

	var exists bool
	err := s.q.QueryRow(ctx, query, tenantID, alertType, subjectID, model.AlertStatusActive).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *alertStore) Resolve(ctx context.Context, tenantID, id int64) error {
	query := `UPDATE alerts SET status = $3, resolved_at = now(), updated_at = now()
			  WHERE tenant_id = $1 AND id = $2 AND status = $4`

	tag, err := s.q.Exec(ctx, query, tenantID, id, model.AlertStatusResolved, model.AlertStatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *alertStore) ListActive(ctx context.Context, tenantID int64) ([]model.Alert, error) {
	query := `SELECT id, tenant_id, type, subject_id, message, status, resolved_at, created_at, updated_at
			  FROM alerts WHERE tenant_id = $1 AND status = $2
			  ORDER BY created_at DESC`

	rows, err := s.q.Query(ctx, query, tenantID, model.AlertStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.Type, &a.SubjectID, &a.Message,
			&a.Status, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
