package store

import (
	"context"
	"time"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type integrationLogStore struct {
	q db.Querier
}

func (s *integrationLogStore) Create(ctx context.Context, entry *model.IntegrationLog) error {
	query := `INSERT INTO integration_logs (id, tenant_id, channel, provider, recipient, subject, content, status, retry_count, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`

	_, err := s.q.Exec(ctx, query,
		entry.ID, entry.TenantID, entry.Channel, entry.Provider, entry.Recipient,
		entry.Subject, entry.Content, entry.Status, entry.RetryCount,
	)
	return err
}

func (s *integrationLogStore) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `UPDATE integration_logs SET status = $2, sent_at = $3 WHERE id = $1`

	tag, err := s.q.Exec(ctx, query, id, model.SendStatusSent, sentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *integrationLogStore) MarkFailed(ctx context.Context, id int64, errMsg string, retryCount int) error {
	query := `UPDATE integration_logs SET status = $2, error = $3, retry_count = $4 WHERE id = $1`

	tag, err := s.q.Exec(ctx, query, id, model.SendStatusFailed, errMsg, retryCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountRecentSends counts attempts that reached (or are still reaching) the
// recipient within the lookback window. The subject scopes the check to one
// message: a welcome never suppresses a booking confirmation. Failed attempts
// do not count: a failed send should not suppress a retry from a later event.
func (s *integrationLogStore) CountRecentSends(ctx context.Context, tenantID int64, channel model.Channel, recipient, subject string, since time.Time) (int, error) {
	query := `SELECT count(*) FROM integration_logs
			  WHERE tenant_id = $1 AND channel = $2 AND recipient = $3 AND subject = $4
			    AND status <> $5 AND created_at >= $6`

	var count int
	err := s.q.QueryRow(ctx, query, tenantID, channel, recipient, subject, model.SendStatusFailed, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *integrationLogStore) ListByTenant(ctx context.Context, tenantID int64, limit int32) ([]model.IntegrationLog, error) {
	query := `SELECT id, tenant_id, channel, provider, recipient, subject, content, status, error, retry_count, sent_at, created_at
			  FROM integration_logs WHERE tenant_id = $1
			  ORDER BY created_at DESC LIMIT $2`

	rows, err := s.q.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.IntegrationLog
	for rows.Next() {
		var entry model.IntegrationLog
		if err := rows.Scan(
			&entry.ID, &entry.TenantID, &entry.Channel, &entry.Provider,
			&entry.Recipient, &entry.Subject, &entry.Content, &entry.Status,
			&entry.Error, &entry.RetryCount, &entry.SentAt, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
