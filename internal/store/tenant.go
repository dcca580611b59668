package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type tenantStore struct {
	q db.Querier
}

func (s *tenantStore) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	query := `SELECT id, name, slug, owner_email, timezone, created_at, updated_at
			  FROM tenants WHERE id = $1`

	var t model.Tenant
	err := s.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Slug, &t.OwnerEmail, &t.Timezone, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *tenantStore) Create(ctx context.Context, tenant *model.Tenant) error {
	query := `INSERT INTO tenants (id, name, slug, owner_email, timezone, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, now(), now())`

	_, err := s.q.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.Slug, tenant.OwnerEmail, tenant.Timezone,
	)
	return err
}

type channelConfigStore struct {
	q db.Querier
}

func (s *channelConfigStore) GetByTenantAndChannel(ctx context.Context, tenantID int64, channel model.Channel) (*model.TenantChannelConfig, error) {
	query := `SELECT id, tenant_id, channel, provider, sender, credential, is_enabled, created_at, updated_at
			  FROM tenant_channel_configs
			  WHERE tenant_id = $1 AND channel = $2`

	var c model.TenantChannelConfig
	err := s.q.QueryRow(ctx, query, tenantID, channel).Scan(
		&c.ID, &c.TenantID, &c.Channel, &c.Provider, &c.Sender,
		&c.Credential, &c.IsEnabled, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *channelConfigStore) ListByTenant(ctx context.Context, tenantID int64) ([]model.TenantChannelConfig, error) {
	query := `SELECT id, tenant_id, channel, provider, sender, credential, is_enabled, created_at, updated_at
			  FROM tenant_channel_configs
			  WHERE tenant_id = $1
			  ORDER BY channel`

	rows, err := s.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []model.TenantChannelConfig
	for rows.Next() {
		var c model.TenantChannelConfig
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.Channel, &c.Provider, &c.Sender,
			&c.Credential, &c.IsEnabled, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (s *channelConfigStore) Create(ctx context.Context, cfg *model.TenantChannelConfig) error {
	query := `INSERT INTO tenant_channel_configs
			  (id, tenant_id, channel, provider, sender, credential, is_enabled, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	_, err := s.q.Exec(ctx, query,
		cfg.ID, cfg.TenantID, cfg.Channel, cfg.Provider, cfg.Sender, cfg.Credential, cfg.IsEnabled,
	)
	return err
}
