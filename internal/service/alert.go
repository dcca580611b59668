package service

import (
	"context"

	"bookline.app/core/internal/model"
	"bookline.app/core/internal/store"
)

type AlertService interface {
	ListActive(ctx context.Context, tenantID int64) ([]model.Alert, error)
	Resolve(ctx context.Context, tenantID, alertID int64) error
}

type alertService struct {
	stores store.Provider
}

func NewAlertService(stores store.Provider) AlertService {
	return &alertService{stores: stores}
}

func (s *alertService) ListActive(ctx context.Context, tenantID int64) ([]model.Alert, error) {
	return s.stores.Alerts().ListActive(ctx, tenantID)
}

func (s *alertService) Resolve(ctx context.Context, tenantID, alertID int64) error {
	return s.stores.Alerts().Resolve(ctx, tenantID, alertID)
}
