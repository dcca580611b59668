package service

import (
	"context"
	"fmt"
	"log/slog"

	"bookline.app/core/common/id"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/store"
)

type FormService interface {
	CreateTemplate(ctx context.Context, tenantID int64, name string, fields []byte) (*model.FormTemplate, error)
	LinkTemplate(ctx context.Context, tenantID, bookingTypeID, formTemplateID int64) error
	ListTemplates(ctx context.Context, tenantID int64) ([]model.FormTemplate, error)
	GetSubmission(ctx context.Context, tenantID, submissionID int64) (*model.FormSubmission, error)
	// CompleteSubmission records the answers and withdraws the submission's
	// scheduled reminder and overdue check.
	CompleteSubmission(ctx context.Context, tenantID, submissionID int64, answers []byte) error
}

type formService struct {
	stores    store.Provider
	txRunner  TxRunner
	queue     queue.Queue
	queueName string
}

func NewFormService(stores store.Provider, txRunner TxRunner, q queue.Queue, queueName string) FormService {
	return &formService{stores: stores, txRunner: txRunner, queue: q, queueName: queueName}
}

func (s *formService) CreateTemplate(ctx context.Context, tenantID int64, name string, fields []byte) (*model.FormTemplate, error) {
	tmpl := &model.FormTemplate{
		ID:       id.New(),
		TenantID: tenantID,
		Name:     name,
		Fields:   fields,
		IsActive: true,
	}
	if err := s.stores.FormTemplates().Create(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("creating form template: %w", err)
	}
	return tmpl, nil
}

func (s *formService) LinkTemplate(ctx context.Context, tenantID, bookingTypeID, formTemplateID int64) error {
	return s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		if _, err := stores.BookingTypes().GetByID(ctx, tenantID, bookingTypeID); err != nil {
			return fmt.Errorf("loading booking type: %w", err)
		}
		if _, err := stores.FormTemplates().GetByID(ctx, tenantID, formTemplateID); err != nil {
			return fmt.Errorf("loading form template: %w", err)
		}
		return stores.BookingTypes().LinkFormTemplate(ctx, tenantID, bookingTypeID, formTemplateID)
	})
}

func (s *formService) ListTemplates(ctx context.Context, tenantID int64) ([]model.FormTemplate, error) {
	return s.stores.FormTemplates().ListByTenant(ctx, tenantID)
}

func (s *formService) GetSubmission(ctx context.Context, tenantID, submissionID int64) (*model.FormSubmission, error) {
	return s.stores.FormSubmissions().GetByID(ctx, tenantID, submissionID)
}

func (s *formService) CompleteSubmission(ctx context.Context, tenantID, submissionID int64, answers []byte) error {
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		return stores.FormSubmissions().Complete(ctx, tenantID, submissionID, answers)
	})
	if err != nil {
		return err
	}

	// The reminder and overdue check for this submission are moot now.
	// Jobs already dispatched no-op against the completed status.
	removed := s.queue.CancelByCorrelationKey(ctx, s.queueName,
		queue.CorrelationFormSubmission, fmt.Sprintf("%d", submissionID))
	slog.InfoContext(ctx, "form completed, withdrew scheduled follow-up",
		"form_submission_id", submissionID, "removed", removed)
	return nil
}
