package automation

import (
	"context"
	"log/slog"

	"bookline.app/core/common/id"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/notify"
)

// recentlySent reports whether a non-failed send of the same message to
// recipient on channel exists inside the dedup window. The subject keys the
// message identity, so distinct notifications to one contact never suppress
// each other. Redundant event deliveries and re-run jobs collapse into one
// message through this check.
func (e *Engine) recentlySent(ctx context.Context, tenantID int64, channel model.Channel, recipient, subject string) bool {
	since := e.now().Add(-e.cfg.SendDedupWindow)
	count, err := e.stores.IntegrationLogs().CountRecentSends(ctx, tenantID, channel, recipient, subject, since)
	if err != nil {
		// Fail open: a broken dedup lookup should not suppress real sends.
		slog.ErrorContext(ctx, "dedup lookup failed", "channel", channel, "error", err)
		return false
	}
	return count > 0
}

// sendToContact delivers one message to the contact over every channel the
// contact is reachable on, skipping channels inside the dedup window. Each
// channel is independent: an email failure never blocks the SMS. The subject
// rides along on SMS sends as the message identity for dedup.
func (e *Engine) sendToContact(ctx context.Context, contact *model.Contact, subject, body string) {
	if contact.HasEmail() {
		e.sendOne(ctx, contact.TenantID, model.ChannelEmail, *contact.Email, subject, body)
	}
	if contact.HasPhone() {
		e.sendOne(ctx, contact.TenantID, model.ChannelSMS, *contact.Phone, subject, body)
	}
	if !contact.HasEmail() && !contact.HasPhone() {
		slog.InfoContext(ctx, "contact unreachable, skipping send", "contact_id", contact.ID)
	}
}

func (e *Engine) sendOne(ctx context.Context, tenantID int64, channel model.Channel, recipient, subject, body string) {
	if e.recentlySent(ctx, tenantID, channel, recipient, subject) {
		slog.InfoContext(ctx, "recent send found, suppressing duplicate",
			"channel", channel, "recipient", recipient)
		return
	}
	e.gateway.Send(ctx, notify.Request{
		TenantID:  tenantID,
		Channel:   channel,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})
}

// raiseAlert creates an operational alert unless an active one already
// exists for the same type and subject. Returns whether a new alert row was
// created.
func (e *Engine) raiseAlert(ctx context.Context, tenantID int64, alertType model.AlertType, subjectID int64, message string) bool {
	active, err := e.stores.Alerts().HasActive(ctx, tenantID, alertType, subjectID)
	if err != nil {
		slog.ErrorContext(ctx, "active alert lookup failed", "alert_type", alertType, "error", err)
		return false
	}
	if active {
		slog.InfoContext(ctx, "active alert exists, not raising another",
			"alert_type", alertType, "subject_id", subjectID)
		return false
	}

	alert := &model.Alert{
		ID:        id.New(),
		TenantID:  tenantID,
		Type:      alertType,
		SubjectID: subjectID,
		Message:   message,
		Status:    model.AlertStatusActive,
	}
	if err := e.stores.Alerts().Create(ctx, alert); err != nil {
		slog.ErrorContext(ctx, "failed to create alert", "alert_type", alertType, "error", err)
		return false
	}
	return true
}

// notifyOwner emails the tenant owner. Owner notifications share the same
// gateway and dedup policy as contact-facing sends.
func (e *Engine) notifyOwner(ctx context.Context, tenantID int64, subject, body string) {
	tenant, err := e.stores.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load tenant for owner notification", "error", err)
		return
	}
	if tenant.OwnerEmail == "" {
		slog.InfoContext(ctx, "tenant has no owner email, skipping notification")
		return
	}
	e.sendOne(ctx, tenantID, model.ChannelEmail, tenant.OwnerEmail, subject, body)
}
