// Package notify is the single boundary through which automation reaches
// contacts. Every outbound message goes through the Gateway, which resolves
// the tenant's provider configuration, records the attempt in the
// integration log, and retries transient provider failures with backoff.
//
// A failed send is an outcome, not an error: callers get the result in the
// returned Outcome and decide nothing from it. Handler flow never aborts
// because a provider is down.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/core/config"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/store"
)

// Request describes one outbound message.
type Request struct {
	TenantID  int64
	Channel   model.Channel
	Recipient string
	Subject   string // email subject line; logged for every channel as the message identity
	Body      string
}

// Outcome reports what happened to a send. Exactly one of Sent, Skipped, or
// Failed is the story; LogID points at the integration log row when one was
// written.
type Outcome struct {
	LogID   int64
	Sent    bool
	Skipped bool
	Failed  bool
	Error   string
}

// Gateway sends notifications on behalf of tenants.
type Gateway struct {
	stores  store.Provider
	senders map[string]Sender
	cfg     config.NotifyConfig
}

func NewGateway(stores store.Provider, senders map[string]Sender, cfg config.NotifyConfig) *Gateway {
	return &Gateway{stores: stores, senders: senders, cfg: cfg}
}

// Send delivers one message through the tenant's configured provider for the
// requested channel. Missing or disabled channel configuration skips the
// send; provider failures are retried up to MaxRetries with doubling backoff
// and then recorded as failed.
func (g *Gateway) Send(ctx context.Context, req Request) Outcome {
	ctx = logger.WithLogFields(ctx, logger.LogFields{TenantID: logger.Ptr(req.TenantID)})

	channelCfg, err := g.stores.ChannelConfigs().GetByTenantAndChannel(ctx, req.TenantID, req.Channel)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "channel not configured, skipping send",
				"channel", req.Channel, "recipient", req.Recipient)
			return Outcome{Skipped: true}
		}
		slog.ErrorContext(ctx, "failed to resolve channel config", "channel", req.Channel, "error", err)
		return Outcome{Failed: true, Error: err.Error()}
	}
	if !channelCfg.IsEnabled {
		slog.InfoContext(ctx, "channel disabled, skipping send",
			"channel", req.Channel, "recipient", req.Recipient)
		return Outcome{Skipped: true}
	}

	if channelCfg.Sender == "" {
		channelCfg.Sender = g.cfg.DefaultSender
	}

	entry := &model.IntegrationLog{
		ID:        id.New(),
		TenantID:  req.TenantID,
		Channel:   req.Channel,
		Provider:  channelCfg.Provider,
		Recipient: req.Recipient,
		Content:   req.Body,
		Status:    model.SendStatusPending,
	}
	if req.Subject != "" {
		entry.Subject = &req.Subject
	}
	if err := g.stores.IntegrationLogs().Create(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to record send attempt", "error", err)
		return Outcome{Failed: true, Error: err.Error()}
	}

	sender, ok := g.senders[channelCfg.Provider]
	if !ok {
		errMsg := "unknown provider: " + channelCfg.Provider
		slog.ErrorContext(ctx, "no sender registered for provider", "provider", channelCfg.Provider)
		g.markFailed(ctx, entry.ID, errMsg, 0)
		return Outcome{LogID: entry.ID, Failed: true, Error: errMsg}
	}

	attempts, err := g.sendWithRetry(ctx, sender, channelCfg, req)
	if err != nil {
		slog.WarnContext(ctx, "send failed",
			"channel", req.Channel, "provider", channelCfg.Provider,
			"attempts", attempts, "error", err)
		g.markFailed(ctx, entry.ID, err.Error(), attempts-1)
		return Outcome{LogID: entry.ID, Failed: true, Error: err.Error()}
	}

	if err := g.stores.IntegrationLogs().MarkSent(ctx, entry.ID, time.Now()); err != nil {
		slog.ErrorContext(ctx, "failed to mark send as sent", "log_id", entry.ID, "error", err)
	}
	slog.InfoContext(ctx, "notification sent",
		"channel", req.Channel, "provider", channelCfg.Provider, "recipient", req.Recipient)
	return Outcome{LogID: entry.ID, Sent: true}
}

// sendWithRetry runs the provider call up to MaxRetries+1 times, doubling the
// backoff between attempts. Permanent errors (auth, bad configuration) stop
// immediately. Returns the number of attempts made.
func (g *Gateway) sendWithRetry(ctx context.Context, sender Sender, channelCfg *model.TenantChannelConfig, req Request) (int, error) {
	backoff := g.cfg.InitialBackoff
	attempts := 0

	for {
		attempts++
		err := sender.Send(ctx, channelCfg, Message{
			From:    channelCfg.Sender,
			To:      req.Recipient,
			Subject: req.Subject,
			Body:    req.Body,
		})
		if err == nil {
			return attempts, nil
		}
		if IsPermanent(err) || attempts > g.cfg.MaxRetries {
			return attempts, err
		}

		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (g *Gateway) markFailed(ctx context.Context, logID int64, errMsg string, retries int) {
	if err := g.stores.IntegrationLogs().MarkFailed(ctx, logID, errMsg, retries); err != nil {
		slog.ErrorContext(ctx, "failed to mark send as failed", "log_id", logID, "error", err)
	}
}
