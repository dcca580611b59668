package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"bookline.app/core/internal/model"
)

// Message is the provider-neutral payload handed to a Sender.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers one message through a specific provider. Implementations
// wrap permanent failures (bad credentials, malformed configuration) with
// Permanent so the gateway stops retrying them.
type Sender interface {
	Send(ctx context.Context, cfg *model.TenantChannelConfig, msg Message) error
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the retry loop fails fast instead of backing off.
func Permanent(err error) error {
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// SMTPSender delivers email over SMTP. The channel config credential is
// expected as "host:port:username:password".
type SMTPSender struct{}

func (s *SMTPSender) Send(_ context.Context, cfg *model.TenantChannelConfig, msg Message) error {
	parts := strings.SplitN(cfg.Credential, ":", 4)
	if len(parts) != 4 {
		return Permanent(fmt.Errorf("malformed smtp credential for tenant %d", cfg.TenantID))
	}
	host, port, username, password := parts[0], parts[1], parts[2], parts[3]

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	buf.WriteString(msg.Body)

	auth := smtp.PlainAuth("", username, password, host)
	err := smtp.SendMail(host+":"+port, auth, msg.From, []string{msg.To}, buf.Bytes())
	if err != nil && strings.Contains(err.Error(), "535") {
		return Permanent(err)
	}
	return err
}

// HTTPSender delivers messages through a JSON webhook API. The channel
// config sender holds the endpoint URL and the credential a bearer token.
// Used for SMS aggregators and transactional mail relays alike.
type HTTPSender struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPSender(endpoint string) *HTTPSender {
	return &HTTPSender{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) Send(ctx context.Context, cfg *model.TenantChannelConfig, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	})
	if err != nil {
		return Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Credential)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Permanent(fmt.Errorf("provider rejected credentials: %s", resp.Status))
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return Permanent(fmt.Errorf("provider rejected request: %s", resp.Status))
	default:
		return fmt.Errorf("provider error: %s", resp.Status)
	}
}

// LogSender only logs the message. Default in development so handler flow
// can be exercised without provider accounts.
type LogSender struct{}

func (s *LogSender) Send(ctx context.Context, cfg *model.TenantChannelConfig, msg Message) error {
	slog.InfoContext(ctx, "notification (log sender)",
		"provider", cfg.Provider, "from", msg.From, "to", msg.To,
		"subject", msg.Subject, "body_len", len(msg.Body))
	return nil
}
