// Package notify delivers signed session lifecycle events to an external
// endpoint so downstream systems (EHR inboxes, billing, supervision queues)
// can react when a diagnostic workflow finishes.
package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventSessionCompleted is emitted when a session reaches the final gate.
const EventSessionCompleted = "session.completed"

// Event is the JSON body POSTed to the configured endpoint.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Clinician string          `json:"clinician"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SignPayload computes an HMAC-SHA256 signature of the payload using the given
// secret, returning the hex-encoded result.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature returns true when the hex-encoded signature matches the
// HMAC-SHA256 of payload under the given secret.
func VerifySignature(payload []byte, secret, signature string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithTimeout overrides the per-delivery timeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) { n.client.SetTimeout(d) }
}

// WithRetries sets the number of retry attempts after a failed delivery.
func WithRetries(count int) Option {
	return func(n *Notifier) { n.client.SetRetryCount(count) }
}

// WithRetryWait overrides the backoff window between retries.
func WithRetryWait(wait, max time.Duration) Option {
	return func(n *Notifier) {
		n.client.SetRetryWaitTime(wait).SetRetryMaxWaitTime(max)
	}
}

// Notifier POSTs signed events to a single configured endpoint. Receivers
// authenticate the sender by recomputing the HMAC-SHA256 of the raw body
// under the shared secret and comparing it to the X-Notify-Signature header.
type Notifier struct {
	client *resty.Client
	url    string
	secret string
	logger zerolog.Logger
}

// NewNotifier creates a Notifier for the given endpoint. Deliveries retry on
// transport errors and 5xx responses with exponential backoff.
func NewNotifier(url, secret string, logger zerolog.Logger, opts ...Option) *Notifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	n := &Notifier{
		client: client,
		url:    url,
		secret: secret,
		logger: logger,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// SessionCompleted delivers a session.completed event. The payload carries
// the session synopsis so receivers do not need to call back for it.
func (n *Notifier) SessionCompleted(ctx context.Context, sessionID, clinician string, payload json.RawMessage) error {
	return n.send(ctx, Event{
		ID:        uuid.New().String(),
		Type:      EventSessionCompleted,
		SessionID: sessionID,
		Clinician: clinician,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// send signs the marshaled event and POSTs it. The signature covers the exact
// bytes on the wire.
func (n *Notifier) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	sig := SignPayload(body, n.secret)

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		SetHeader("X-Notify-Signature", "sha256="+sig).
		SetHeader("X-Notify-Event", ev.Type).
		SetHeader("X-Notify-Timestamp", ev.Timestamp.Format(time.RFC3339)).
		Post(n.url)
	if err != nil {
		n.logger.Error().
			Err(err).
			Str("event_type", ev.Type).
			Str("session_id", ev.SessionID).
			Msg("notification delivery failed")
		return fmt.Errorf("deliver %s: %w", ev.Type, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		n.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("event_type", ev.Type).
			Str("session_id", ev.SessionID).
			Msg("notification rejected by endpoint")
		return fmt.Errorf("deliver %s: unexpected status %d", ev.Type, resp.StatusCode())
	}

	n.logger.Info().
		Str("event_type", ev.Type).
		Str("session_id", ev.SessionID).
		Int("status_code", resp.StatusCode()).
		Msg("notification delivered")
	return nil
}
