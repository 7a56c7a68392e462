package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NotificationPublisher publishes quote approval lifecycle events to NATS for
// the notifications service.
//
// Subject convention: notifications.cpq.<event_type>
// Event types: quote_submitted, quote_approved, quote_rejected, quote_escalated
//
// All publish operations are non-fatal — errors are logged but never
// propagated, so notification failures never interrupt approval operations.
type NotificationPublisher struct {
	nc  *nats.Conn
	log zerolog.Logger
}

// QuoteEvent is the JSON schema published to NATS.
type QuoteEvent struct {
	EventType  string                 `json:"event_type"`
	QuoteID    string                 `json:"quote_id"`
	ActorID    string                 `json:"actor_id"`
	Severity   string                 `json:"severity,omitempty"`
	Category   string                 `json:"category,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// NewNotificationPublisher creates a publisher backed by the given NATS
// connection. A nil connection disables publishing.
func NewNotificationPublisher(nc *nats.Conn, log zerolog.Logger) *NotificationPublisher {
	return &NotificationPublisher{nc: nc, log: log}
}

// PublishQuoteEvent publishes one approval lifecycle event.
// Subject: notifications.cpq.<eventType>
func (p *NotificationPublisher) PublishQuoteEvent(ctx context.Context, eventType, quoteID, actorID string, payload map[string]interface{}) {
	if p.nc == nil {
		return
	}

	event := &QuoteEvent{
		EventType:  eventType,
		QuoteID:    quoteID,
		ActorID:    actorID,
		Severity:   "info",
		Category:   "cpq_approval",
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("notification: failed to marshal event")
		return
	}

	subject := fmt.Sprintf("notifications.cpq.%s", eventType)
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("quote_id", quoteID).
			Msg("notification: failed to publish NATS event (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("quote_id", quoteID).
		Msg("notification: event published")
}
