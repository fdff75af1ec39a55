// Package events publishes storefront domain events to Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

const (
	envelopeVersion       = 1
	defaultPublishTimeout = 5 * time.Second

	// TypeCheckoutSessionCreated is emitted once the gateway returns a session.
	TypeCheckoutSessionCreated = "checkout.session_created"
	// TypePaymentIntentCreated is emitted once the gateway returns an intent.
	TypePaymentIntentCreated = "checkout.payment_intent_created"
	// TypePlanCheckoutCreated is emitted for a plan purchase session.
	TypePlanCheckoutCreated = "checkout.plan_session_created"
)

// Envelope is the stable message body.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	UserID     uuid.UUID       `json:"userId"`
	Data       json.RawMessage `json:"data"`
}

// CheckoutStarted describes a payment session handed to a shopper.
type CheckoutStarted struct {
	GatewayID  string `json:"gatewayId"`
	Driver     string `json:"driver"`
	ItemCount  int    `json:"itemCount"`
	TotalMinor int64  `json:"totalMinor"`
	Currency   string `json:"currency"`
}

// PlanCheckoutStarted describes a plan purchase handed to a shopper.
type PlanCheckoutStarted struct {
	GatewayID string `json:"gatewayId"`
	Driver    string `json:"driver"`
	PriceID   string `json:"priceId"`
	Mode      string `json:"mode"`
}

// Publisher emits events. Implementations must not block checkout for long.
type Publisher interface {
	Publish(ctx context.Context, eventType string, userID uuid.UUID, data any) error
}

type topicPublisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubPublisher publishes to one Pub/Sub topic.
type PubSubPublisher struct {
	topic topicPublisher
	logg  *logger.Logger
	now   func() time.Time
}

// NewPubSubPublisher wraps a topic publisher handle.
func NewPubSubPublisher(p *gcppubsub.Publisher, logg *logger.Logger) (*PubSubPublisher, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return newPubSubPublisher(&gcpPublisher{Publisher: p}, logg), nil
}

func newPubSubPublisher(topic topicPublisher, logg *logger.Logger) *PubSubPublisher {
	return &PubSubPublisher{
		topic: topic,
		logg:  logg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (p *PubSubPublisher) Publish(ctx context.Context, eventType string, userID uuid.UUID, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	envelope := Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: p.now(),
		UserID:     userID,
		Data:       payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", eventType, err)
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":   envelope.EventID,
			"event_type": eventType,
			"user_id":    userID.String(),
			"created_at": envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := p.topic.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for %s", eventType)
	}
	id, err := result.Get(publishCtx)
	if err != nil {
		return err
	}
	if p.logg != nil {
		ctx = p.logg.WithFields(ctx, map[string]any{"event_type": eventType, "message_id": id})
		p.logg.Debug(ctx, "events.published")
	}
	return nil
}

// Noop drops every event. Used when Pub/Sub is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, uuid.UUID, any) error { return nil }

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
