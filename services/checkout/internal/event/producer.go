package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/orjumedia/storefront/pkg/kafka"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
)

// Event types published by the relay.
const (
	TypeSessionCreated = "checkout.session.created"
)

// AggregateTypeSession is the aggregate the events describe.
const AggregateTypeSession = "checkout_session"

// SourceCheckoutRelay identifies events originating from the relay.
const SourceCheckoutRelay = "checkout-relay"

// TopicSessionCreated is the topic for created sessions.
var TopicSessionCreated = pkgkafka.Topic("checkout", "session.created")

// SessionCreatedData is the payload for a checkout.session.created event.
type SessionCreatedData struct {
	SessionID   string `json:"session_id"`
	Currency    string `json:"currency"`
	ItemCount   int    `json:"item_count"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

// Publisher is the subset of *pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes checkout events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the relay.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSessionCreated publishes a checkout.session.created event. The
// amount is the gateway's total when it reports one, else the priced total.
func (p *Producer) PublishSessionCreated(ctx context.Context, session *domain.Session, sr *domain.SessionRequest) error {
	data := SessionCreatedData{
		SessionID:   session.ID,
		Currency:    sr.Currency,
		ItemCount:   len(sr.Lines),
		AmountTotal: session.AmountTotal,
	}
	for _, l := range sr.Lines {
		data.Quantity += l.Quantity
	}
	if data.AmountTotal == 0 {
		data.AmountTotal = sr.AmountTotal()
	}

	evt, err := pkgkafka.NewEvent(TypeSessionCreated, session.ID, AggregateTypeSession, SourceCheckoutRelay, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TypeSessionCreated, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt = evt.WithCorrelationID(id)
	}
	if v := logger.VariantFromContext(ctx); v != "" {
		evt = evt.WithMetadata("variant", v)
	}

	if err := p.kafka.Publish(ctx, TopicSessionCreated, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", TypeSessionCreated, err)
	}

	p.logger.DebugContext(ctx, "published checkout event",
		slog.String("event_type", TypeSessionCreated),
		slog.String("session_id", session.ID),
	)
	return nil
}
