package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/orjumedia/storefront/pkg/kafka"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sessionRequest() *domain.SessionRequest {
	return &domain.SessionRequest{
		Currency: "CZK",
		Lines: []domain.SessionLine{
			{Name: "Tee", UnitAmount: 60000, Quantity: 2},
			{Name: "Cap", UnitAmount: 48000, Quantity: 1},
		},
	}
}

func TestPublishSessionCreated_BuildsEnvelope(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, discardLogger())

	var captured *pkgkafka.Event
	pub.On("Publish", mock.Anything, "storefront.checkout.session.created", mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithVariant(ctx, "function")

	err := p.PublishSessionCreated(ctx, &domain.Session{ID: "cs_1"}, sessionRequest())

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, TypeSessionCreated, captured.EventType)
	assert.Equal(t, "cs_1", captured.AggregateID)
	assert.Equal(t, AggregateTypeSession, captured.AggregateType)
	assert.Equal(t, SourceCheckoutRelay, captured.Source)
	assert.Equal(t, "corr-1", captured.CorrelationID)
	assert.Equal(t, "function", captured.Metadata["variant"])

	var data SessionCreatedData
	require.NoError(t, captured.UnmarshalData(&data))
	assert.Equal(t, SessionCreatedData{
		SessionID:   "cs_1",
		Currency:    "CZK",
		ItemCount:   2,
		Quantity:    3,
		AmountTotal: 168000,
	}, data)
}

func TestPublishSessionCreated_PrefersGatewayTotal(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, discardLogger())

	var captured *pkgkafka.Event
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	err := p.PublishSessionCreated(context.Background(), &domain.Session{ID: "cs_2", AmountTotal: 170000}, sessionRequest())

	require.NoError(t, err)
	var data SessionCreatedData
	require.NoError(t, captured.UnmarshalData(&data))
	assert.Equal(t, int64(170000), data.AmountTotal)
}

func TestPublishSessionCreated_WrapsPublishError(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, discardLogger())
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishSessionCreated(context.Background(), &domain.Session{ID: "cs_3"}, sessionRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish checkout.session.created event")
	assert.Contains(t, err.Error(), "broker down")
}
