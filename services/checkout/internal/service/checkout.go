package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/pkg/tracing"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
)

const eventPublishTimeout = 2 * time.Second

// Gateway creates hosted checkout sessions.
type Gateway interface {
	Ready() error
	CreateCheckoutSession(ctx context.Context, sr *domain.SessionRequest) (*domain.Session, error)
}

// EventPublisher announces created sessions.
type EventPublisher interface {
	PublishSessionCreated(ctx context.Context, session *domain.Session, sr *domain.SessionRequest) error
}

// CheckoutSessionService turns a submitted cart into a gateway redirect URL.
// Both relay adapters sit on top of it.
type CheckoutSessionService interface {
	Ready() error
	CreateSession(ctx context.Context, req *domain.CheckoutRequest, defaults domain.RedirectURLs) (string, error)
}

// SessionService is the CheckoutSessionService used in production.
type SessionService struct {
	gateway  Gateway
	events   EventPublisher
	logger   *slog.Logger
	maxItems int

	// in-flight event publishes
	publishing sync.WaitGroup
}

var _ CheckoutSessionService = (*SessionService)(nil)

// NewSessionService wires a gateway and an event publisher. events may be nil.
func NewSessionService(gateway Gateway, events EventPublisher, logger *slog.Logger, maxItems int) *SessionService {
	return &SessionService{
		gateway:  gateway,
		events:   events,
		logger:   logger,
		maxItems: maxItems,
	}
}

// Ready reports whether the gateway credential is configured.
func (s *SessionService) Ready() error {
	return s.gateway.Ready()
}

// CreateSession validates and prices the cart, then makes exactly one
// gateway call. Input errors are returned before the gateway is touched.
func (s *SessionService) CreateSession(ctx context.Context, req *domain.CheckoutRequest, defaults domain.RedirectURLs) (string, error) {
	ctx, span := tracing.Tracer("checkout-service").Start(ctx, "CheckoutSessionService.CreateSession")
	defer span.End()

	variant := logger.VariantFromContext(ctx)
	log := logger.WithContext(ctx, s.logger)

	sr, err := domain.BuildSessionRequest(req, s.maxItems, defaults)
	if err != nil {
		recordOutcome(variant, err)
		span.SetStatus(codes.Error, "invalid checkout request")
		log.Info("checkout request rejected", slog.String("reason", err.Error()))
		return "", err
	}

	span.SetAttributes(
		attribute.String("checkout.currency", sr.Currency),
		attribute.Int("checkout.line_items", len(sr.Lines)),
		attribute.Int64("checkout.amount_total", sr.AmountTotal()),
	)

	if err := s.gateway.Ready(); err != nil {
		recordOutcome(variant, err)
		span.SetStatus(codes.Error, "gateway not configured")
		log.Error("payment gateway secret is not configured")
		return "", err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, sr)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.Internal(err)
		}
		recordOutcome(variant, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway call failed")
		return "", err
	}

	recordOutcome(variant, nil)
	span.SetAttributes(attribute.String("checkout.session_id", session.ID))
	s.publish(ctx, log, session, sr)

	return session.URL, nil
}

// publish is best effort and runs after the response is decided. The shopper
// already has a session; a broker outage must not turn that into an error or
// hold up the redirect.
func (s *SessionService) publish(ctx context.Context, log *slog.Logger, session *domain.Session, sr *domain.SessionRequest) {
	if s.events == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		pctx, cancel := context.WithTimeout(detached, eventPublishTimeout)
		defer cancel()

		if err := s.events.PublishSessionCreated(pctx, session, sr); err != nil {
			log.Warn("failed to publish checkout.session.created",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until every event publish started so far has finished.
func (s *SessionService) Wait() {
	s.publishing.Wait()
}
