package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/form"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/pkg/httpclient"
	"github.com/orjumedia/storefront/pkg/logger"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
)

const sessionsPath = "/v1/checkout/sessions"

// MissingSecretMessage names the setting an operator has to provide.
const MissingSecretMessage = "Stripe secret key not configured. Set the STRIPE_SECRET_KEY environment variable (STRIPE_API_KEY is accepted as a fallback)."

// HTTPDoer executes outbound requests. *httpclient.CircuitBreakerClient
// satisfies it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config configures the Stripe client.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// StripeClient creates hosted checkout sessions over the Stripe REST API.
type StripeClient struct {
	http      HTTPDoer
	secretKey string
	endpoint  string
	timeout   time.Duration
	logger    *slog.Logger
	newKey    func() string
}

// NewStripeClient builds a client that sends requests through doer.
func NewStripeClient(cfg Config, doer HTTPDoer, logger *slog.Logger) *StripeClient {
	return &StripeClient{
		http:      doer,
		secretKey: cfg.SecretKey,
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + sessionsPath,
		timeout:   cfg.Timeout,
		logger:    logger,
		newKey:    uuid.NewString,
	}
}

// Ready reports a NotConfigured error when no secret key is set.
func (c *StripeClient) Ready() error {
	if c.secretKey == "" {
		return apperrors.NotConfigured(MissingSecretMessage)
	}
	return nil
}

// CreateCheckoutSession asks Stripe for a hosted payment page. Failures come
// back as *apperrors.AppError: 502 with the gateway payload for rejections
// and 5xx, 502 when the breaker is open, 504 when the timeout expires.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, sr *domain.SessionRequest) (*domain.Session, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body := EncodeSessionParams(sr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("build gateway request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Stripe-Version", stripe.APIVersion)
	req.Header.Set("Idempotency-Key", c.newKey())

	log := logger.WithContext(ctx, c.logger)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, c.transportError(log, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.rejection(log, httpclient.ReadUpstreamError(resp))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.BadGateway("failed to read payment gateway response", nil, err)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, apperrors.BadGateway("payment gateway returned an unreadable session", nil, err)
	}
	if session.URL == "" {
		return nil, apperrors.BadGateway("payment gateway returned no checkout url", payload, nil)
	}

	log.Info("checkout session created",
		slog.String("session_id", session.ID),
		slog.Int64("amount_total", session.AmountTotal),
		slog.String("currency", string(session.Currency)),
	)

	return &domain.Session{
		ID:          session.ID,
		URL:         session.URL,
		AmountTotal: session.AmountTotal,
		Currency:    strings.ToUpper(string(session.Currency)),
	}, nil
}

func (c *StripeClient) transportError(log *slog.Logger, err error) error {
	var upstream *httpclient.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return c.rejection(log, upstream)
	case errors.Is(err, httpclient.ErrCircuitOpen):
		log.Warn("payment gateway circuit open")
		return apperrors.BadGateway("payment gateway temporarily unavailable", nil, err)
	case httpclient.IsTimeout(err):
		log.Warn("payment gateway timed out", slog.Duration("timeout", c.timeout))
		return apperrors.GatewayTimeout("payment gateway timed out", err)
	default:
		log.Error("payment gateway request failed", slog.String("error", err.Error()))
		return apperrors.BadGateway("payment gateway request failed", nil, err)
	}
}

func (c *StripeClient) rejection(log *slog.Logger, upstream *httpclient.UpstreamError) error {
	var envelope struct {
		Error *stripe.Error `json:"error"`
	}
	attrs := []any{slog.Int("status", upstream.StatusCode)}
	if json.Unmarshal(upstream.Body, &envelope) == nil && envelope.Error != nil {
		attrs = append(attrs,
			slog.String("type", string(envelope.Error.Type)),
			slog.String("code", string(envelope.Error.Code)),
			slog.String("param", envelope.Error.Param),
		)
	}
	log.Warn("payment gateway rejected session", attrs...)

	return apperrors.BadGateway("payment gateway rejected the request", upstream.Body, upstream)
}

// EncodeSessionParams renders sr in Stripe's form encoding.
func EncodeSessionParams(sr *domain.SessionRequest) string {
	values := &form.Values{}
	form.AppendTo(values, SessionParams(sr))
	return values.Encode()
}

// SessionParams maps a priced request onto Stripe's checkout session params.
func SessionParams(sr *domain.SessionRequest) *stripe.CheckoutSessionParams {
	cur := strings.ToLower(sr.Currency)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(sr.Redirect.Success),
		CancelURL:          stripe.String(sr.Redirect.Cancel),
	}

	for _, line := range sr.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{line.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(cur),
				ProductData: product,
				UnitAmount:  stripe.Int64(line.UnitAmount),
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	if sr.Customer != "" {
		params.AddMetadata("customer", sr.Customer)
	}
	return params
}
