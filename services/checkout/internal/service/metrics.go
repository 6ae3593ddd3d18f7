package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/orjumedia/storefront/pkg/errors"
)

// Outcome labels for checkout_sessions_total.
const (
	OutcomeCreated        = "created"
	OutcomeInvalid        = "invalid"
	OutcomeNotConfigured  = "not_configured"
	OutcomeGatewayError   = "gateway_error"
	OutcomeGatewayTimeout = "gateway_timeout"
	OutcomeInternal       = "internal_error"
)

var checkoutSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session requests by relay variant and outcome",
	},
	[]string{"variant", "outcome"},
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeCreated
	case errors.Is(err, apperrors.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, apperrors.ErrNotConfigured):
		return OutcomeNotConfigured
	case errors.Is(err, apperrors.ErrUpstreamTimeout):
		return OutcomeGatewayTimeout
	case errors.Is(err, apperrors.ErrUpstream):
		return OutcomeGatewayError
	default:
		return OutcomeInternal
	}
}

func recordOutcome(variant string, err error) {
	if variant == "" {
		variant = "unknown"
	}
	checkoutSessionsTotal.WithLabelValues(variant, outcomeOf(err)).Inc()
}
