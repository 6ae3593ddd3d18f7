package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/orjumedia/storefront/pkg/health"
	"github.com/orjumedia/storefront/pkg/httpclient"
	pkgkafka "github.com/orjumedia/storefront/pkg/kafka"
	"github.com/orjumedia/storefront/pkg/middleware"
	"github.com/orjumedia/storefront/pkg/tracing"
	"github.com/orjumedia/storefront/services/checkout/internal/config"
	"github.com/orjumedia/storefront/services/checkout/internal/domain"
	"github.com/orjumedia/storefront/services/checkout/internal/event"
	"github.com/orjumedia/storefront/services/checkout/internal/gateway"
	"github.com/orjumedia/storefront/services/checkout/internal/handler/function"
	handler "github.com/orjumedia/storefront/services/checkout/internal/handler/http"
	"github.com/orjumedia/storefront/services/checkout/internal/service"
)

// App wires together all dependencies and runs one relay variant.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	variant        string
	producer       *pkgkafka.Producer
	sessions       *service.SessionService
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance for variant, which is
// config.VariantStandalone or config.VariantFunction.
func NewApp(cfg *config.Config, logger *slog.Logger, variant string) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serviceName := handler.ServiceName
	if variant == config.VariantFunction {
		serviceName = function.ServiceName
	}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.TracingConfig(serviceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	if cfg.SecretKey() == "" {
		logger.Warn("STRIPE_SECRET_KEY is not set; checkout requests will fail until it is configured")
	}

	// Payment gateway client behind a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.GatewayTimeout() + time.Second
	cbCfg := cfg.CircuitBreaker()
	cbClient := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger)
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Uint64("max_requests", uint64(cbCfg.MaxRequests)),
		slog.Int("timeout_seconds", cfg.CBTimeoutSecs),
		slog.Uint64("min_requests", uint64(cbCfg.MinRequests)),
	)

	stripeClient := gateway.NewStripeClient(gateway.Config{
		SecretKey: cfg.SecretKey(),
		BaseURL:   cfg.GatewayBaseURL,
		Timeout:   cfg.GatewayTimeout(),
	}, cbClient, logger)

	// Session events are optional.
	var (
		producer *pkgkafka.Producer
		events   service.EventPublisher
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	sessionService := service.NewSessionService(stripeClient, events, logger, cfg.MaxCartItems)

	var router http.Handler
	switch variant {
	case config.VariantFunction:
		router = function.NewRouter(sessionService, logger)
	case config.VariantStandalone:
		healthHandler := health.NewHandler()
		healthHandler.Register("payment-gateway", func(context.Context) error {
			return stripeClient.Ready()
		})
		if producer != nil {
			healthHandler.Register("kafka", producer.Ping)
		}

		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.CORSAllowedOrigins

		checkoutHandler := handler.NewCheckoutHandler(sessionService, domain.RedirectURLs{
			Success: cfg.SuccessURL,
			Cancel:  cfg.CancelURL,
		}, logger)
		router = handler.NewRouter(checkoutHandler, healthHandler, cors, logger)
	default:
		return nil, fmt.Errorf("unknown relay variant %q", variant)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ListenPort()),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.GatewayTimeout() + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		variant:        variant,
		producer:       producer,
		sessions:       sessionService,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Handler returns the HTTP handler the server runs.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("variant", a.variant),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, pending
// event publishes, tracer, Kafka producer.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Drain in-flight requests; a gateway call may still be running.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.GatewayTimeout()+5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Publishes are bounded by their own timeout.
	a.sessions.Wait()

	// Flush spans after the drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
