package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orjumedia/storefront/pkg/database"
	"github.com/orjumedia/storefront/pkg/httpclient"
	"github.com/orjumedia/storefront/services/cart/internal/checkout"
	"github.com/orjumedia/storefront/services/cart/internal/config"
	"github.com/orjumedia/storefront/services/cart/internal/repository"
	"github.com/orjumedia/storefront/services/cart/internal/repository/memory"
	redisrepo "github.com/orjumedia/storefront/services/cart/internal/repository/redis"
	"github.com/orjumedia/storefront/services/cart/internal/store"
)

// App wires the Cart Store to its storage and to the checkout relay.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	rdb      *redis.Client
	store    *store.Store
	checkout *checkout.Client
}

// NewApp connects storage and opens the store.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var (
		repo repository.CartRepository
		rdb  *redis.Client
	)

	switch cfg.Storage {
	case config.StorageRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		rdb = client
		database.SetSlowCommandLogging(200*time.Millisecond, logger)
		repo = redisrepo.NewCartRepository(rdb, cfg.Namespace, logger)
		logger.Debug("connected to Redis",
			slog.String("addr", cfg.Redis.Addr),
			slog.String("namespace", cfg.Namespace),
		)
	case config.StorageMemory:
		repo = memory.NewOrigin().Tab()
	default:
		return nil, fmt.Errorf("unknown cart storage %q", cfg.Storage)
	}

	return newApp(ctx, cfg, logger, repo, rdb)
}

// NewAppWithRepository builds an App over an existing repository.
func NewAppWithRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger, repo repository.CartRepository) (*App, error) {
	return newApp(ctx, cfg, logger, repo, nil)
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, repo repository.CartRepository, rdb *redis.Client) (*App, error) {
	st, err := store.Open(ctx, repo, logger, cfg.StoreOptions())
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("open cart: %w", err)
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CheckoutTimeout()
	httpCfg.UserAgent = "storefront-cart/1.0"
	client := checkout.NewClient(checkout.Config{
		RelayURL:    cfg.RelayURL,
		PlatformKey: cfg.PlatformKey,
		SiteOrigin:  cfg.SiteOrigin,
	}, httpclient.New(httpCfg), logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		rdb:      rdb,
		store:    st,
		checkout: client,
	}, nil
}

// Store returns the Cart Store.
func (a *App) Store() *store.Store {
	return a.store
}

// Checkout returns the relay client.
func (a *App) Checkout() *checkout.Client {
	return a.checkout
}

// CheckoutTimeout bounds one checkout submission.
func (a *App) CheckoutTimeout() time.Duration {
	return a.cfg.CheckoutTimeout()
}

// Close releases storage connections.
func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
