// Package store is the Cart Store: the in-memory view of one shopper's cart
// and currency preference, persisted through a repository.CartRepository and
// kept in step with writes from other views.
//
// Sync is last-writer-wins. A mutation rewrites the whole cart from this
// view's state, so it can overwrite a concurrent write from another view
// that this view has not yet observed.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/orjumedia/storefront/pkg/currency"
	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/services/cart/internal/domain"
	"github.com/orjumedia/storefront/services/cart/internal/repository"
)

// CorruptStatePolicy decides what happens when the stored cart cannot be
// decoded.
type CorruptStatePolicy int

const (
	// ResetToEmpty presents an empty cart and logs a warning.
	ResetToEmpty CorruptStatePolicy = iota
	// FailLoud returns ErrCorruptState.
	FailLoud
)

// ErrCorruptState is returned under FailLoud when the stored cart is unreadable.
var ErrCorruptState = errors.New("stored cart is corrupt")

// Options configures a Store.
type Options struct {
	// DefaultCurrency applies when no valid preference is stored.
	DefaultCurrency string
	OnCorruptState  CorruptStatePolicy
}

// DefaultOptions returns the storefront defaults.
func DefaultOptions() Options {
	return Options{DefaultCurrency: currency.DisplayDefault, OnCorruptState: ResetToEmpty}
}

// Snapshot is a copy of the store's state at one point in time.
type Snapshot struct {
	Items    domain.Cart
	Currency string
}

// Total is the cart total in the reference currency.
func (s Snapshot) Total() decimal.Decimal {
	return s.Items.Total()
}

// DisplayTotal is the cart total converted into the selected currency.
func (s Snapshot) DisplayTotal() decimal.Decimal {
	return currency.Convert(s.Total(), s.Currency)
}

// Store is safe for concurrent use.
type Store struct {
	repo   repository.CartRepository
	logger *slog.Logger
	opts   Options

	mu       sync.RWMutex
	cart     domain.Cart
	currency string
}

// Open creates a store and loads its state from repo.
func Open(ctx context.Context, repo repository.CartRepository, logger *slog.Logger, opts Options) (*Store, error) {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = currency.DisplayDefault
	}
	opts.DefaultCurrency = currency.Normalize(opts.DefaultCurrency)

	s := &Store{
		repo:     repo,
		logger:   logger.With(slog.String("origin", repo.Origin())),
		opts:     opts,
		cart:     domain.Cart{},
		currency: opts.DefaultCurrency,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory view with what is stored.
func (s *Store) Reload(ctx context.Context) error {
	cartBlob, err := s.repo.Load(ctx, repository.KeyCart)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(err, "load cart")
	}
	cart, err := s.decodeCart(ctx, cartBlob)
	if err != nil {
		return err
	}

	code, err := s.repo.Load(ctx, repository.KeyCurrency)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(err, "load currency")
	}

	s.mu.Lock()
	s.cart = cart
	s.currency = s.resolveCurrency(ctx, code)
	s.mu.Unlock()
	return nil
}

func (s *Store) decodeCart(ctx context.Context, blob []byte) (domain.Cart, error) {
	if blob == nil {
		return domain.Cart{}, nil
	}
	cart, err := domain.Decode(blob)
	if err == nil {
		return cart, nil
	}
	if s.opts.OnCorruptState == FailLoud {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	s.logger.WarnContext(ctx, "stored cart is unreadable, using an empty cart",
		slog.Int("bytes", len(blob)),
		slog.String("error", err.Error()),
	)
	return domain.Cart{}, nil
}

func (s *Store) resolveCurrency(ctx context.Context, stored []byte) string {
	if len(stored) == 0 {
		return s.opts.DefaultCurrency
	}
	code := currency.Normalize(string(stored))
	if !currency.IsSupported(code) {
		s.logger.WarnContext(ctx, "stored currency is not supported, using default",
			slog.String("currency", string(stored)),
			slog.String("default", s.opts.DefaultCurrency),
		)
		return s.opts.DefaultCurrency
	}
	return code
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Items: s.cart.Clone(), Currency: s.currency}
}

// Items returns a copy of the cart.
func (s *Store) Items() domain.Cart {
	return s.Snapshot().Items
}

// Currency returns the selected currency code.
func (s *Store) Currency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// Total returns the sum of price * quantity in the reference currency.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Total()
}

// Add puts item in the cart, merging it into an existing line with the same
// product id and size.
func (s *Store) Add(ctx context.Context, item domain.LineItem) error {
	if item.Price.IsNegative() {
		return apperrors.InvalidInput("price must not be negative")
	}
	return s.mutate(ctx, "add", func(c domain.Cart) domain.Cart {
		return c.Add(item)
	})
}

// Remove deletes the line at index. An out-of-range index leaves the cart as
// it is but still rewrites it.
func (s *Store) Remove(ctx context.Context, index int) error {
	return s.mutate(ctx, "remove", func(c domain.Cart) domain.Cart {
		return c.Remove(index)
	})
}

// ChangeQuantity sets the line's quantity to max(1, quantity+delta).
func (s *Store) ChangeQuantity(ctx context.Context, index, delta int) error {
	return s.mutate(ctx, "change_quantity", func(c domain.Cart) domain.Cart {
		return c.ChangeQuantity(index, delta)
	})
}

// SetCurrency persists the currency preference. Prices are not touched.
func (s *Store) SetCurrency(ctx context.Context, code string) error {
	code = currency.Normalize(code)
	if !currency.IsSupported(code) {
		return apperrors.InvalidInput(fmt.Sprintf("Unsupported currency %q", code))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, repository.KeyCurrency, []byte(code)); err != nil {
		return apperrors.Wrap(err, "save currency")
	}
	s.currency = code
	s.logger.DebugContext(ctx, "currency changed", slog.String("currency", code))
	return nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func(domain.Cart) domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.cart)
	blob, err := next.Encode()
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, repository.KeyCart, blob); err != nil {
		return apperrors.Wrap(err, "save cart")
	}
	s.cart = next

	s.logger.DebugContext(ctx, "cart updated",
		slog.String("op", op),
		slog.Int("lines", len(next)),
		slog.Int("units", next.ItemCount()),
	)
	return nil
}

// Watch follows writes made by other views until ctx is done. fn is called
// once with the current state after the subscription is live, then after
// every change that touches the cart or the currency. Watch returns nil when
// ctx is canceled.
func (s *Store) Watch(ctx context.Context, fn func(Snapshot)) error {
	changes, err := s.repo.Subscribe(ctx)
	if err != nil {
		return apperrors.Wrap(err, "subscribe")
	}
	if err := s.Reload(ctx); err != nil {
		return err
	}
	fn(s.Snapshot())

	for change := range changes {
		applied, err := s.apply(ctx, change)
		if err != nil {
			return err
		}
		if applied {
			fn(s.Snapshot())
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, change repository.Change) (bool, error) {
	switch change.Key {
	case repository.KeyCart:
		var blob []byte
		if !change.Removed {
			blob = change.Value
			if blob == nil {
				blob = []byte{}
			}
		}
		cart, err := s.decodeCart(ctx, blob)
		if err != nil {
			return false, err
		}
		s.mu.Lock()
		s.cart = cart
		s.mu.Unlock()
	case repository.KeyCurrency:
		var stored []byte
		if !change.Removed {
			stored = change.Value
		}
		code := s.resolveCurrency(ctx, stored)
		s.mu.Lock()
		s.currency = code
		s.mu.Unlock()
	default:
		return false, nil
	}

	s.logger.DebugContext(ctx, "applied change from another view",
		slog.String("key", change.Key),
		slog.String("from", change.Origin),
	)
	return true, nil
}
