// Package repository defines the storage behind the Cart Store: a small
// origin-scoped key-value space where every view ("tab") is notified when
// another view writes a key.
package repository

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyCart     = "cart"
	KeyCurrency = "currency"
)

// ErrNotFound is returned by Load when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Change describes a write made by another view of the same storage.
type Change struct {
	Key string
	// Value is the new value. Removed is set when the key was deleted.
	Value   []byte
	Removed bool
	// Origin identifies the view that made the write.
	Origin string
}

// CartRepository persists raw cart state and delivers change notifications.
type CartRepository interface {
	// Load returns the stored value for key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores value under key and notifies every other view.
	Save(ctx context.Context, key string, value []byte) error

	// Subscribe delivers changes written by other views until ctx is done,
	// then closes the channel. Writes made through this view are not
	// delivered.
	Subscribe(ctx context.Context) (<-chan Change, error)

	// Origin identifies this view.
	Origin() string
}
