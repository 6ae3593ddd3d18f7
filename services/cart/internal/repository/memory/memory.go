// Package memory implements repository.CartRepository in process. An Origin
// is the shared storage; each Tab is one view of it that is told about
// writes made through the other views.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/orjumedia/storefront/services/cart/internal/repository"
)

// subscriberBuffer bounds undelivered changes per subscriber. When full the
// oldest change is dropped; consumers re-read whole values so only the latest
// write per key matters.
const subscriberBuffer = 64

type subscriber struct {
	origin string
	ch     chan repository.Change
}

// Origin is storage shared by every Tab created from it.
type Origin struct {
	mu     sync.Mutex
	values map[string][]byte
	subs   map[*subscriber]struct{}
}

// NewOrigin creates empty shared storage.
func NewOrigin() *Origin {
	return &Origin{
		values: make(map[string][]byte),
		subs:   make(map[*subscriber]struct{}),
	}
}

// Tab returns a new view with its own origin id.
func (o *Origin) Tab() *Tab {
	return &Tab{origin: o, id: uuid.NewString()}
}

// Set writes a value as if from outside every tab; all subscribers are told.
func (o *Origin) Set(key string, value []byte) {
	o.write("", key, value, false)
}

// Clear deletes a key as if storage was wiped externally.
func (o *Origin) Clear(key string) {
	o.write("", key, nil, true)
}

func (o *Origin) write(from, key string, value []byte, removed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if removed {
		delete(o.values, key)
	} else {
		o.values[key] = slices.Clone(value)
	}

	change := repository.Change{Key: key, Value: slices.Clone(value), Removed: removed, Origin: from}
	for sub := range o.subs {
		if sub.origin == from {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			// Only write() sends while holding mu, so one receive makes room.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- change
		}
	}
}

func (o *Origin) load(key string) ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[key]
	return slices.Clone(v), ok
}

func (o *Origin) subscribe(origin string) *subscriber {
	sub := &subscriber{origin: origin, ch: make(chan repository.Change, subscriberBuffer)}
	o.mu.Lock()
	o.subs[sub] = struct{}{}
	o.mu.Unlock()
	return sub
}

func (o *Origin) unsubscribe(sub *subscriber) {
	o.mu.Lock()
	delete(o.subs, sub)
	o.mu.Unlock()
}

// Tab is one view of an Origin. It implements repository.CartRepository.
type Tab struct {
	origin *Origin
	id     string
}

var _ repository.CartRepository = (*Tab)(nil)

// Origin returns the tab id.
func (t *Tab) Origin() string {
	return t.id
}

func (t *Tab) Load(_ context.Context, key string) ([]byte, error) {
	v, ok := t.origin.load(key)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (t *Tab) Save(_ context.Context, key string, value []byte) error {
	t.origin.write(t.id, key, value, false)
	return nil
}

func (t *Tab) Subscribe(ctx context.Context) (<-chan repository.Change, error) {
	sub := t.origin.subscribe(t.id)
	out := make(chan repository.Change)

	go func() {
		defer close(out)
		defer t.origin.unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case change := <-sub.ch:
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
