package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orjumedia/storefront/pkg/database"
	"github.com/orjumedia/storefront/services/cart/internal/repository"
)

// changesSuffix names the pub/sub channel under the namespace.
const changesSuffix = "changes"

// envelope is the pub/sub message announcing a write.
type envelope struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Origin string `json:"origin"`
}

// CartRepository implements repository.CartRepository on Redis. Values live
// under "<namespace>:<key>"; every Save is announced on "<namespace>:changes".
// Each instance is one view with its own origin id.
type CartRepository struct {
	client    *redis.Client
	namespace string
	origin    string
	logger    *slog.Logger
}

var _ repository.CartRepository = (*CartRepository)(nil)

// NewCartRepository creates a Redis-backed view of the namespace.
func NewCartRepository(client *redis.Client, namespace string, logger *slog.Logger) *CartRepository {
	return &CartRepository{
		client:    client,
		namespace: namespace,
		origin:    uuid.NewString(),
		logger:    logger,
	}
}

func (r *CartRepository) key(k string) string {
	return r.namespace + ":" + k
}

func (r *CartRepository) channel() string {
	return r.key(changesSuffix)
}

// Origin returns this view's id.
func (r *CartRepository) Origin() string {
	return r.origin
}

// Load reads a value from Redis.
func (r *CartRepository) Load(ctx context.Context, key string) (_ []byte, err error) {
	fullKey := r.key(key)
	ctx, end := database.TraceCommand(ctx, "GET", fullKey)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", fullKey, err)
	}
	return data, nil
}

// Save writes the value and publishes the change in one round trip.
func (r *CartRepository) Save(ctx context.Context, key string, value []byte) (err error) {
	fullKey := r.key(key)
	ctx, end := database.TraceCommand(ctx, "SET", fullKey)
	defer func() { end(err) }()

	msg, err := json.Marshal(envelope{Key: key, Value: string(value), Origin: r.origin})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fullKey, value, 0)
		pipe.Publish(ctx, r.channel(), msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", fullKey, err)
	}
	return nil
}

// Subscribe listens on the namespace's change channel. It returns once the
// subscription is confirmed by the server.
func (r *CartRepository) Subscribe(ctx context.Context) (<-chan repository.Change, error) {
	pubsub := r.client.Subscribe(ctx, r.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", r.channel(), err)
	}

	msgs := pubsub.Channel()
	out := make(chan repository.Change)

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					r.logger.WarnContext(ctx, "ignoring malformed change message",
						slog.String("channel", msg.Channel),
						slog.String("error", err.Error()),
					)
					continue
				}
				if env.Origin == r.origin {
					continue
				}
				change := repository.Change{Key: env.Key, Value: []byte(env.Value), Origin: env.Origin}
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
