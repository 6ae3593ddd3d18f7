package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orjumedia/storefront/services/cart/internal/repository"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func newRepo(client *goredis.Client) *CartRepository {
	return NewCartRepository(client, "storefront", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func receive(t *testing.T, ch <-chan repository.Change) repository.Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
		return repository.Change{}
	}
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

func TestCartRepository_Save_WritesNamespacedKey(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := newRepo(client)

	require.NoError(t, repo.Save(context.Background(), repository.KeyCart, []byte(`[{"id":"orju-cap"}]`)))

	got, err := mr.Get("storefront:cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"orju-cap"}]`, got)
	assert.False(t, mr.Exists("cart"))
	assert.Equal(t, time.Duration(0), mr.TTL("storefront:cart"), "values never expire")
}

func TestCartRepository_Load_Success(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:currency", "PHP"))

	got, err := newRepo(client).Load(context.Background(), repository.KeyCurrency)

	require.NoError(t, err)
	assert.Equal(t, "PHP", string(got))
}

func TestCartRepository_Load_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)

	_, err := newRepo(client).Load(context.Background(), repository.KeyCart)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartRepository_Load_RedisError(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	_, err := newRepo(client).Load(context.Background(), repository.KeyCart)

	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "redis get")
}

func TestCartRepository_Save_RedisError(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	err := newRepo(client).Save(context.Background(), repository.KeyCart, []byte(`[]`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
}

// ---------------------------------------------------------------------------
// Subscribe
// ---------------------------------------------------------------------------

func TestCartRepository_Subscribe_DeliversOtherViewsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, _ := setupTestRedis(t)
	writer, reader := newRepo(client), newRepo(client)

	changes, err := reader.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Save(ctx, repository.KeyCart, []byte(`[{"id":"orju-t-shirt"}]`)))

	got := receive(t, changes)
	assert.Equal(t, repository.KeyCart, got.Key)
	assert.Equal(t, `[{"id":"orju-t-shirt"}]`, string(got.Value))
	assert.Equal(t, writer.Origin(), got.Origin)
}

func TestCartRepository_Subscribe_SkipsOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, _ := setupTestRedis(t)
	repo, other := newRepo(client), newRepo(client)

	changes, err := repo.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, repository.KeyCurrency, []byte("EUR")))
	require.NoError(t, other.Save(ctx, repository.KeyCurrency, []byte("USD")))

	// The first delivered change is the other view's.
	got := receive(t, changes)
	assert.Equal(t, "USD", string(got.Value))
}

func TestCartRepository_Subscribe_IgnoresMalformedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, mr := setupTestRedis(t)
	writer, reader := newRepo(client), newRepo(client)

	changes, err := reader.Subscribe(ctx)
	require.NoError(t, err)

	mr.Publish("storefront:changes", "not json")
	require.NoError(t, writer.Save(ctx, repository.KeyCurrency, []byte("CZK")))

	got := receive(t, changes)
	assert.Equal(t, "CZK", string(got.Value))
}

func TestCartRepository_Subscribe_ClosesOnCancel(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := newRepo(client).Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestCartRepository_Subscribe_ConnectionError(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	_, err := newRepo(client).Subscribe(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis subscribe")
}
