package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/arborui/arbor/pkg/adapters/redis"
	"github.com/arborui/arbor/pkg/domain"
	"github.com/arborui/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunDocumentStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	doc := &domain.Document{
		Version: domain.DocumentVersion,
		Root:    &domain.ComponentNode{ID: "page-1", Kind: domain.KindPage},
	}
	require.NoError(t, store.Save(ctx, "ttl-doc", doc))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "ttl-doc")

	// Advance miniredis past the TTL.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "ttl-doc")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newTestStore(t, redis.WithPrefix("custom:"))
	ctx := context.Background()

	doc := &domain.Document{
		Version: domain.DocumentVersion,
		Root:    &domain.ComponentNode{ID: "page-1", Kind: domain.KindPage},
	}
	require.NoError(t, store.Save(ctx, "mine", doc))

	assert.True(t, mr.Exists("custom:mine"))
}
