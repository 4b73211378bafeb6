package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/hbnb/internal/adapters/redis"
	"github.com/aretw0/hbnb/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	defer store.Close()
	ports.RunBackendContract(t, store)
}

func TestRedisStore_UsesConfiguredHash(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, redis.WithKey("test:objects"))
	defer store.Close()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Save(ctx, ports.Snapshot{
		"User.1": {"__class__": "User", "id": "1"},
	}))

	assert.True(t, mr.Exists("test:objects"))
	assert.False(t, mr.Exists(redis.DefaultKey))
	assert.Contains(t, mr.HGet("test:objects", "User.1"), `"__class__":"User"`)
}

func TestRedisStore_SaveEmptyClearsHash(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client)
	defer store.Close()

	require.NoError(t, store.Save(ctx, ports.Snapshot{"User.1": {"id": "1"}}))
	require.NoError(t, store.Save(ctx, ports.Snapshot{}))

	assert.False(t, mr.Exists(redis.DefaultKey))
	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}
