package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
	redisstore "github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/redis"
)

// newTestStore connects to a local Redis and skips the test when none is
// running.  Keys are prefixed with the test name and removed afterwards.
func newTestStore(t *testing.T) (*redisstore.Store, string) {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Skipping Redis integration test: redis not available")
	}

	prefix := "powerwatch_test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		_ = client.Close()
	})
	return redisstore.New(client), prefix
}

func TestRedisStore_GetMissing_NotFound(t *testing.T) {
	s, prefix := newTestStore(t)

	_, err := s.Get(context.Background(), prefix+"missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisStore_SetThenGet(t *testing.T) {
	s, prefix := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, prefix+"k", "v1"))
	require.NoError(t, s.Set(ctx, prefix+"k", "v2"))

	v, err := s.Get(ctx, prefix+"k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestOpen_BadURL(t *testing.T) {
	_, err := redisstore.Open(context.Background(), "not a url")
	assert.Error(t, err)
}
