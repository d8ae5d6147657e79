package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

// newTestStore connects to a local Redis and skips the test when none
// is running, so the suite stays green on machines without the
// docker-compose stack up.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available at %s: %v", testRedisAddr, err)
	}

	store := New(client, time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := "it-" + t.Name()
	sess, err := store.Load(ctx, id)
	require.NoError(t, err)

	require.NoError(t, sess.Set("cart", map[string]int{"42": 3}))
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)

	var cart map[string]int
	ok, err := loaded.Get("cart", &cart)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, cart["42"])
}

func TestLoadUnknownIDIsFresh(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Load(context.Background(), "it-unknown-session-id")
	require.NoError(t, err)
	require.Empty(t, sess.Values())
	require.False(t, sess.Dirty())
}
