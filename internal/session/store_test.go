package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func sampleData() *Data {
	return &Data{
		UserID:    1,
		Username:  "alice",
		Email:     "alice@x.com",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := NewMemoryStore(clock.Now)

	require.NoError(t, store.Save(ctx, "k", sampleData(), time.Hour))

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)

	// callers get a copy
	got.Username = "mallory"
	again, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)

	clock.Advance(time.Hour)
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveSweepsExpired(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := NewMemoryStore(clock.Now)

	require.NoError(t, store.Save(ctx, "abandoned", sampleData(), time.Hour))
	require.NoError(t, store.Save(ctx, "active", sampleData(), 3*time.Hour))
	assert.Equal(t, 2, store.Len())

	clock.Advance(2 * time.Hour)
	require.NoError(t, store.Save(ctx, "fresh", sampleData(), time.Hour))
	assert.Equal(t, 2, store.Len())

	_, err := store.Load(ctx, "active")
	assert.NoError(t, err)
	_, err = store.Load(ctx, "abandoned")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)

	require.NoError(t, store.Save(ctx, "k", sampleData(), time.Hour))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Save(ctx, "session:abc", sampleData(), time.Hour))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	got, err := store.Load(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, sampleData().UserID, got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, sampleData().CreatedAt.Equal(got.CreatedAt))

	mr.FastForward(time.Hour)
	_, err = store.Load(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Save(ctx, "session:abc", sampleData(), time.Hour))
	require.NoError(t, store.Delete(ctx, "session:abc"))
	assert.False(t, mr.Exists("session:abc"))

	_, err := store.Load(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, mr.Set("session:abc", "{not json"))
	_, err := store.Load(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	mr.Close()

	err := store.Save(ctx, "session:abc", sampleData(), time.Hour)
	assert.Error(t, err)

	_, err = store.Load(ctx, "session:abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
