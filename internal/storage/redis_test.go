package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/aura/internal/models"
)

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStorage(client, ""), mr
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	docs, mr := newRedisStorage(t)
	defer docs.Close()

	_, err := docs.Load(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	s := New(docs)
	s.now = newTestStore().now
	require.NoError(t, s.RecordAction(ctx, "u1", models.IntentPlayMedia, "play lofi", "youtube"))
	require.NoError(t, s.UpdatePreference(ctx, "u1", "music", "spotify"))

	assert.True(t, mr.Exists("aura:memory:u1"))

	m, err := s.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "spotify", m.Preferences["music"])
	require.Len(t, m.RecentActions, 1)
	assert.Equal(t, "play lofi", m.RecentActions[0].Description)
	assert.True(t, t0.Equal(m.UpdatedAt))

	require.NoError(t, s.Clear(ctx, "u1"))
	assert.False(t, mr.Exists("aura:memory:u1"))
}

func TestRedisStorageCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	docs := NewRedisStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	defer docs.Close()

	require.NoError(t, docs.Save(context.Background(), models.NewMemory("u2", t0)))
	assert.True(t, mr.Exists("test:u2"))
}

func TestRedisStorageErrors(t *testing.T) {
	ctx := context.Background()
	docs, mr := newRedisStorage(t)
	defer docs.Close()

	require.NoError(t, mr.Set("aura:memory:bad", "not json"))
	_, err := docs.Load(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mr.SetError("ERR server unavailable")
	_, err = docs.Load(ctx, "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
