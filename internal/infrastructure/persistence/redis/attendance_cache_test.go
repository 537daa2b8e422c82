package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classhub/assistant-bot/internal/domain/classroom"
)

// Integration tests run against a real Redis and are skipped unless
// TEST_REDIS_URL is set, e.g. TEST_REDIS_URL=redis://localhost:6379/1

func setupCache(t *testing.T) (*AttendanceCache, context.Context) {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}

	ctx := context.Background()

	client, err := NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cache := NewAttendanceCache(client, time.Minute)
	t.Cleanup(func() { _ = cache.Invalidate(ctx, "chat-test") })

	return cache, ctx
}

func TestAttendanceCache_MissThenRoundTrip(t *testing.T) {
	cache, ctx := setupCache(t)

	_, err := cache.Get(ctx, "chat-test")
	assert.ErrorIs(t, err, classroom.ErrCacheMiss)

	counts := map[string]int{"alice": 3, "bob": 1}
	require.NoError(t, cache.Set(ctx, "chat-test", counts))

	got, err := cache.Get(ctx, "chat-test")
	require.NoError(t, err)
	assert.Equal(t, counts, got)
}

func TestAttendanceCache_Invalidate(t *testing.T) {
	cache, ctx := setupCache(t)

	require.NoError(t, cache.Set(ctx, "chat-test", map[string]int{"alice": 1}))
	require.NoError(t, cache.Invalidate(ctx, "chat-test"))

	_, err := cache.Get(ctx, "chat-test")
	assert.ErrorIs(t, err, classroom.ErrCacheMiss)

	// Invalidating an absent key is a no-op.
	assert.NoError(t, cache.Invalidate(ctx, "chat-test"))
}

func TestAttendanceCache_EmptyCounts(t *testing.T) {
	cache, ctx := setupCache(t)

	require.NoError(t, cache.Set(ctx, "chat-test", map[string]int{}))

	got, err := cache.Get(ctx, "chat-test")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewAttendanceCache_DefaultTTL(t *testing.T) {
	cache := NewAttendanceCache(nil, 0)
	assert.Equal(t, DefaultAttendanceTTL, cache.ttl)
}
