package presence

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Readers for asserting on what the mirror wrote.

// OnlineUsers returns the mirrored online set
func (m *RedisMirror) OnlineUsers(ctx context.Context) ([]string, error) {
	users, err := m.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read online set: %w", err)
	}
	return users, nil
}

// LastSeen returns the mirrored last-seen time; ok is false when unknown.
func (m *RedisMirror) LastSeen(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := m.client.Get(ctx, lastSeenKey(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last seen: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse last seen: %w", err)
	}
	return ts, true, nil
}

// getTestRedisClient connects to REDIS_URL or skips the test.
func getTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisMirror_OnlineThenOffline(t *testing.T) {
	client := getTestRedisClient(t)
	mirror := NewRedisMirror(client)
	ctx := context.Background()

	userID := "test-" + uuid.NewString()
	defer client.SRem(ctx, onlineSetKey, userID)
	defer client.Del(ctx, lastSeenKey(userID))

	// ACT: announce online
	require.NoError(t, mirror.Online(ctx, userID))

	users, err := mirror.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, userID)

	// ACT: announce offline
	seen := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, mirror.Offline(ctx, userID, seen))

	// ASSERT: removed from set, last-seen stored
	users, err = mirror.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.NotContains(t, users, userID)

	got, ok, err := mirror.LastSeen(ctx, userID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, seen.Equal(got))
}

func TestRedisMirror_LastSeenUnknown(t *testing.T) {
	client := getTestRedisClient(t)
	mirror := NewRedisMirror(client)

	_, ok, err := mirror.LastSeen(context.Background(), "missing-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}
