package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	onlineSetKey      = "presence:online"
	lastSeenKeyPrefix = "presence:lastseen:"
	lastSeenTTL       = 30 * 24 * time.Hour
)

// Mirror receives presence transitions so other services can read them. It is
// written to on a best-effort basis; the in-memory Directory stays the source
// of truth for relaying.
type Mirror interface {
	Online(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string, lastSeen time.Time) error
}

// RedisMirror keeps a Redis set of online user ids plus a last-seen key per user.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

// Reset clears the online set. Called once at boot: a restart dropped every
// socket, so nobody this process announced is online any more.
func (m *RedisMirror) Reset(ctx context.Context) error {
	if err := m.client.Del(ctx, onlineSetKey).Err(); err != nil {
		return fmt.Errorf("failed to reset online set: %w", err)
	}
	return nil
}

func (m *RedisMirror) Online(ctx context.Context, userID string) error {
	if err := m.client.SAdd(ctx, onlineSetKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to mark %s online: %w", userID, err)
	}
	return nil
}

func (m *RedisMirror) Offline(ctx context.Context, userID string, lastSeen time.Time) error {
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, onlineSetKey, userID)
		pipe.Set(ctx, lastSeenKey(userID), lastSeen.UTC().Format(time.RFC3339Nano), lastSeenTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark %s offline: %w", userID, err)
	}
	return nil
}

func lastSeenKey(userID string) string {
	return lastSeenKeyPrefix + userID
}
