package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ThrottleGate admits or rejects a chat-turn submission for a user. Windows
// are evaluated per user; users never contend with each other.
type ThrottleGate interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

// MemoryThrottle is a rolling-window limiter held in process memory. It backs
// single-instance deployments without Redis and the test harness.
type MemoryThrottle struct {
	mu     sync.Mutex
	seen   map[uuid.UUID][]time.Time
	limit  int
	window time.Duration
}

func NewMemoryThrottle(limit int, window time.Duration) *MemoryThrottle {
	mt := &MemoryThrottle{
		seen:   make(map[uuid.UUID][]time.Time),
		limit:  limit,
		window: window,
	}

	// Cleanup goroutine
	go func() {
		for {
			time.Sleep(window)
			cutoff := time.Now().Add(-window)
			mt.mu.Lock()
			for userID, stamps := range mt.seen {
				if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
					delete(mt.seen, userID)
				}
			}
			mt.mu.Unlock()
		}
	}()

	return mt
}

// Allow prunes submissions older than the window and admits the request only
// if fewer than limit remain. Prune, check and record happen under one lock
// so two concurrent requests cannot both pass at the boundary.
func (t *MemoryThrottle) Allow(_ context.Context, userID uuid.UUID) (bool, error) {
	now := time.Now()
	cutoff := now.Add(-t.window)

	t.mu.Lock()
	defer t.mu.Unlock()

	var recent []time.Time
	for _, ts := range t.seen[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= t.limit {
		t.seen[userID] = recent
		return false, nil
	}

	t.seen[userID] = append(recent, now)
	return true, nil
}

// throttleScript is the Redis-side counterpart of MemoryThrottle.Allow: a
// sorted set of submission timestamps per user, pruned and checked in one
// atomic script so the limit holds across processes.
var throttleScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisThrottle is the deployed default when REDIS_URL is configured.
type RedisThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisThrottle(client *redis.Client, limit int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, limit: limit, window: window}
}

func (t *RedisThrottle) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	now := time.Now()
	key := "chat_throttle:" + userID.String()

	res, err := throttleScript.Run(ctx, t.client, []string{key},
		now.Add(-t.window).UnixMilli(), // prune cutoff
		t.limit,
		now.UnixMilli(),
		uuid.NewString(), // unique member per submission
		t.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("throttle check failed: %w", err)
	}

	return res == 1, nil
}
