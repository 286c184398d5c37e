package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "token:blacklist:"

// Blacklist records revoked refresh tokens by jti.
type Blacklist interface {
	// Add revokes jti for ttl. It reports false when jti was already revoked.
	Add(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
}

// RedisBlacklist keeps revoked jtis in Redis with a TTL matching the token lifetime.
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedisBlacklist builds a Redis-backed blacklist.
func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	return b.client.SetNX(ctx, blacklistPrefix+jti, "1", ttl).Result()
}

func (b *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryBlacklist is a process-local blacklist for development and tests.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlacklist builds an empty in-memory blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Add(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if exp, ok := b.entries[jti]; ok && now.Before(exp) {
		return false, nil
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	b.entries[jti] = now.Add(ttl)
	return true, nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(exp) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}
