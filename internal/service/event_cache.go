package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"acm-portal/internal/domain"
)

// EventCache guarda la ultima lista normalizada de eventos.
type EventCache interface {
	Get(ctx context.Context) ([]domain.Event, bool)
	Set(ctx context.Context, events []domain.Event, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type memoryEventCache struct {
	mu        sync.Mutex
	events    []domain.Event
	expiresAt time.Time
	now       func() time.Time
}

func NewMemoryEventCache() EventCache {
	return &memoryEventCache{now: func() time.Time { return time.Now().UTC() }}
}

func (c *memoryEventCache) Get(context.Context) ([]domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events == nil || !c.now().Before(c.expiresAt) {
		return nil, false
	}
	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out, true
}

func (c *memoryEventCache) Set(_ context.Context, events []domain.Event, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = make([]domain.Event, len(events))
	copy(c.events, events)
	c.expiresAt = c.now().Add(ttl)
	return nil
}

func (c *memoryEventCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisEventCache struct {
	client redisKV
	key    string
}

// NewRedisEventCache comparte la lista de eventos entre replicas.
func NewRedisEventCache(client redisKV) EventCache {
	if client == nil {
		return nil
	}
	return &redisEventCache{
		client: client,
		key:    "acm:events:upcoming",
	}
}

func (c *redisEventCache) Get(ctx context.Context) ([]domain.Event, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	var events []domain.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, false
	}
	return events, true
}

func (c *redisEventCache) Set(ctx context.Context, events []domain.Event, ttl time.Duration) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.key, payload, ttl).Err()
}

func (c *redisEventCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, c.key).Err()
}
