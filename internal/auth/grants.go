package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GrantStore remembers which single-use grants have been spent.
type GrantStore interface {
	// Consume marks id spent for ttl. It reports false when id was already spent.
	Consume(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// Release makes id usable again after the action it guarded failed.
	Release(ctx context.Context, id string) error
}

type RedisGrantStore struct {
	client *redis.Client
}

func NewRedisGrantStore(client *redis.Client) *RedisGrantStore {
	return &RedisGrantStore{client: client}
}

func grantKey(id string) string { return "grant:used:" + id }

func (s *RedisGrantStore) Consume(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, grantKey(id), 1, ttl).Result()
}

func (s *RedisGrantStore) Release(ctx context.Context, id string) error {
	return s.client.Del(ctx, grantKey(id)).Err()
}

// MemoryGrantStore serves single-instance deployments and tests.
type MemoryGrantStore struct {
	mu    sync.Mutex
	now   func() time.Time
	spent map[string]time.Time
}

func NewMemoryGrantStore() *MemoryGrantStore {
	return NewMemoryGrantStoreWithClock(time.Now)
}

func NewMemoryGrantStoreWithClock(now func() time.Time) *MemoryGrantStore {
	return &MemoryGrantStore{
		now:   now,
		spent: make(map[string]time.Time),
	}
}

func (s *MemoryGrantStore) Consume(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if until, ok := s.spent[id]; ok && now.Before(until) {
		return false, nil
	}
	s.spent[id] = now.Add(ttl)
	return true, nil
}

func (s *MemoryGrantStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.spent, id)
	s.mu.Unlock()
	return nil
}
