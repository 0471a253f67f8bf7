package lockout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps failed-attempt counters and lock markers per subject key.
type Store interface {
	// RecordFailure bumps the counter for key, keeping it alive for window, and returns the new count.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	// Lock marks key locked until the returned instant and drops its counter.
	Lock(ctx context.Context, key string, d time.Duration) (time.Time, error)
	// LockedUntil returns the zero time when key is not locked.
	LockedUntil(ctx context.Context, key string) (time.Time, error)
	// Clear forgets both the counter and the lock.
	Clear(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func failuresKey(key string) string { return "lockout:failures:" + key }
func untilKey(key string) string    { return "lockout:until:" + key }

func (s *RedisStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, failuresKey(key))
	pipe.Expire(ctx, failuresKey(key), window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, d time.Duration) (time.Time, error) {
	until := time.Now().Add(d)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, untilKey(key), until.UnixMilli(), d)
	pipe.Del(ctx, failuresKey(key))

	if _, err := pipe.Exec(ctx); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

func (s *RedisStore) LockedUntil(ctx context.Context, key string) (time.Time, error) {
	ms, err := s.client.Get(ctx, untilKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, failuresKey(key), untilKey(key)).Err()
}

// MemoryStore serves single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*entry
}

type entry struct {
	failures  int
	expiresAt time.Time
	until     time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		now:     now,
		entries: make(map[string]*entry),
	}
}

// get returns the live entry for key, creating it if asked. Caller holds mu.
func (s *MemoryStore) get(key string, create bool) *entry {
	now := s.now()
	e, ok := s.entries[key]
	if ok {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			e.failures = 0
			e.expiresAt = time.Time{}
		}
		if !e.until.IsZero() && !now.Before(e.until) {
			e.until = time.Time{}
		}
		if e.failures == 0 && e.until.IsZero() && !create {
			delete(s.entries, key)
			return nil
		}
		return e
	}
	if !create {
		return nil
	}
	e = &entry{}
	s.entries[key] = e
	return e
}

func (s *MemoryStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, true)
	e.failures++
	e.expiresAt = s.now().Add(window)
	return e.failures, nil
}

func (s *MemoryStore) Lock(ctx context.Context, key string, d time.Duration) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, true)
	e.failures = 0
	e.expiresAt = time.Time{}
	e.until = s.now().Add(d)
	return e.until, nil
}

func (s *MemoryStore) LockedUntil(ctx context.Context, key string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.get(key, false); e != nil {
		return e.until, nil
	}
	return time.Time{}, nil
}

func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Failures reports the live counter for key.
func (s *MemoryStore) Failures(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.get(key, false); e != nil {
		return e.failures
	}
	return 0
}
