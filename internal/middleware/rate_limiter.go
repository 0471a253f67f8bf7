package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var errRateLimited = errors.New("rate limit exceeded")

type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	GetCount(ctx context.Context, key string) (int, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()

	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return int(incr.Val()), nil
}

func (s *RedisStore) GetCount(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]*RateLimitEntry
	now   func() time.Time
}

type RateLimitEntry struct {
	Count     int
	ExpiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		store: make(map[string]*RateLimitEntry),
		now:   now,
	}
}

func (s *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, entry := range s.store {
		if now.After(entry.ExpiresAt) {
			delete(s.store, k)
		}
	}

	entry, exists := s.store[key]
	if !exists {
		entry = &RateLimitEntry{
			Count:     0,
			ExpiresAt: now.Add(window),
		}
		s.store[key] = entry
	}

	entry.Count++
	return entry.Count, nil
}

func (s *MemoryStore) GetCount(ctx context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.store[key]
	if !exists {
		return 0, nil
	}

	if s.now().After(entry.ExpiresAt) {
		return 0, nil
	}

	return entry.Count, nil
}

type RateLimiter struct {
	store   RateLimitStore
	enabled bool
	log     zerolog.Logger
}

type RateLimitConfig struct {
	Name    string
	Enabled bool
	Limit   int
	Window  time.Duration
}

func NewRateLimiter(store RateLimitStore, enabled bool, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		store:   store,
		enabled: enabled,
		log:     log,
	}
}

// RateLimit counts requests per client IP and, behind Authenticate, per subject.
// A store outage lets the request through.
func (r *RateLimiter) RateLimit(config RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !r.enabled || !config.Enabled {
			return c.Next()
		}

		ipKey := fmt.Sprintf("rate_limit:%s:ip:%s", config.Name, c.IP())
		if err := r.checkRateLimit(c.UserContext(), ipKey, config); err != nil {
			return r.reject(c, err, "Too many requests from this IP")
		}

		if claims, ok := Claims(c); ok {
			userKey := fmt.Sprintf("rate_limit:%s:%s:%d", config.Name, claims.Role, claims.SubjectID)
			if err := r.checkRateLimit(c.UserContext(), userKey, config); err != nil {
				return r.reject(c, err, "Too many requests from this user")
			}
		}

		return c.Next()
	}
}

func (r *RateLimiter) reject(c *fiber.Ctx, err error, msg string) error {
	if !errors.Is(err, errRateLimited) {
		r.log.Warn().Err(err).Str("path", c.Path()).Msg("rate limit store unavailable")
		return c.Next()
	}
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": msg,
	})
}

func (r *RateLimiter) checkRateLimit(ctx context.Context, key string, config RateLimitConfig) error {
	count, err := r.store.GetCount(ctx, key)
	if err != nil {
		return err
	}

	if count >= config.Limit {
		return errRateLimited
	}

	_, err = r.store.Increment(ctx, key, config.Window)
	return err
}
