// Package lockout throttles password guessing per login subject.
//
// A subject is locked for Duration once MaxAttempts consecutive failures land
// within AttemptWindow of each other. A successful login clears everything.
package lockout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrLocked = errors.New("login temporarily locked")

// LockedError carries the moment the lock lifts.
type LockedError struct {
	Until      time.Time
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", e.RetryAfterSeconds())
}

func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// RetryAfterSeconds rounds up so a client never retries early.
func (e *LockedError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

type Options struct {
	MaxAttempts   int
	Duration      time.Duration
	AttemptWindow time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:   3,
		Duration:      30 * time.Second,
		AttemptWindow: 15 * time.Minute,
	}
}

type Guard struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewGuard(store Store, opts Options) *Guard {
	return NewGuardWithClock(store, opts, time.Now)
}

func NewGuardWithClock(store Store, opts Options, now func() time.Time) *Guard {
	def := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.Duration <= 0 {
		opts.Duration = def.Duration
	}
	if opts.AttemptWindow <= 0 {
		opts.AttemptWindow = def.AttemptWindow
	}
	return &Guard{store: store, opts: opts, now: now}
}

func (g *Guard) Options() Options {
	return g.opts
}

// Key scopes a subject to one account and one client address.
func Key(scope, email, ip string) string {
	return scope + ":" + strings.ToLower(strings.TrimSpace(email)) + ":" + ip
}

// Check returns a *LockedError while key is locked.
func (g *Guard) Check(ctx context.Context, key string) error {
	until, err := g.store.LockedUntil(ctx, key)
	if err != nil {
		return fmt.Errorf("lockout: read lock: %w", err)
	}
	now := g.now()
	if until.IsZero() || !now.Before(until) {
		return nil
	}
	return &LockedError{Until: until, RetryAfter: until.Sub(now)}
}

// Fail records a failed attempt. It returns the attempts left before a lock,
// or a *LockedError when this failure triggered one.
func (g *Guard) Fail(ctx context.Context, key string) (int, error) {
	count, err := g.store.RecordFailure(ctx, key, g.opts.AttemptWindow)
	if err != nil {
		return 0, fmt.Errorf("lockout: record failure: %w", err)
	}
	if count < g.opts.MaxAttempts {
		return g.opts.MaxAttempts - count, nil
	}

	until, err := g.store.Lock(ctx, key, g.opts.Duration)
	if err != nil {
		return 0, fmt.Errorf("lockout: lock: %w", err)
	}
	return 0, &LockedError{Until: until, RetryAfter: g.opts.Duration}
}

// Succeed clears the counter and any lock for key.
func (g *Guard) Succeed(ctx context.Context, key string) error {
	if err := g.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("lockout: clear: %w", err)
	}
	return nil
}
