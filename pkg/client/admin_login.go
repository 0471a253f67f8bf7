package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"
)

// LockedError is returned by Submit while the countdown runs. No request is sent.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", int(math.Ceil(e.Remaining.Seconds())))
}

// AdminLogin is the admin sign-in page. The server owns the lockout; this only
// mirrors it so the page can show a countdown, even after a reload.
type AdminLogin struct {
	client  *Client
	session *Storage
	local   *Storage
	now     func() time.Time

	mu          sync.Mutex
	failed      int
	lockedUntil time.Time
}

// NewAdminLogin keeps the signed-in admin in session and the lockout mirror in local.
func NewAdminLogin(client *Client, session, local *Storage) *AdminLogin {
	return NewAdminLoginWithClock(client, session, local, time.Now)
}

func NewAdminLoginWithClock(client *Client, session, local *Storage, now func() time.Time) *AdminLogin {
	f := &AdminLogin{
		client:      client,
		session:     session,
		local:       local,
		now:         now,
		failed:      local.getInt(KeyFailedAttempts),
		lockedUntil: local.getTime(KeyLockoutEnd),
	}
	f.Tick()
	return f
}

// Submit signs the admin in and stores admin_id and the token in the session.
func (f *AdminLogin) Submit(ctx context.Context, email, password string) (*LoginResponse, error) {
	if remaining := f.Remaining(); remaining > 0 {
		return nil, &LockedError{Remaining: remaining}
	}

	res, err := f.client.AdminLogin(ctx, email, password)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return nil, ErrRetry
		}
		f.record(apiErr)
		return nil, apiErr
	}

	f.mu.Lock()
	f.failed = 0
	f.lockedUntil = time.Time{}
	f.mu.Unlock()
	f.local.Delete(KeyFailedAttempts, KeyLockoutEnd)
	f.session.setUint(KeyAdminID, res.AdminID)
	f.session.Set(KeyAdminToken, res.Token)
	return res, nil
}

func (f *AdminLogin) record(apiErr *APIError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch apiErr.Status {
	case http.StatusUnauthorized:
		f.failed++
		f.local.Set(KeyFailedAttempts, fmt.Sprint(f.failed))
	case http.StatusTooManyRequests:
		f.failed = 0
		f.lockedUntil = f.now().Add(apiErr.RetryAfter)
		f.local.Set(KeyFailedAttempts, "0")
		f.local.setTime(KeyLockoutEnd, f.lockedUntil)
	}
}

func (f *AdminLogin) Locked() bool {
	return f.Remaining() > 0
}

// Remaining is the countdown shown next to the disabled button.
func (f *AdminLogin) Remaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lockedUntil.IsZero() {
		return 0
	}
	if left := f.lockedUntil.Sub(f.now()); left > 0 {
		return left
	}
	return 0
}

func (f *AdminLogin) FailedAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed
}

// Tick is the once-a-second refresh. An expired lock is cleared and the attempt count starts over.
func (f *AdminLogin) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lockedUntil.IsZero() || f.now().Before(f.lockedUntil) {
		return
	}
	f.lockedUntil = time.Time{}
	f.failed = 0
	f.local.Delete(KeyLockoutEnd)
	f.local.Set(KeyFailedAttempts, "0")
}
