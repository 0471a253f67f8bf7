package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin_LockoutCountdown(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)
	c := New(srv.url, 5*time.Second)
	s := NewSession()
	local := NewLocalStorage()
	page := NewAdminLoginWithClock(c, s, local, srv.clock.Now)

	for i := 1; i <= 2; i++ {
		_, err := page.Submit(ctx, "root@parkify.io", "wrong")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Invalid email or password.", apiErr.Message)
		assert.Equal(t, 3-i, apiErr.AttemptsRemaining)
		assert.Equal(t, i, page.FailedAttempts())
	}

	_, err := page.Submit(ctx, "root@parkify.io", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Too many failed attempts. Try again in 30 seconds.", apiErr.Message)
	assert.True(t, page.Locked())
	assert.Equal(t, 30*time.Second, page.Remaining())
	assert.Zero(t, page.FailedAttempts())

	assert.Equal(t, "0", local.Get(KeyFailedAttempts))
	assert.NotEmpty(t, local.Get(KeyLockoutEnd))
	assert.Empty(t, s.Get(KeyLockoutEnd))

	// a new tab starts with an empty session but sees the same local storage
	srv.clock.Advance(10 * time.Second)
	s = NewSession()
	reloaded := NewAdminLoginWithClock(c, s, local, srv.clock.Now)
	assert.Equal(t, 20*time.Second, reloaded.Remaining())

	_, err = reloaded.Submit(ctx, "root@parkify.io", "hunter22")
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "Too many failed attempts. Try again in 20 seconds.", locked.Error())

	srv.clock.Advance(20 * time.Second)
	reloaded.Tick()
	assert.False(t, reloaded.Locked())
	assert.Equal(t, "0", local.Get(KeyFailedAttempts))
	assert.Empty(t, local.Get(KeyLockoutEnd))

	res, err := reloaded.Submit(ctx, "root@parkify.io", "hunter22")
	require.NoError(t, err)
	assert.NotZero(t, res.AdminID)
	assert.Equal(t, res.Token, s.Get(KeyAdminToken))
	assert.NotEmpty(t, s.Get(KeyAdminID))
	assert.Empty(t, local.Get(KeyFailedAttempts))
	assert.Empty(t, local.Get(KeyAdminID))
}

func TestAdminLogin_TransportFailure(t *testing.T) {
	page := NewAdminLogin(New("http://127.0.0.1:1", time.Second), NewSession(), NewLocalStorage())
	_, err := page.Submit(context.Background(), "root@parkify.io", "pw")
	assert.Equal(t, ErrRetry, err)
	assert.Zero(t, page.FailedAttempts())
}
