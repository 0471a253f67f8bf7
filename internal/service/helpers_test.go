package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/lockout"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/storage"
)

const testSecret = "test-secret"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store  *storage.InMemoryStorage
	tokens *auth.TokenIssuer
	grants *auth.MemoryGrantStore
	guard  *lockout.Guard
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		store:  storage.NewInMemoryStorage(),
		tokens: auth.NewTokenIssuer(testSecret, time.Hour),
		grants: auth.NewMemoryGrantStoreWithClock(clock.Now),
		guard:  lockout.NewGuardWithClock(lockout.NewMemoryStoreWithClock(clock.Now), lockout.DefaultOptions(), clock.Now),
		clock:  clock,
	}
}

func (f *fixture) authService() *AuthService {
	return NewAuthService(f.store, f.tokens, f.guard, zerolog.Nop())
}

func (f *fixture) lessorService() *LessorService {
	return NewLessorService(f.store, f.tokens, f.grants, f.guard, zerolog.Nop())
}

func (f *fixture) seedLessor(t *testing.T, email, password string) *models.Lessor {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	l := &models.Lessor{FirstName: "Lee", LastName: "Sor", PhoneNumber: "07" + email, Email: email, Password: hash}
	require.NoError(t, f.store.CreateLessor(context.Background(), l))
	return l
}

func (f *fixture) seedUser(t *testing.T, phone, email string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: phone, Email: email, Password: hash}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}
