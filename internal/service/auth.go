package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/lockout"
	"github.com/tajious/parkify/internal/metrics"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/storage"
)

// dummyHash is compared against when the email is unknown, so both paths cost one bcrypt run.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("parkify-unknown-account")
	return h
})

type LoginResult struct {
	SubjectID uint
	Email     string
	Token     string
	ExpiresIn int
}

type principal struct {
	id    uint
	email string
	hash  string
}

type AuthService struct {
	store  storage.Storage
	tokens *auth.TokenIssuer
	guard  *lockout.Guard
	log    zerolog.Logger
}

func NewAuthService(store storage.Storage, tokens *auth.TokenIssuer, guard *lockout.Guard, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		guard:  guard,
		log:    log,
	}
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	return s.login(ctx, models.RoleAdmin, email, password, ip, func(ctx context.Context, email string) (*principal, error) {
		a, err := s.store.GetAdminByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &principal{id: a.ID, email: a.Email, hash: a.Password}, nil
	})
}

func (s *AuthService) LoginLessor(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	return s.login(ctx, models.RoleLessor, email, password, ip, func(ctx context.Context, email string) (*principal, error) {
		l, err := s.store.GetLessorByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &principal{id: l.ID, email: l.Email, hash: l.Password}, nil
	})
}

func (s *AuthService) LoginUser(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	return s.login(ctx, models.RoleUser, email, password, ip, func(ctx context.Context, email string) (*principal, error) {
		u, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &principal{id: u.ID, email: u.Email, hash: u.Password}, nil
	})
}

func (s *AuthService) login(
	ctx context.Context,
	role models.Role,
	email, password, ip string,
	find func(context.Context, string) (*principal, error),
) (*LoginResult, error) {
	key := lockout.Key(string(role), email, ip)

	if err := s.guard.Check(ctx, key); err != nil {
		if errors.Is(err, lockout.ErrLocked) {
			metrics.LoginAttemptsTotal.WithLabelValues(string(role), "locked").Inc()
		}
		return nil, err
	}

	p, err := find(ctx, email)
	switch {
	case isNotFound(err):
		_ = auth.ComparePassword(dummyHash(), password)
		return nil, s.fail(ctx, role, key)
	case err != nil:
		return nil, fmt.Errorf("login %s: %w", role, err)
	}

	if err := auth.ComparePassword(p.hash, password); err != nil {
		return nil, s.fail(ctx, role, key)
	}

	if err := s.guard.Succeed(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("role", string(role)).Msg("failed to clear lockout state")
	}

	token, err := s.tokens.IssueSession(role, p.id, p.email)
	if err != nil {
		return nil, fmt.Errorf("login %s: issue token: %w", role, err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues(string(role), "success").Inc()
	return &LoginResult{
		SubjectID: p.id,
		Email:     p.email,
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *AuthService) fail(ctx context.Context, role models.Role, key string) error {
	metrics.LoginAttemptsTotal.WithLabelValues(string(role), "invalid").Inc()

	remaining, err := s.guard.Fail(ctx, key)
	if err != nil {
		if errors.Is(err, lockout.ErrLocked) {
			metrics.LockoutsTotal.WithLabelValues(string(role)).Inc()
			s.log.Info().Str("role", string(role)).Msg("login locked after repeated failures")
		}
		return err
	}
	return &LoginFailure{AttemptsRemaining: remaining}
}

func (s *AuthService) Admin(ctx context.Context, id uint) (*models.Admin, error) {
	return s.store.GetAdminByID(ctx, id)
}

// EnsureAdmin creates the bootstrap admin unless one with that email exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.store.GetAdminByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrAdminNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.CreateAdmin(ctx, &models.Admin{Email: email, Password: hash}); err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			return nil
		}
		return err
	}
	s.log.Info().Str("email", email).Msg("bootstrap admin created")
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrAdminNotFound) ||
		errors.Is(err, storage.ErrLessorNotFound) ||
		errors.Is(err, storage.ErrUserNotFound)
}
