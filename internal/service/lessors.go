package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/lockout"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/storage"
)

const verifyScope = "lessor-verify"

type LessorService struct {
	store  storage.Storage
	tokens *auth.TokenIssuer
	grants auth.GrantStore
	guard  *lockout.Guard
	log    zerolog.Logger
}

func NewLessorService(store storage.Storage, tokens *auth.TokenIssuer, grants auth.GrantStore, guard *lockout.Guard, log zerolog.Logger) *LessorService {
	return &LessorService{store: store, tokens: tokens, grants: grants, guard: guard, log: log}
}

func (s *LessorService) Get(ctx context.Context, id uint) (*models.Lessor, error) {
	return s.store.GetLessorByID(ctx, id)
}

// VerifyPassword checks the current password and returns a short-lived grant
// that unlocks a password change. Wrong guesses count towards the lockout.
func (s *LessorService) VerifyPassword(ctx context.Context, id uint, password, ip string) (string, error) {
	lessor, err := s.store.GetLessorByID(ctx, id)
	if err != nil {
		return "", err
	}

	key := lockout.Key(verifyScope, lessor.Email, ip)
	if err := s.guard.Check(ctx, key); err != nil {
		return "", err
	}

	if err := auth.ComparePassword(lessor.Password, password); err != nil {
		remaining, err := s.guard.Fail(ctx, key)
		if err != nil {
			return "", err
		}
		return "", &LoginFailure{AttemptsRemaining: remaining}
	}

	if err := s.guard.Succeed(ctx, key); err != nil {
		s.log.Warn().Err(err).Uint("lessor_id", id).Msg("failed to clear verify lockout")
	}
	return s.tokens.IssuePasswordChange(lessor.ID, lessor.Email)
}

// Update replaces the editable profile fields. A new password needs a grant from
// VerifyPassword, and each grant changes the password at most once.
func (s *LessorService) Update(ctx context.Context, id uint, req models.UpdateLessorRequest, passwordToken string) (*models.Lessor, error) {
	lessor, err := s.store.GetLessorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Password != "" {
		grantID, err := s.spendGrant(ctx, id, passwordToken)
		if err != nil {
			return nil, err
		}
		updated, err := s.update(ctx, lessor, req)
		if err != nil {
			if rerr := s.grants.Release(context.WithoutCancel(ctx), grantID); rerr != nil {
				s.log.Warn().Err(rerr).Uint("lessor_id", id).Msg("failed to release password grant")
			}
			return nil, err
		}
		return updated, nil
	}

	return s.update(ctx, lessor, req)
}

// spendGrant checks a password-change grant and marks it used.
func (s *LessorService) spendGrant(ctx context.Context, id uint, token string) (string, error) {
	claims, err := s.tokens.Parse(token, models.PurposePasswordChange)
	if err != nil || claims.Role != models.RoleLessor || claims.SubjectID != id || claims.ID == "" {
		return "", ErrPasswordNotVerified
	}
	fresh, err := s.grants.Consume(ctx, claims.ID, auth.PasswordChangeTTL)
	if err != nil {
		return "", fmt.Errorf("update lessor: consume grant: %w", err)
	}
	if !fresh {
		return "", ErrPasswordNotVerified
	}
	return claims.ID, nil
}

func (s *LessorService) update(ctx context.Context, lessor *models.Lessor, req models.UpdateLessorRequest) (*models.Lessor, error) {
	id := lessor.ID
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("update lessor: hash password: %w", err)
		}
		lessor.Password = hash
	}

	lessor.FirstName = req.FirstName
	lessor.LastName = req.LastName
	lessor.PhoneNumber = req.PhoneNumber
	lessor.Email = req.Email

	if err := s.store.UpdateLessor(ctx, lessor); err != nil {
		if errors.Is(err, storage.ErrPhoneExists) || errors.Is(err, storage.ErrEmailExists) || errors.Is(err, storage.ErrLessorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update lessor: %w", err)
	}

	s.log.Info().Uint("lessor_id", id).Bool("password_changed", req.Password != "").Msg("lessor profile updated")
	return s.store.GetLessorByID(ctx, id)
}

func (s *LessorService) Delete(ctx context.Context, id uint) error {
	if err := s.store.DeleteLessor(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("lessor_id", id).Msg("lessor deleted")
	return nil
}
