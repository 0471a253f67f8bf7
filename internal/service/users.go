package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/metrics"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/storage"
)

type UserService struct {
	store  storage.Storage
	tokens *auth.TokenIssuer
	log    zerolog.Logger
}

func NewUserService(store storage.Storage, tokens *auth.TokenIssuer, log zerolog.Logger) *UserService {
	return &UserService{store: store, tokens: tokens, log: log}
}

// Register stores a new user with a hashed password and returns a session token.
// The phone lookup only produces the friendly early answer; the unique index decides.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	_, err := s.store.GetUserByPhone(ctx, req.PhoneNumber)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("duplicate_phone").Inc()
		return nil, "", storage.ErrPhoneExists
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, "", fmt.Errorf("register: check phone: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("register: hash password: %w", err)
	}

	user := &models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrPhoneExists):
			metrics.RegistrationsTotal.WithLabelValues("duplicate_phone").Inc()
			return nil, "", err
		case errors.Is(err, storage.ErrEmailExists):
			metrics.RegistrationsTotal.WithLabelValues("duplicate_email").Inc()
			return nil, "", err
		}
		return nil, "", fmt.Errorf("register: insert user: %w", err)
	}

	token, err := s.tokens.IssueSession(models.RoleUser, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("register: issue token: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, id)
}
