package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// userService is the concrete implementation of UserService
type userService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newUserService creates a new UserService
func newUserService(repos *repository.Repositories, log zerolog.Logger) *userService {
	return &userService{
		repos: repos,
		log:   log.With().Str("service", "user").Logger(),
	}
}

// Current returns the caller's user row
func (s *userService) Current(ctx context.Context) (*models.User, error) {
	id := auth.FromContext(ctx)
	if !id.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	if id.User != nil {
		return id.User, nil
	}
	return nil, apperr.NotFound("user not found")
}

// Upsert creates a user or refreshes its profile fields. The role is never changed.
func (s *userService) Upsert(ctx context.Context, in *models.UpsertUser) (*models.User, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, apperr.Validation("id is required",
			validation.ValidationError{Field: "id", Message: "id is required"})
	}
	user, err := s.repos.User.Upsert(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email or username already belongs to another user")
		}
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("User upserted")
	return user, nil
}

// SetRole changes a user's role
func (s *userService) SetRole(ctx context.Context, id string, role models.Role) error {
	if !models.ValidRoles[role] {
		return apperr.Validation("invalid role, must be one of: reader, editor, admin",
			validation.ValidationError{Field: "role", Message: "invalid role, must be one of: reader, editor, admin", Value: string(role)})
	}
	found, err := s.repos.User.SetRole(ctx, id, role)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("user not found")
	}
	s.log.Info().Str("user_id", id).Str("role", string(role)).Msg("User role changed")
	return nil
}

// CreateSession issues a server-side session for an existing user
func (s *userService) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	if ttl <= 0 {
		return nil, apperr.Validation("ttl must be positive")
	}
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	session := &models.Session{
		SID:    uuid.New().String(),
		Data:   models.SessionData{UserID: user.ID},
		Expire: time.Now().UTC().Add(ttl),
	}
	if err := s.repos.Session.Put(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Time("expire", session.Expire).Msg("Session created")
	return session, nil
}
