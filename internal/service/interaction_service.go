package service

import (
	"context"
	"errors"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// interactionService is the concrete implementation of InteractionService
type interactionService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newInteractionService creates a new InteractionService
func newInteractionService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *interactionService {
	return &interactionService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "interaction").Logger(),
	}
}

// ListReactions returns every reaction on a visible article
func (s *interactionService) ListReactions(ctx context.Context, articleID string) ([]*models.Reaction, error) {
	if _, err := visibleArticle(ctx, s.repos.Article, articleID); err != nil {
		return nil, err
	}
	return s.repos.Reaction.ListByArticle(ctx, articleID)
}

// ReactionCounts returns the number of reactions of each type, including zeros
func (s *interactionService) ReactionCounts(ctx context.Context, articleID string) (models.ReactionCounts, error) {
	if _, err := visibleArticle(ctx, s.repos.Article, articleID); err != nil {
		return nil, err
	}
	counts, err := s.repos.Reaction.CountsByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	for t := range models.ValidReactionTypes {
		if _, ok := counts[t]; !ok {
			counts[t] = 0
		}
	}
	return counts, nil
}

// ToggleReaction adds, removes or switches the caller's reaction on an article
func (s *interactionService) ToggleReaction(ctx context.Context, in *models.ReactionInput) (*models.Reaction, error) {
	caller, err := Require(ctx, authz.React)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.ValidateReaction(in); len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}
	if _, err := visibleArticle(ctx, s.repos.Article, in.ArticleID); err != nil {
		return nil, err
	}

	reaction, err := s.repos.Reaction.Toggle(ctx, caller.UserID, in.ArticleID, in.Type)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("reaction changed concurrently, retry")
		}
		return nil, err
	}

	s.log.Debug().
		Str("user_id", caller.UserID).
		Str("article_id", in.ArticleID).
		Bool("active", reaction != nil).
		Msg("Reaction toggled")
	return reaction, nil
}

// ListBookmarks returns the caller's bookmarks, newest first
func (s *interactionService) ListBookmarks(ctx context.Context) ([]*models.Bookmark, error) {
	caller, err := Require(ctx, authz.Bookmark)
	if err != nil {
		return nil, err
	}
	return s.repos.Bookmark.ListByUser(ctx, caller.UserID)
}

// ToggleBookmark saves or unsaves an article for the caller
func (s *interactionService) ToggleBookmark(ctx context.Context, in *models.BookmarkInput) (*models.Bookmark, error) {
	caller, err := Require(ctx, authz.Bookmark)
	if err != nil {
		return nil, err
	}
	if errs := s.validator.ValidateBookmark(in); len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}
	if _, err := visibleArticle(ctx, s.repos.Article, in.ArticleID); err != nil {
		return nil, err
	}

	bookmark, err := s.repos.Bookmark.Toggle(ctx, caller.UserID, in.ArticleID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("bookmark changed concurrently, retry")
		}
		return nil, err
	}
	return bookmark, nil
}
