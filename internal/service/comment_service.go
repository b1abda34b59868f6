package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	log       zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, validator *validation.Validator, log zerolog.Logger) *commentService {
	return &commentService{
		repos:     repos,
		validator: validator,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// ListByArticle returns an article's comments, newest first. Readers see approved comments only.
func (s *commentService) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if _, err := visibleArticle(ctx, s.repos.Article, articleID); err != nil {
		return nil, err
	}
	approvedOnly := !authz.Can(auth.FromContext(ctx).Role(), authz.ModerateComment)
	return s.repos.Comment.ListByArticle(ctx, articleID, approvedOnly)
}

// Create posts a comment as the caller. A reply must point at a comment on the same article.
func (s *commentService) Create(ctx context.Context, in *models.CommentInput) (*models.Comment, error) {
	caller, err := Require(ctx, authz.Comment)
	if err != nil {
		return nil, err
	}

	var errs []validation.ValidationError
	if strings.TrimSpace(in.ArticleID) == "" {
		errs = append(errs, validation.ValidationError{Field: "articleId", Message: "articleId is required"})
	}
	errs = append(errs, s.validator.ValidateComment(in.Content)...)
	if len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}

	if _, err := visibleArticle(ctx, s.repos.Article, in.ArticleID); err != nil {
		return nil, err
	}

	var parentID *string
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.repos.Comment.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.ArticleID != in.ArticleID {
			return nil, apperr.Validation("parent comment not found on this article",
				validation.ValidationError{Field: "parentId", Message: "parent comment not found on this article", Value: *in.ParentID})
		}
		parentID = &parent.ID
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: in.ArticleID,
		UserID:    caller.UserID,
		Content:   strings.TrimSpace(in.Content),
		ParentID:  parentID,
		Status:    models.CommentApproved,
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Info().Str("comment_id", comment.ID).Str("article_id", comment.ArticleID).Msg("Comment created")
	return comment, nil
}

// Update moderates a comment's content and/or status
func (s *commentService) Update(ctx context.Context, id string, update *models.CommentUpdate) (*models.Comment, error) {
	caller, err := Require(ctx, authz.ModerateComment)
	if err != nil {
		return nil, err
	}
	if update == nil || (update.Content == nil && update.Status == nil) {
		return nil, apperr.Validation("no valid fields to update")
	}

	var errs []validation.ValidationError
	if update.Content != nil {
		errs = append(errs, s.validator.ValidateComment(*update.Content)...)
		trimmed := strings.TrimSpace(*update.Content)
		update.Content = &trimmed
	}
	if update.Status != nil && !models.ValidCommentStatuses[*update.Status] {
		errs = append(errs, validation.ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: approved, pending, rejected",
			Value:   string(*update.Status),
		})
	}
	if len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}

	found, err := s.repos.Comment.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("comment not found")
	}

	comment, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperr.NotFound("comment not found")
	}

	s.log.Info().Str("comment_id", id).Str("user_id", caller.UserID).Msg("Comment moderated")
	return comment, nil
}

// Delete removes a comment and its replies
func (s *commentService) Delete(ctx context.Context, id string) error {
	caller, err := Require(ctx, authz.ModerateComment)
	if err != nil {
		return err
	}
	deleted, err := s.repos.Comment.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("comment not found")
	}
	s.log.Info().Str("comment_id", id).Str("user_id", caller.UserID).Msg("Comment deleted")
	return nil
}
