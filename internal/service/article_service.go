package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/metrics"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// slugAttempts bounds retries when a derived slug keeps colliding
const slugAttempts = 5

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	rankings  RankingService
	cfg       config.ContentConfig
	log       zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, validator *validation.Validator, rankings RankingService, cfg config.ContentConfig, log zerolog.Logger) *articleService {
	return &articleService{
		repos:     repos,
		validator: validator,
		rankings:  rankings,
		cfg:       cfg,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// List returns articles matching q. Readers only ever see published articles.
func (s *articleService) List(ctx context.Context, q ListQuery) ([]*models.Article, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, err
	}

	if !authz.SeesUnpublished(auth.FromContext(ctx).Role()) {
		if filter.Status != "" && filter.Status != models.StatusPublished {
			return []*models.Article{}, nil
		}
		filter.Status = models.StatusPublished
	}

	return s.repos.Article.List(ctx, filter)
}

func (s *articleService) filter(q ListQuery) (models.ArticleFilter, error) {
	var errs []validation.ValidationError

	filter := models.ArticleFilter{
		Region:   q.Region,
		AuthorID: q.AuthorID,
		Featured: q.Featured,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Category != "" {
		category, ok := models.ResolveCategory(validation.Normalize(q.Category))
		if !ok {
			errs = append(errs, validation.ValidationError{Field: "category", Message: "unknown category", Value: q.Category})
		}
		filter.Category = category
	}
	if q.Status != "" {
		status := models.ArticleStatus(q.Status)
		if !models.ValidStatuses[status] {
			errs = append(errs, validation.ValidationError{Field: "status", Message: "invalid status, must be one of: draft, scheduled, published", Value: q.Status})
		}
		filter.Status = status
	}
	if q.Limit < 0 {
		errs = append(errs, validation.ValidationError{Field: "limit", Message: "limit must not be negative", Value: q.Limit})
	}
	if q.Offset < 0 {
		errs = append(errs, validation.ValidationError{Field: "offset", Message: "offset must not be negative", Value: q.Offset})
	}
	if len(errs) > 0 {
		return filter, apperr.Validation("invalid query parameters", errs...)
	}

	if filter.Limit == 0 {
		filter.Limit = s.cfg.DefaultPageSize
	}
	if filter.Limit > s.cfg.MaxPageSize {
		filter.Limit = s.cfg.MaxPageSize
	}
	return filter, nil
}

// Search filters published articles in memory. At least one of q, category and
// region must be given.
func (s *articleService) Search(ctx context.Context, q SearchQuery) ([]*models.Article, error) {
	term := strings.ToLower(validation.Normalize(q.Q))
	region := strings.ToLower(validation.Normalize(q.Region))
	category := validation.Normalize(q.Category)

	if term == "" && region == "" && category == "" {
		return nil, apperr.Validation("at least one of q, category or region is required")
	}

	filter := models.ArticleFilter{Status: models.StatusPublished, Limit: s.cfg.SearchScanLimit}
	if category != "" {
		resolved, ok := models.ResolveCategory(category)
		if !ok {
			return nil, apperr.Validation("unknown category",
				validation.ValidationError{Field: "category", Message: "unknown category", Value: q.Category})
		}
		filter.Category = resolved
	}

	candidates, err := s.repos.Article.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]*models.Article, 0)
	for _, a := range candidates {
		if region != "" && !contains(a.Region, region) {
			continue
		}
		if term != "" && !contains(&a.Title, term) && !contains(&a.Content, term) && !contains(a.Excerpt, term) {
			continue
		}
		results = append(results, a)
	}
	return results, nil
}

func contains(field *string, term string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(validation.Normalize(*field)), term)
}

// Get returns a visible article by id
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	return visibleArticle(ctx, s.repos.Article, id)
}

// GetBySlug returns a visible article by slug
func (s *articleService) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.repos.Article.GetBySlug(ctx, validation.Normalize(slug))
	if err != nil {
		return nil, err
	}
	if article == nil || !canSee(ctx, article) {
		return nil, apperr.NotFound("article not found")
	}
	return article, nil
}

// Create stores a new article owned by the caller
func (s *articleService) Create(ctx context.Context, in *models.ArticleInput) (*models.Article, error) {
	id, err := Require(ctx, authz.CreateArticle)
	if err != nil {
		return nil, err
	}

	in.Title = validation.Normalize(in.Title)
	in.Slug = validation.Normalize(in.Slug)
	in.Category = validation.Normalize(in.Category)
	if errs := s.validator.ValidateArticle(in); len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}
	category, _ := models.ResolveCategory(in.Category)

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	readTime := in.ReadTime
	if readTime == 0 {
		readTime = validation.ReadTime(in.Content, s.cfg.WordsPerMinute)
	}
	publishedAt := in.PublishedAt
	if status == models.StatusPublished && publishedAt == nil {
		ts := time.Now().UTC()
		publishedAt = &ts
	}

	article := &models.Article{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Category:    category,
		Region:      in.Region,
		ImageURL:    in.ImageURL,
		AuthorID:    id.UserID,
		Status:      status,
		Featured:    in.Featured,
		ReadTime:    readTime,
		PublishedAt: publishedAt,
	}

	if in.Slug != "" {
		article.Slug = in.Slug
		if err := s.repos.Article.Create(ctx, article); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperr.Conflict("an article with this slug already exists")
			}
			return nil, err
		}
	} else if err := s.createWithDerivedSlug(ctx, article); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("author_id", article.AuthorID).
		Msg("Article created")

	if article.IsPublished() {
		s.rankings.Invalidate(ctx)
	}
	return article, nil
}

// createWithDerivedSlug slugifies the title and appends a short random suffix
// until the insert no longer collides.
func (s *articleService) createWithDerivedSlug(ctx context.Context, article *models.Article) error {
	base := validation.Slugify(article.Title)
	if base == "" {
		base = "article"
	}

	article.Slug = base
	for attempt := 0; attempt < slugAttempts; attempt++ {
		err := s.repos.Article.Create(ctx, article)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		article.Slug = base + "-" + uuid.New().String()[:8]
	}
	return apperr.Conflict("could not derive a unique slug")
}

// Update applies a partial update. Editors may change their own articles, admins any.
func (s *articleService) Update(ctx context.Context, id string, patch *models.ArticlePatch) (*models.Article, error) {
	caller, err := Require(ctx, authz.UpdateOwn)
	if err != nil {
		return nil, err
	}
	if patch == nil || patch.Empty() {
		return nil, apperr.Validation("no valid fields to update")
	}

	if patch.Title.Set {
		patch.Title.Value = validation.Normalize(patch.Title.Value)
	}
	if patch.Slug.Set {
		patch.Slug.Value = validation.Normalize(patch.Slug.Value)
	}
	if patch.Category.Set {
		patch.Category.Value = validation.Normalize(patch.Category.Value)
	}
	if errs := s.validator.ValidatePatch(patch); len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}
	if patch.Category.Set {
		patch.Category.Value, _ = models.ResolveCategory(patch.Category.Value)
	}

	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article not found")
	}
	if !authz.CanUpdateArticle(caller.Role(), caller.UserID, article) {
		return nil, apperr.Forbidden("only the author or an admin may edit this article")
	}

	if patch.Content.Set && !patch.ReadTime.Set {
		patch.ReadTime = models.Field[int]{Set: true, Value: validation.ReadTime(patch.Content.Value, s.cfg.WordsPerMinute)}
	}
	if patch.Status.Set && patch.Status.Value == models.StatusPublished && article.PublishedAt == nil && !patch.PublishedAt.Set {
		ts := time.Now().UTC()
		patch.PublishedAt = models.Field[*time.Time]{Set: true, Value: &ts}
	}

	found, err := s.repos.Article.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("an article with this slug already exists")
		}
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("article not found")
	}

	updated, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("article not found")
	}

	s.log.Info().Str("article_id", id).Str("user_id", caller.UserID).Msg("Article updated")

	switch {
	case article.IsPublished() && !updated.IsPublished():
		s.rankings.Withdraw(ctx)
	case article.IsPublished() || updated.IsPublished():
		s.rankings.Invalidate(ctx)
	}
	return updated, nil
}

// Delete removes an article and everything attached to it
func (s *articleService) Delete(ctx context.Context, id string) error {
	caller, err := Require(ctx, authz.DeleteArticle)
	if err != nil {
		return err
	}

	deleted, err := s.repos.Article.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("article not found")
	}

	s.log.Info().Str("article_id", id).Str("user_id", caller.UserID).Msg("Article deleted")
	s.rankings.Withdraw(ctx)
	return nil
}

// RecordView adds one view to a visible article
func (s *articleService) RecordView(ctx context.Context, id string) error {
	if _, err := visibleArticle(ctx, s.repos.Article, id); err != nil {
		return err
	}
	found, err := s.repos.Article.IncrementViews(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("article not found")
	}
	metrics.ArticleViewsTotal.Inc()
	return nil
}
