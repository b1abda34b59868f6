package service

import (
	"context"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
)

// Require checks that the caller in ctx may perform action: 401 when anonymous,
// 403 when the role is too low.
func Require(ctx context.Context, action authz.Action) (*auth.Identity, error) {
	id := auth.FromContext(ctx)
	if authz.Can(id.Role(), action) {
		return id, nil
	}
	if !id.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	return nil, apperr.Forbidden("insufficient permissions")
}

// visibleArticle loads an article the caller may see. Unpublished articles are
// reported as missing to readers.
func visibleArticle(ctx context.Context, repo repository.ArticleRepository, id string) (*models.Article, error) {
	article, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil || !canSee(ctx, article) {
		return nil, apperr.NotFound("article not found")
	}
	return article, nil
}

func canSee(ctx context.Context, article *models.Article) bool {
	return article.IsPublished() || authz.SeesUnpublished(auth.FromContext(ctx).Role())
}
