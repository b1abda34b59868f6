package service

import (
	"context"

	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
)

type statsService struct {
	repos *repository.Repositories
}

func newStatsService(repos *repository.Repositories) *statsService {
	return &statsService{repos: repos}
}

// Get counts the rows of every table readers interact with
func (s *statsService) Get(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	counters := []struct {
		dst   *int
		count func(context.Context) (int, error)
	}{
		{&stats.Users, s.repos.User.Count},
		{&stats.Articles, s.repos.Article.Count},
		{&stats.Comments, s.repos.Comment.Count},
		{&stats.Reactions, s.repos.Reaction.Count},
		{&stats.Bookmarks, s.repos.Bookmark.Count},
	}
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &stats, nil
}
