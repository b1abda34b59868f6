package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/metrics"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// rankingService is the concrete implementation of RankingService
type rankingService struct {
	repos   *repository.Repositories
	cache   cache.RankingCache
	cfg     config.RankingsConfig
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
	// dirty wakes the processor early after a write that changes rankings
	dirty chan struct{}
	// Semaphore: buffered channel to limit concurrent ranking queries
	sem chan struct{}
	// refreshMu orders full rebuilds and cache-miss builds so an older one never lands last
	refreshMu sync.Mutex
}

// rankingTask is one (kind, category) pair to rebuild
type rankingTask struct {
	kind     models.RankingKind
	category string
}

// newRankingService creates a new RankingService with a worker pool sized for I/O-bound work
func newRankingService(repos *repository.Repositories, rankings cache.RankingCache, cfg config.RankingsConfig, log zerolog.Logger) *rankingService {
	// Ranking queries wait on the database, so allow more workers than cores
	maxWorkers := runtime.NumCPU() * 4
	if maxWorkers < 4 {
		maxWorkers = 4
	}
	if maxWorkers > 32 {
		maxWorkers = 32
	}

	if rankings == nil {
		rankings = cache.NewMemoryCache()
	}

	return &rankingService{
		repos: repos,
		cache: rankings,
		cfg:   cfg,
		log:   log.With().Str("service", "ranking").Logger(),
		dirty: make(chan struct{}, 1),
		sem:   make(chan struct{}, maxWorkers),
	}
}

// StartProcessor rebuilds rankings and purges expired sessions every interval until
// ctx is cancelled or StopProcessor is called. It blocks.
func (s *rankingService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.log.Info().Dur("interval", s.cfg.Interval).Int("workers", cap(s.sem)).Msg("Ranking processor started")

	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick()
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Ranking processor stopping")
			return
		case <-ticker.C:
			s.tick()
		case <-s.dirty:
			s.runRefresh()
		}
	}
}

// StopProcessor stops the background processor and waits for in-flight work
func (s *rankingService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Ranking processor stopped")
}

func (s *rankingService) tick() {
	s.runRefresh()
	s.purgeSessions()
}

func (s *rankingService) runRefresh() {
	if err := s.Refresh(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error().Err(err).Msg("Ranking refresh failed")
	}
}

func (s *rankingService) purgeSessions() {
	purged, err := s.repos.Session.PurgeExpired(s.ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to purge expired sessions")
		return
	}
	if purged > 0 {
		metrics.SessionsPurgedTotal.Add(float64(purged))
		s.log.Info().Int64("purged", purged).Msg("Expired sessions purged")
	}
}

// Invalidate asks for a rebuild after a write. A running processor picks it up
// asynchronously; otherwise the rebuild runs inline.
func (s *rankingService) Invalidate(ctx context.Context) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if running {
		select {
		case s.dirty <- struct{}{}:
		default:
		}
		return
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("Ranking refresh after write failed")
	}
}

// Withdraw rebuilds every ranking before returning. Writes that take an article out of
// public view call it so the article is never served from a cached ranking afterwards.
func (s *rankingService) Withdraw(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("Ranking refresh after withdrawal failed")
	}
}

// Refresh rebuilds every ranking: each kind globally and per category
func (s *rankingService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	defer func() { metrics.RankingRefreshDuration.Observe(time.Since(start).Seconds()) }()

	var tasks []rankingTask
	for _, kind := range []models.RankingKind{models.RankingMostRead, models.RankingLatest} {
		tasks = append(tasks, rankingTask{kind: kind})
		for _, c := range models.Categories {
			tasks = append(tasks, rankingTask{kind: kind, category: c.DBValue})
		}
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
		failed   int
	)
	record := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		failed++
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, task := range tasks {
		// Acquire semaphore slot - blocks if all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}

		wg.Add(1)
		go func(t rankingTask) {
			defer wg.Done()
			defer func() { <-s.sem }()

			// A panic in one ranking must not take down the processor
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("kind", string(t.kind)).
						Str("category", t.category).
						Msg("Ranking rebuild panicked - recovered")
					metrics.RankingRefreshErrors.Inc()
					record(fmt.Errorf("ranking %s panicked: %v", cache.Key(t.kind, t.category), r))
				}
			}()

			if _, err := s.build(ctx, t.kind, t.category); err != nil {
				metrics.RankingRefreshErrors.Inc()
				record(err)
			}
		}(task)
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("%d of %d rankings failed: %w", failed, len(tasks), firstErr)
	}

	s.log.Debug().
		Int("rankings", len(tasks)).
		Dur("took", time.Since(start)).
		Msg("Rankings refreshed")
	return nil
}

// build queries one ranking and stores it in the cache
func (s *rankingService) build(ctx context.Context, kind models.RankingKind, category string) (*models.Ranking, error) {
	articles, err := s.repos.Article.Top(ctx, kind, category, s.cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("ranking %s: %w", cache.Key(kind, category), err)
	}
	ranking := &models.Ranking{
		Kind:        kind,
		Category:    category,
		Articles:    articles,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, ranking, s.cfg.TTL); err != nil {
		// Serve the fresh ranking even if the cache is unavailable
		s.log.Warn().Err(err).Str("key", cache.Key(kind, category)).Msg("Failed to cache ranking")
	}
	return ranking, nil
}

// Get serves a ranking from the cache, building it on a miss. limit 0 means the full list.
func (s *rankingService) Get(ctx context.Context, kind models.RankingKind, category string, limit int) (*models.Ranking, error) {
	if !models.ValidRankingKinds[kind] {
		return nil, apperr.NotFound("unknown ranking")
	}
	if limit < 0 {
		return nil, apperr.Validation("limit must be a non-negative integer")
	}
	if category != "" {
		resolved, ok := models.ResolveCategory(validation.Normalize(category))
		if !ok {
			return nil, apperr.Validation("unknown category",
				validation.ValidationError{Field: "category", Message: "unknown category", Value: category})
		}
		category = resolved
	}

	ranking := s.cached(ctx, kind, category)
	if ranking == nil {
		s.refreshMu.Lock()
		ranking = s.cached(ctx, kind, category)
		if ranking == nil {
			var err error
			if ranking, err = s.build(ctx, kind, category); err != nil {
				s.refreshMu.Unlock()
				return nil, err
			}
		}
		s.refreshMu.Unlock()
	}

	if limit > 0 && limit < len(ranking.Articles) {
		trimmed := *ranking
		trimmed.Articles = ranking.Articles[:limit]
		return &trimmed, nil
	}
	return ranking, nil
}

func (s *rankingService) cached(ctx context.Context, kind models.RankingKind, category string) *models.Ranking {
	ranking, err := s.cache.Get(ctx, kind, category)
	if err != nil {
		s.log.Warn().Err(err).Str("key", cache.Key(kind, category)).Msg("Ranking cache read failed")
		return nil
	}
	return ranking
}
