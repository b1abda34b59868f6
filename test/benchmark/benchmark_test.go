package benchmark

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/mocks"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

var categories = []string{"राष्ट्रीय", "खेल", "तकनीक", "व्यापार"}

// seedArticles fills a mock store with n published articles
func seedArticles(b *testing.B, n int) (*repository.Repositories, *service.Services) {
	b.Helper()
	repos := mocks.NewRepositories()
	repos.User.(*mocks.MockUserRepository).Add(&models.User{ID: "reader", Role: models.RoleReader})

	now := time.Now()
	for i := 0; i < n; i++ {
		published := now.Add(-time.Duration(i) * time.Minute)
		err := repos.Article.Create(context.Background(), &models.Article{
			ID:          fmt.Sprintf("a%06d", i),
			Title:       fmt.Sprintf("समाचार %d: बाज़ार में तेज़ी", i),
			Slug:        fmt.Sprintf("samachar-%06d", i),
			Content:     strings.Repeat("आज के प्रमुख समाचार ", 50),
			Category:    categories[i%len(categories)],
			AuthorID:    "editor",
			Status:      models.StatusPublished,
			ReadTime:    1,
			Views:       i % 97,
			PublishedAt: &published,
		})
		if err != nil {
			b.Fatalf("seed: %v", err)
		}
	}
	return repos, service.NewServices(repos, cache.NewMemoryCache(), config.Default(), zerolog.Nop())
}

// BenchmarkStreamArticles benchmarks NDJSON export throughput
func BenchmarkStreamArticles(b *testing.B) {
	_, services := seedArticles(b, 1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := services.Export.StreamArticles(context.Background(), io.Discard, "ndjson"); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkSearch benchmarks the in-memory search filter over the scan window
func BenchmarkSearch(b *testing.B) {
	_, services := seedArticles(b, 1000)
	q := service.SearchQuery{Q: "बाज़ार"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Article.Search(context.Background(), q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRankingRefresh benchmarks one full materialization pass
func BenchmarkRankingRefresh(b *testing.B) {
	_, services := seedArticles(b, 1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := services.Ranking.Refresh(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRecordViewParallel benchmarks concurrent view increments on one article
func BenchmarkRecordViewParallel(b *testing.B) {
	_, services := seedArticles(b, 1)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if err := services.Article.RecordView(ctx, "a000000"); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkToggleReaction benchmarks the add/remove toggle cycle
func BenchmarkToggleReaction(b *testing.B) {
	repos, services := seedArticles(b, 1)
	user, _ := repos.User.GetByID(context.Background(), "reader")
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{UserID: "reader", User: user})
	in := &models.ReactionInput{ArticleID: "a000000", Type: "like"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Interaction.ToggleReaction(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkValidation benchmarks article input validation
func BenchmarkValidation(b *testing.B) {
	validator := validation.NewValidator()
	excerpt := "संक्षेप"
	in := &models.ArticleInput{
		Title:    "भारत ने श्रृंखला जीती",
		Content:  strings.Repeat("शब्द ", 400),
		Excerpt:  &excerpt,
		Category: "खेल",
		Status:   models.StatusPublished,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validator.ValidateArticle(in)
	}
}

// BenchmarkSlugify benchmarks slug derivation from Devanagari titles
func BenchmarkSlugify(b *testing.B) {
	title := "क्रिकेट: भारत ने ऑस्ट्रेलिया को 5 विकेट से हराया, श्रृंखला 2-1 से जीती"

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = validation.Slugify(title)
	}
}

// BenchmarkReadTime benchmarks word counting for read-time derivation
func BenchmarkReadTime(b *testing.B) {
	content := strings.Repeat("आज के प्रमुख समाचार ", 2000)

	b.ReportAllocs()
	b.SetBytes(int64(len(content)))
	for i := 0; i < b.N; i++ {
		_ = validation.ReadTime(content, 200)
	}
}
