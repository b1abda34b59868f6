package feedimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/mocks"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>समाचार सेवा</title>
  <link>https://wire.example.in</link>
  <description>राष्ट्रीय खबरें</description>
  <item>
    <title>बजट सत्र की शुरुआत</title>
    <link>https://wire.example.in/1</link>
    <description>संसद का बजट सत्र आज से शुरू।</description>
    <content:encoded><![CDATA[<p>संसद का <strong>बजट सत्र</strong> आज से शुरू हुआ।</p><p>वित्त मंत्री कल बजट पेश करेंगी।</p>]]></content:encoded>
  </item>
  <item>
    <title>मानसून की दस्तक</title>
    <link>https://wire.example.in/2</link>
    <description><![CDATA[<p>केरल में मानसून पहुंचा।</p>]]></description>
  </item>
  <item>
    <title></title>
    <link>https://wire.example.in/3</link>
    <description>शीर्षक नहीं</description>
  </item>
  <item>
    <title>खाली खबर</title>
    <link>https://wire.example.in/4</link>
  </item>
</channel>
</rss>`

func newTestImporter(t *testing.T) (*Importer, *mocks.MockArticleRepository, context.Context) {
	t.Helper()
	repos := mocks.NewRepositories()
	services := service.NewServices(repos, cache.NewMemoryCache(), config.Default(), zerolog.Nop())

	users := repos.User.(*mocks.MockUserRepository)
	editor := &models.User{ID: "wire-desk", Role: models.RoleEditor}
	users.Add(editor)
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{UserID: editor.ID, User: editor})

	return New(services.Article, zerolog.Nop()), repos.Article.(*mocks.MockArticleRepository), ctx
}

func TestImportString(t *testing.T) {
	im, articles, ctx := newTestImporter(t)

	result, err := im.ImportString(ctx, sampleRSS, Options{Category: "national", Region: "दिल्ली"})
	if err != nil {
		t.Fatalf("ImportString() error = %v", err)
	}
	if result.Feed != "समाचार सेवा" || result.Items != 4 {
		t.Errorf("unexpected result header: %+v", result)
	}
	if len(result.Created) != 2 || result.Skipped != 2 {
		t.Fatalf("expected 2 created and 2 skipped, got %+v", result)
	}

	budget, _ := articles.GetBySlug(ctx, "बजट-सत्र-की-शुरुआत")
	if budget == nil {
		t.Fatalf("budget story not stored, created %v", result.Created)
	}
	if budget.Status != models.StatusDraft || budget.AuthorID != "wire-desk" || budget.Category != "राष्ट्रीय" {
		t.Errorf("unexpected article: %+v", budget)
	}
	if !strings.Contains(budget.Content, "**बजट सत्र**") || strings.Contains(budget.Content, "<p>") {
		t.Errorf("content should be markdown, got %q", budget.Content)
	}
	if budget.Excerpt == nil || *budget.Excerpt != "संसद का बजट सत्र आज से शुरू।" {
		t.Errorf("unexpected excerpt: %v", budget.Excerpt)
	}
	if budget.Region == nil || *budget.Region != "दिल्ली" {
		t.Errorf("region not applied: %v", budget.Region)
	}

	monsoon, _ := articles.GetBySlug(ctx, "मानसून-की-दस्तक")
	if monsoon == nil || monsoon.Excerpt != nil || monsoon.Content != "केरल में मानसून पहुंचा।" {
		t.Errorf("description-only item converted wrongly: %+v", monsoon)
	}
}

func TestImportStringIsIdempotent(t *testing.T) {
	im, articles, ctx := newTestImporter(t)

	if _, err := im.ImportString(ctx, sampleRSS, Options{Category: "national"}); err != nil {
		t.Fatalf("first import error = %v", err)
	}
	result, err := im.ImportString(ctx, sampleRSS, Options{Category: "national"})
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}
	if len(result.Created) != 0 {
		t.Errorf("second import should skip known stories, created %v", result.Created)
	}
	if n, _ := articles.Count(ctx); n != 2 {
		t.Errorf("expected 2 stored articles, got %d", n)
	}
}

func TestImportStringLimitAndErrors(t *testing.T) {
	im, _, ctx := newTestImporter(t)

	result, err := im.ImportString(ctx, sampleRSS, Options{Category: "राष्ट्रीय", Limit: 1})
	if err != nil {
		t.Fatalf("ImportString() error = %v", err)
	}
	if result.Items != 1 || len(result.Created) != 1 {
		t.Errorf("limit not applied: %+v", result)
	}

	if _, err := im.ImportString(ctx, sampleRSS, Options{Category: "weather"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown category: expected validation error, got %v", err)
	}
	if _, err := im.ImportString(ctx, "not a feed", Options{Category: "national"}); err == nil {
		t.Error("expected a parse error")
	}

	_, err = im.ImportString(context.Background(), sampleRSS, Options{Category: "national"})
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous import: expected unauthenticated, got %v", err)
	}
}

const punctuationRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>समाचार सेवा</title>
  <item>
    <title>!!! ???</title>
    <link>https://wire.example.in/5</link>
    <description>केवल विराम चिह्न वाला शीर्षक।</description>
  </item>
</channel>
</rss>`

func TestImportStringSkipsUnsluggableTitles(t *testing.T) {
	im, articles, ctx := newTestImporter(t)

	for run := 1; run <= 2; run++ {
		result, err := im.ImportString(ctx, punctuationRSS, Options{Category: "national"})
		if err != nil {
			t.Fatalf("run %d: ImportString() error = %v", run, err)
		}
		if len(result.Created) != 0 || result.Skipped != 1 {
			t.Errorf("run %d: expected the item to be skipped, got %+v", run, result)
		}
	}
	if n, _ := articles.Count(ctx); n != 0 {
		t.Errorf("expected no stored articles, got %d", n)
	}
}
