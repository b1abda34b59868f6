// Package feedimport turns RSS and Atom wire stories into draft articles.
package feedimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/metrics"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

// maxExcerptRunes bounds the excerpt taken from an item description
const maxExcerptRunes = 300

// ArticleStore is the part of the article service the importer needs
type ArticleStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, in *models.ArticleInput) (*models.Article, error)
}

// Options controls one import run
type Options struct {
	// Category is required and accepts either the Hindi value or the URL slug
	Category string
	Region   string
	// Limit caps the number of items read from the feed; 0 means all
	Limit int
}

// Result summarizes one import run
type Result struct {
	Feed     string   `json:"feed"`
	Items    int      `json:"items"`
	Created  []string `json:"created"`
	Skipped  int      `json:"skipped"`
	Failures []string `json:"failures,omitempty"`
}

// Importer fetches feeds and stores their items as drafts authored by the caller
type Importer struct {
	parser    *gofeed.Parser
	converter *md.Converter
	articles  ArticleStore
	log       zerolog.Logger
}

// New creates an Importer
func New(articles ArticleStore, log zerolog.Logger) *Importer {
	return &Importer{
		parser:    gofeed.NewParser(),
		converter: md.NewConverter("", true, nil),
		articles:  articles,
		log:       log.With().Str("component", "feedimport").Logger(),
	}
}

// Import fetches feedURL and imports its items
func (im *Importer) Import(ctx context.Context, feedURL string, opts Options) (*Result, error) {
	feed, err := im.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}
	return im.importFeed(ctx, feed, opts)
}

// ImportString imports items from an already downloaded feed document
func (im *Importer) ImportString(ctx context.Context, data string, opts Options) (*Result, error) {
	feed, err := im.parser.ParseString(data)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return im.importFeed(ctx, feed, opts)
}

func (im *Importer) importFeed(ctx context.Context, feed *gofeed.Feed, opts Options) (*Result, error) {
	if _, ok := models.ResolveCategory(validation.Normalize(opts.Category)); !ok {
		return nil, apperr.Validation("unknown category",
			validation.ValidationError{Field: "category", Message: "unknown category", Value: opts.Category})
	}

	result := &Result{Feed: feed.Title, Created: []string{}}
	for _, item := range feed.Items {
		if opts.Limit > 0 && result.Items >= opts.Limit {
			break
		}
		result.Items++

		in, err := im.toInput(item, opts)
		if err != nil {
			result.Skipped++
			im.log.Debug().Err(err).Str("link", item.Link).Msg("Skipping feed item")
			continue
		}

		// Items already imported under the same title keep their slug
		if existing, err := im.articles.GetBySlug(ctx, validation.Slugify(in.Title)); err == nil && existing != nil {
			result.Skipped++
			continue
		} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return result, err
		}

		article, err := im.articles.Create(ctx, in)
		if err != nil {
			if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrConflict) {
				result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", in.Title, err))
				continue
			}
			return result, err
		}
		result.Created = append(result.Created, article.Slug)
	}

	metrics.ImportedArticlesTotal.WithLabelValues("feed", "created").Add(float64(len(result.Created)))
	metrics.ImportedArticlesTotal.WithLabelValues("feed", "failed").Add(float64(len(result.Failures)))

	im.log.Info().
		Str("feed", result.Feed).
		Int("items", result.Items).
		Int("created", len(result.Created)).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Failures)).
		Msg("Feed import completed")
	return result, nil
}

// toInput converts a feed item to a draft article. Items without a sluggable title or a body
// are rejected.
func (im *Importer) toInput(item *gofeed.Item, opts Options) (*models.ArticleInput, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, errors.New("item has no title")
	}
	// duplicate detection keys on the title slug
	if validation.Slugify(title) == "" {
		return nil, errors.New("item title has no slug characters")
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	content, err := im.converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("converting item body: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("item has no content")
	}

	in := &models.ArticleInput{
		Title:    title,
		Content:  content,
		Category: opts.Category,
		Status:   models.StatusDraft,
	}

	if item.Content != "" && item.Description != "" {
		if excerpt, err := im.converter.ConvertString(item.Description); err == nil {
			if excerpt = truncate(strings.TrimSpace(excerpt), maxExcerptRunes); excerpt != "" {
				in.Excerpt = &excerpt
			}
		}
	}
	if opts.Region != "" {
		region := opts.Region
		in.Region = &region
	}
	if item.Image != nil && item.Image.URL != "" {
		image := item.Image.URL
		in.ImageURL = &image
	}
	return in, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
