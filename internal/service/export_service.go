package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/rs/zerolog"
)

// flushEvery is how many records are written between flushes
const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams every article in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w io.Writer, format string) error {
	s.log.Info().Str("format", format).Msg("Starting articles export")

	count, err := s.stream(w, format, func(emit func(interface{}) error) error {
		return s.repos.Article.StreamAll(ctx, func(a *models.Article) error { return emit(a) })
	})

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return err
}

// StreamComments streams every comment in the specified format
func (s *exportService) StreamComments(ctx context.Context, w io.Writer, format string) error {
	s.log.Info().Str("format", format).Msg("Starting comments export")

	count, err := s.stream(w, format, func(emit func(interface{}) error) error {
		return s.repos.Comment.StreamAll(ctx, func(c *models.Comment) error { return emit(c) })
	})

	s.log.Info().Int("count", count).Msg("Comments export completed")
	return err
}

// stream writes records produced by source as NDJSON (one per line) or as a JSON array
func (s *exportService) stream(w io.Writer, format string, source func(emit func(interface{}) error) error) (int, error) {
	if format != "ndjson" && format != "json" {
		return 0, fmt.Errorf("unsupported format: %s", format)
	}

	flusher, _ := w.(http.Flusher)
	count := 0

	if format == "json" {
		if _, err := io.WriteString(w, "["); err != nil {
			return 0, err
		}
	}

	err := source(func(record interface{}) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		switch {
		case format == "ndjson":
			data = append(data, '\n')
		case count > 0:
			data = append([]byte(","), data...)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		count++

		// Flush every 100 records for streaming
		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if format == "json" {
		if _, werr := io.WriteString(w, "]\n"); werr != nil && err == nil {
			err = werr
		}
	}
	return count, err
}

// StreamResource streams any exportable resource type
func (s *exportService) StreamResource(ctx context.Context, w io.Writer, resource, format string) error {
	switch resource {
	case "articles":
		return s.StreamArticles(ctx, w, format)
	case "comments":
		return s.StreamComments(ctx, w, format)
	default:
		return fmt.Errorf("unknown resource: %s", resource)
	}
}
