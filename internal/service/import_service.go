package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/metrics"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// maxImportErrors caps the per-line errors kept in an ImportResult
const maxImportErrors = 1000

// maxImportLineBytes caps a single NDJSON line
const maxImportLineBytes = 4 * 1024 * 1024

// importService is the concrete implementation of ImportService
type importService struct {
	articles ArticleService
	log      zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(articles ArticleService, log zerolog.Logger) *importService {
	return &importService{
		articles: articles,
		log:      log.With().Str("service", "import").Logger(),
	}
}

// ImportArticles creates one article per NDJSON line, authored by the caller in ctx.
// Invalid lines are reported with their line number and do not stop the import.
func (s *importService) ImportArticles(ctx context.Context, r io.Reader) (*ImportResult, error) {
	startTime := time.Now()
	result := &ImportResult{}

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long article bodies
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxImportLineBytes)

	addErrors := func(errs ...validation.ValidationError) {
		for _, e := range errs {
			if len(result.Errors) >= maxImportErrors {
				return
			}
			result.Errors = append(result.Errors, e)
		}
	}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}
		result.Total++

		// Respect context cancellation for long-running imports
		if lineNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
		}

		var in models.ArticleInput
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			result.Failed++
			addErrors(validation.ValidationError{
				Line:    lineNum,
				Field:   "json",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		_, err := s.articles.Create(ctx, &in)
		if err == nil {
			result.Created++
			continue
		}

		var appErr *apperr.Error
		switch {
		case errors.Is(err, apperr.ErrValidation) && errors.As(err, &appErr):
			result.Failed++
			if len(appErr.Fields) == 0 {
				addErrors(validation.ValidationError{Line: lineNum, Message: appErr.Message})
			}
			for _, fe := range appErr.Fields {
				fe.Line = lineNum
				addErrors(fe)
			}
		case errors.Is(err, apperr.ErrConflict):
			result.Failed++
			addErrors(validation.ValidationError{Line: lineNum, Field: "slug", Message: err.Error(), Value: in.Slug})
		default:
			// Authorization and storage failures affect every line, so stop here
			return result, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, s.readError(err, lineNum+1, addErrors)
	}

	metrics.ImportedArticlesTotal.WithLabelValues("ndjson", "created").Add(float64(result.Created))
	metrics.ImportedArticlesTotal.WithLabelValues("ndjson", "failed").Add(float64(result.Failed))

	s.log.Info().
		Int("total", result.Total).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Msg("Import completed")

	return result, nil
}

// readError classifies a failure reading the upload. Oversized input is the caller's mistake;
// anything else is returned as is. Lines before line are already committed.
func (s *importService) readError(err error, line int, addErrors func(...validation.ValidationError)) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return apperr.TooLarge(fmt.Sprintf("import exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, bufio.ErrTooLong):
		fe := validation.ValidationError{
			Line:    line,
			Field:   "line",
			Message: fmt.Sprintf("line exceeds %d bytes", maxImportLineBytes),
		}
		addErrors(fe)
		return apperr.Validation(fmt.Sprintf("line %d is too long", line), fe)
	default:
		return err
	}
}
