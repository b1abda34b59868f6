package service

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/validation"
)

// ListQuery is an article listing request as received from a client
type ListQuery struct {
	Category string
	Region   string
	Status   string
	AuthorID string
	Featured *bool
	Limit    int
	Offset   int
}

// SearchQuery is an article search request
type SearchQuery struct {
	Q        string
	Category string
	Region   string
}

// ParseListQuery reads listing parameters from a query string
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		Category: strings.TrimSpace(values.Get("category")),
		Region:   strings.TrimSpace(values.Get("region")),
		Status:   strings.TrimSpace(values.Get("status")),
		AuthorID: strings.TrimSpace(values.Get("authorId")),
	}

	var errs []validation.ValidationError
	if raw := values.Get("featured"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: "featured", Message: "featured must be true or false", Value: raw})
		} else {
			q.Featured = &b
		}
	}
	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: "limit", Message: "limit must be an integer", Value: raw})
		}
		q.Limit = n
	}
	if raw := values.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: "offset", Message: "offset must be an integer", Value: raw})
		}
		q.Offset = n
	}
	if len(errs) > 0 {
		return q, apperr.Validation("invalid query parameters", errs...)
	}
	return q, nil
}

// ParseSearchQuery reads search parameters from a query string
func ParseSearchQuery(values url.Values) SearchQuery {
	return SearchQuery{
		Q:        values.Get("q"),
		Category: values.Get("category"),
		Region:   values.Get("region"),
	}
}

// ParseLimit reads an optional non-negative integer parameter
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("limit must be a non-negative integer",
			validation.ValidationError{Field: "limit", Message: "limit must be a non-negative integer", Value: raw})
	}
	return n, nil
}

// ParseArticlePatch decodes a partial update body. Keys outside the allow-list are
// ignored; a present key with the wrong JSON type is a validation error.
func ParseArticlePatch(body []byte) (*models.ArticlePatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, apperr.Validation("request body must be a JSON object")
	}

	patch := &models.ArticlePatch{}
	var errs []validation.ValidationError

	required := func(key string, dst interface{}) bool {
		msg, ok := raw[key]
		if !ok {
			return false
		}
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			errs = append(errs, validation.ValidationError{Field: key, Message: key + " must not be null"})
			return false
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			errs = append(errs, validation.ValidationError{Field: key, Message: key + " has an invalid type"})
			return false
		}
		return true
	}
	nullable := func(key string, dst interface{}) bool {
		msg, ok := raw[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			errs = append(errs, validation.ValidationError{Field: key, Message: key + " has an invalid type"})
			return false
		}
		return true
	}

	patch.Title.Set = required("title", &patch.Title.Value)
	patch.Subtitle.Set = nullable("subtitle", &patch.Subtitle.Value)
	patch.Slug.Set = required("slug", &patch.Slug.Value)
	patch.Content.Set = required("content", &patch.Content.Value)
	patch.Excerpt.Set = nullable("excerpt", &patch.Excerpt.Value)
	patch.Category.Set = required("category", &patch.Category.Value)
	patch.Region.Set = nullable("region", &patch.Region.Value)
	patch.ImageURL.Set = nullable("imageUrl", &patch.ImageURL.Value)
	patch.Status.Set = required("status", &patch.Status.Value)
	patch.Featured.Set = required("featured", &patch.Featured.Value)
	patch.ReadTime.Set = required("readTime", &patch.ReadTime.Value)

	var publishedAt *time.Time
	if nullable("publishedAt", &publishedAt) {
		patch.PublishedAt = models.Field[*time.Time]{Set: true, Value: publishedAt}
	}

	if len(errs) > 0 {
		return nil, apperr.Validation("validation failed", errs...)
	}
	if patch.Empty() {
		return nil, apperr.Validation("no valid fields to update")
	}
	return patch, nil
}
