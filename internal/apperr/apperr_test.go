package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hindinewshub/news-api/internal/validation"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("login required"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"not found", NotFound("article not found"), http.StatusNotFound},
		{"conflict", Conflict("slug already exists"), http.StatusConflict},
		{"too large", TooLarge("upload exceeds 64 MB"), http.StatusRequestEntityTooLarge},
		{"wrapped", fmt.Errorf("service: %w", NotFound("x")), http.StatusNotFound},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBody(t *testing.T) {
	body := Body(Validation("invalid article data", validation.ValidationError{Field: "title", Message: "title is required"}), "failed")
	if body["error"] != "invalid article data" {
		t.Errorf("unexpected message: %v", body["error"])
	}
	fields, ok := body["errors"].([]validation.ValidationError)
	if !ok || len(fields) != 1 {
		t.Fatalf("expected one field error, got %v", body["errors"])
	}

	body = Body(errors.New("pq: connection refused"), "Failed to fetch articles")
	if body["error"] != "Failed to fetch articles" {
		t.Errorf("internal error text leaked: %v", body["error"])
	}
	if _, ok := body["errors"]; ok {
		t.Error("internal errors must not carry field details")
	}
}
