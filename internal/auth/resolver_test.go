package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/mocks"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/rs/zerolog"
)

var testSecret = []byte("test-secret")

func newTestResolver(autoProvision bool) (*auth.Resolver, *mocks.MockUserRepository, *mocks.MockSessionRepository) {
	repos := mocks.NewRepositories()
	cfg := config.AuthConfig{JWTSecret: string(testSecret), SessionCookie: "sid", AutoProvision: autoProvision}
	return auth.NewResolver(repos, cfg, zerolog.Nop()),
		repos.User.(*mocks.MockUserRepository),
		repos.Session.(*mocks.MockSessionRepository)
}

func bearerRequest(t *testing.T, claims auth.Claims) *http.Request {
	t.Helper()
	token, err := auth.SignToken(testSecret, claims, time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestResolveAnonymous(t *testing.T) {
	r, _, _ := newTestResolver(false)
	id, err := r.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || id != nil {
		t.Fatalf("expected anonymous, got %+v, %v", id, err)
	}
	if id.Role() != "" || id.Authenticated() {
		t.Error("nil identity should have no role")
	}
}

func TestResolveBearer(t *testing.T) {
	r, users, _ := newTestResolver(false)
	users.Add(&models.User{ID: "u1", Role: models.RoleEditor})

	id, err := r.Resolve(context.Background(), bearerRequest(t, auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id.UserID != "u1" || id.Role() != models.RoleEditor {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestResolveBearerWithoutUserRow(t *testing.T) {
	r, users, _ := newTestResolver(false)

	id, err := r.Resolve(context.Background(), bearerRequest(t, auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "ghost"}}))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !id.Authenticated() || id.User != nil || id.Role() != "" {
		t.Errorf("expected authenticated identity with no role, got %+v", id)
	}
	if users.UpsertCalls != 0 {
		t.Error("upsert must not run without auto-provisioning")
	}
}

func TestResolveAutoProvision(t *testing.T) {
	r, users, _ := newTestResolver(true)
	users.Add(&models.User{ID: "u1", Role: models.RoleAdmin})

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Email:            "u1@example.in",
		GivenName:        "सीता",
	}
	id, err := r.Resolve(context.Background(), bearerRequest(t, claims))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id.Role() != models.RoleAdmin {
		t.Errorf("role must come from the user row, got %q", id.Role())
	}
	if id.User.FirstName == nil || *id.User.FirstName != "सीता" {
		t.Errorf("first name not refreshed: %+v", id.User)
	}

	id, err = r.Resolve(context.Background(), bearerRequest(t, auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "new"}}))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id.Role() != models.RoleReader {
		t.Errorf("new users start as readers, got %q", id.Role())
	}
}

func TestResolveAutoProvision_EmailTaken(t *testing.T) {
	r, users, _ := newTestResolver(true)
	users.Add(&models.User{ID: "u1", Role: models.RoleEditor})
	users.UpsertError = fmt.Errorf("upsert user: %w", repository.ErrDuplicate)

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Email:            "shared@example.in",
	}
	id, err := r.Resolve(context.Background(), bearerRequest(t, claims))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if id.UserID != "u1" || id.Role() != models.RoleEditor {
		t.Errorf("expected the stored identity, got %+v", id)
	}

	users.UpsertError = errors.New("connection reset")
	if _, err := r.Resolve(context.Background(), bearerRequest(t, claims)); err == nil {
		t.Error("other upsert failures must still fail the request")
	}
}

func TestResolveInvalidBearer(t *testing.T) {
	r, _, _ := newTestResolver(false)

	tests := []struct {
		name   string
		header string
	}{
		{"garbage", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic dTpw"},
		{"empty token", "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			_, err := r.Resolve(context.Background(), req)
			if !errors.Is(err, auth.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := auth.SignToken([]byte("other"), auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if _, err := r.Resolve(context.Background(), req); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if _, err := r.Resolve(context.Background(), req); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestResolveSession(t *testing.T) {
	r, users, sessions := newTestResolver(false)
	users.Add(&models.User{ID: "u1", Role: models.RoleReader})
	ctx := context.Background()

	_ = sessions.Put(ctx, &models.Session{SID: "good", Data: models.SessionData{UserID: "u1"}, Expire: time.Now().Add(time.Hour)})
	_ = sessions.Put(ctx, &models.Session{SID: "old", Data: models.SessionData{UserID: "u1"}, Expire: time.Now().Add(-time.Hour)})

	tests := []struct {
		sid      string
		wantUser string
	}{
		{"good", "u1"},
		{"old", ""},
		{"unknown", ""},
	}
	for _, tt := range tests {
		t.Run(tt.sid, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "sid", Value: tt.sid})
			id, err := r.Resolve(ctx, req)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			got := ""
			if id != nil {
				got = id.UserID
			}
			if got != tt.wantUser {
				t.Errorf("user = %q, want %q", got, tt.wantUser)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{UserID: "u1"})
	if got := auth.FromContext(ctx); got == nil || got.UserID != "u1" {
		t.Errorf("FromContext() = %+v", got)
	}
	if auth.FromContext(context.Background()) != nil {
		t.Error("empty context should be anonymous")
	}
}
