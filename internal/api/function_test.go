package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hindinewshub/news-api/internal/api"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/mocks"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

const functionPrefix = "/.netlify/functions/api"

func setupFunctionHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := mocks.NewRepositories()
	users := repos.User.(*mocks.MockUserRepository)
	users.Add(&models.User{ID: "admin", Role: models.RoleAdmin})
	users.Add(&models.User{ID: "u1", Role: models.RoleEditor})
	users.Add(&models.User{ID: "u2", Role: models.RoleEditor})
	users.Add(&models.User{ID: "reader", Role: models.RoleReader})

	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	// the function shape allows any origin whatever the server is configured with
	cfg.Server.CORSOrigins = []string{"https://example.in"}
	log := zerolog.Nop()

	services := service.NewServices(repos, cache.NewMemoryCache(), cfg, log)
	resolver := auth.NewResolver(repos, cfg.Auth, log)
	return api.NewFunctionHandler(services, resolver, nil, functionPrefix, log)
}

func call(t *testing.T, h http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, functionPrefix+path, nil)
	} else {
		req = httptest.NewRequest(method, functionPrefix+path, strings.NewReader(body))
	}
	if userID != "" {
		token, err := auth.SignToken([]byte(testSecret), auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		}, time.Hour)
		if err != nil {
			t.Fatalf("SignToken() error = %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createThrough(t *testing.T, h http.Handler, userID, body string) *models.Article {
	t.Helper()
	w := call(t, h, http.MethodPost, "/articles", body, userID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	var article models.Article
	decode(t, w, &article)
	return &article
}

func TestFunctionRouting(t *testing.T) {
	h := setupFunctionHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"categories", http.MethodGet, "/categories", http.StatusOK},
		{"trailing slash", http.MethodGet, "/categories/", http.StatusNotFound},
		{"stats", http.MethodGet, "/stats", http.StatusOK},
		{"unknown path", http.MethodGet, "/nowhere", http.StatusNotFound},
		{"unrouted method", http.MethodPut, "/articles", http.StatusNotFound},
		{"preflight", http.MethodOptions, "/articles/abc", http.StatusNoContent},
		{"unknown article", http.MethodGet, "/articles/missing", http.StatusNotFound},
		{"unknown slug", http.MethodGet, "/articles/by-slug/missing", http.StatusNotFound},
		{"metrics are server only", http.MethodGet, "/metrics", http.StatusNotFound},
		{"export is server only", http.MethodGet, "/admin/export/articles", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, h, tt.method, tt.path, "", "")
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Allow-Origin = %q", got)
			}
		})
	}
}

func TestFunctionRouting_OutsidePrefix(t *testing.T) {
	h := setupFunctionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestFunctionRouting_AdminImportNotMounted(t *testing.T) {
	h := setupFunctionHandler(t)

	w := call(t, h, http.MethodPost, "/admin/import/articles", `{"title":"T","content":"C","category":"tech"}`, "admin")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestFunctionInvalidToken(t *testing.T) {
	h := setupFunctionHandler(t)

	req := httptest.NewRequest(http.MethodGet, functionPrefix+"/articles", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestFunctionCreateThenGetBySlug(t *testing.T) {
	h := setupFunctionHandler(t)

	created := createThrough(t, h, "u1", `{"title":"T","slug":"t","content":"C","category":"खेल","status":"draft"}`)

	w := call(t, h, http.MethodGet, "/articles/by-slug/t", "", "u1")
	if w.Code != http.StatusOK {
		t.Fatalf("get by slug: status %d", w.Code)
	}
	var got models.Article
	decode(t, w, &got)
	if got.ID != created.ID || got.Views != 0 || got.ReadTime != 1 || got.Status != models.StatusDraft {
		t.Errorf("unexpected article %+v", got)
	}

	if w := call(t, h, http.MethodGet, "/articles/by-slug/t", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("drafts are hidden from anonymous callers, got %d", w.Code)
	}
	if w := call(t, h, http.MethodPost, "/articles", `{"title":"T2","slug":"t","content":"C","category":"sports"}`, "u2"); w.Code != http.StatusConflict {
		t.Errorf("slug conflict: expected 409, got %d", w.Code)
	}
}

func TestFunctionOversizedBody(t *testing.T) {
	h := setupFunctionHandler(t)

	body := `{"title":"T","content":"` + strings.Repeat("क", 1<<19) + `","category":"tech"}`
	w := call(t, h, http.MethodPost, "/articles", body, "u1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestFunctionPatchOwnership(t *testing.T) {
	h := setupFunctionHandler(t)
	article := createThrough(t, h, "u1", `{"title":"T","content":"C","category":"tech"}`)
	path := "/articles/" + article.ID

	if w := call(t, h, http.MethodPatch, path, `{"title":"x"}`, "u2"); w.Code != http.StatusForbidden {
		t.Errorf("non-author editor: expected 403, got %d", w.Code)
	}
	if w := call(t, h, http.MethodPatch, path, `{"bogus":1}`, "u1"); w.Code != http.StatusBadRequest {
		t.Errorf("no allowed field: expected 400, got %d", w.Code)
	}

	w := call(t, h, http.MethodPatch, path, `{"status":"published"}`, "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", w.Code)
	}
	var updated models.Article
	decode(t, w, &updated)
	if updated.Status != models.StatusPublished || updated.PublishedAt == nil {
		t.Errorf("publishing must default publishedAt: %+v", updated)
	}
}

func TestFunctionToggleReactionTwice(t *testing.T) {
	h := setupFunctionHandler(t)
	article := createThrough(t, h, "u1", `{"title":"T","content":"C","category":"tech","status":"published"}`)
	body := `{"articleId":"` + article.ID + `","type":"like"}`

	if w := call(t, h, http.MethodPost, "/reactions", body, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", w.Code)
	}
	if w := call(t, h, http.MethodPost, "/reactions", body, "reader"); w.Code != http.StatusOK {
		t.Fatalf("first toggle: status %d", w.Code)
	}
	w := call(t, h, http.MethodPost, "/reactions", body, "reader")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("second toggle: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestFunctionBookmarksAndViews(t *testing.T) {
	h := setupFunctionHandler(t)
	article := createThrough(t, h, "u1", `{"title":"T","content":"C","category":"tech","status":"published"}`)
	body := `{"articleId":"` + article.ID + `"}`

	call(t, h, http.MethodPost, "/bookmarks", body, "reader")
	w := call(t, h, http.MethodPost, "/bookmarks", body, "reader")
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("second toggle should clear, got %s", w.Body.String())
	}

	if w := call(t, h, http.MethodPost, "/articles/"+article.ID+"/views", "", ""); w.Code != http.StatusNoContent {
		t.Errorf("view: expected 204, got %d", w.Code)
	}
	var got models.Article
	decode(t, call(t, h, http.MethodGet, "/articles/"+article.ID, "", ""), &got)
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}
}

func TestFunctionCommentsAndCurrentUser(t *testing.T) {
	h := setupFunctionHandler(t)
	article := createThrough(t, h, "u1", `{"title":"T","content":"C","category":"tech","status":"published"}`)

	w := call(t, h, http.MethodPost, "/comments", `{"articleId":"`+article.ID+`","content":"ठीक"}`, "reader")
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: status %d, body %s", w.Code, w.Body.String())
	}
	var comment models.Comment
	decode(t, w, &comment)

	if w := call(t, h, http.MethodDelete, "/comments/"+comment.ID, "", "reader"); w.Code != http.StatusForbidden {
		t.Errorf("reader delete: expected 403, got %d", w.Code)
	}
	if w := call(t, h, http.MethodDelete, "/comments/"+comment.ID, "", "u2"); w.Code != http.StatusNoContent {
		t.Errorf("editor delete: expected 204, got %d", w.Code)
	}

	if w := call(t, h, http.MethodGet, "/auth/user", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous user: expected 401, got %d", w.Code)
	}
	var user models.User
	decode(t, call(t, h, http.MethodGet, "/auth/user", "", "reader"), &user)
	if user.Role != models.RoleReader {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestFunctionRankings(t *testing.T) {
	h := setupFunctionHandler(t)
	createThrough(t, h, "u1", `{"title":"T","content":"C","category":"tech","status":"published"}`)

	w := call(t, h, http.MethodGet, "/articles/rankings/latest?limit=5", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ranking: status %d", w.Code)
	}
	var ranking models.Ranking
	decode(t, w, &ranking)
	if ranking.Kind != models.RankingLatest || len(ranking.Articles) != 1 {
		t.Errorf("unexpected ranking %+v", ranking)
	}

	if w := call(t, h, http.MethodGet, "/articles/rankings/latest?limit=-1", "", ""); w.Code != http.StatusBadRequest {
		t.Errorf("negative limit: expected 400, got %d", w.Code)
	}
}
