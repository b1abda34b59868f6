package service_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
)

// testdataPath returns the absolute path to a file in the testdata directory.
func testdataPath(t testing.TB, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

func TestImportArticles_SampleNDJSON(t *testing.T) {
	h := newTestHarness(t)
	ctx := h.as("editor-1", models.RoleEditor)

	f, err := os.Open(testdataPath(t, "articles_sample.ndjson"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	result, err := h.services.Import.ImportArticles(ctx, f)
	if err != nil {
		t.Fatalf("ImportArticles() error = %v", err)
	}

	t.Logf("Import: total=%d created=%d failed=%d errors=%d",
		result.Total, result.Created, result.Failed, len(result.Errors))

	if result.Total != 9 || result.Created != 6 || result.Failed != 3 {
		t.Errorf("unexpected totals: %+v", result)
	}

	lines := map[int][]string{}
	for _, e := range result.Errors {
		lines[e.Line] = append(lines[e.Line], e.Field)
	}
	for _, line := range []int{7, 8, 9} {
		if len(lines[line]) == 0 {
			t.Errorf("expected an error on line %d", line)
		}
	}
	if len(lines[9]) != 2 {
		t.Errorf("line 9 should report content and status, got %v", lines[9])
	}

	stats, err := h.services.Stats.Get(ctx)
	if err != nil {
		t.Fatalf("Stats.Get() error = %v", err)
	}
	if stats.Articles != 6 {
		t.Errorf("expected 6 stored articles, got %d", stats.Articles)
	}

	list, _ := h.services.Article.List(ctx, service.ListQuery{})
	for _, a := range list {
		if a.AuthorID != "editor-1" {
			t.Errorf("article %s has author %q", a.Slug, a.AuthorID)
		}
	}
}

func TestImportArticles_BadLines(t *testing.T) {
	h := newTestHarness(t)
	ctx := h.as("editor-1", models.RoleEditor)

	input := strings.Join([]string{
		`{"title":"पहला","slug":"pehla","content":"एक","category":"खेल"}`,
		``,
		`{not json`,
		`{"title":"दूसरा","slug":"pehla","content":"दो","category":"खेल"}`,
	}, "\n")

	result, err := h.services.Import.ImportArticles(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportArticles() error = %v", err)
	}
	if result.Total != 3 || result.Created != 1 || result.Failed != 2 {
		t.Errorf("unexpected totals: %+v", result)
	}
	if len(result.Errors) != 2 || result.Errors[0].Line != 3 || result.Errors[0].Field != "json" ||
		result.Errors[1].Line != 4 || result.Errors[1].Field != "slug" {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
}

func TestImportArticles_RequiresEditor(t *testing.T) {
	h := newTestHarness(t)
	ctx := h.as("reader-1", models.RoleReader)

	_, err := h.services.Import.ImportArticles(ctx, strings.NewReader(`{"title":"T","content":"C","category":"खेल"}`))
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestImportArticles_UploadTooLarge(t *testing.T) {
	h := newTestHarness(t)
	ctx := h.as("editor-1", models.RoleEditor)

	first := `{"title":"पहला","slug":"pehla","content":"एक","category":"खेल"}` + "\n"
	input := first + `{"title":"दूसरा","slug":"doosra","content":"` + strings.Repeat("x", 256) + `","category":"खेल"}` + "\n"
	body := http.MaxBytesReader(nil, io.NopCloser(strings.NewReader(input)), int64(len(first)+16))

	result, err := h.services.Import.ImportArticles(ctx, body)
	if !errors.Is(err, apperr.ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
	if result == nil || result.Created != 1 {
		t.Errorf("partial result lost: %+v", result)
	}
}

func TestImportArticles_LineTooLong(t *testing.T) {
	h := newTestHarness(t)
	ctx := h.as("editor-1", models.RoleEditor)

	input := `{"title":"पहला","slug":"pehla","content":"एक","category":"खेल"}` + "\n" +
		`{"title":"दूसरा","content":"` + strings.Repeat("x", 5<<20) + `","category":"खेल"}` + "\n"

	result, err := h.services.Import.ImportArticles(ctx, strings.NewReader(input))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if result.Created != 1 || len(result.Errors) != 1 || result.Errors[0].Line != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestExportArticles(t *testing.T) {
	h := newTestHarness(t)
	for i, slug := range []string{"a", "b", "c"} {
		h.seed(t, string(rune('1'+i)), slug, models.StatusPublished, "u1")
	}
	ctx := context.Background()

	var ndjson bytes.Buffer
	if err := h.services.Export.StreamResource(ctx, &ndjson, "articles", "ndjson"); err != nil {
		t.Fatalf("ndjson export error = %v", err)
	}
	scanner := bufio.NewScanner(&ndjson)
	lines := 0
	for scanner.Scan() {
		var a models.Article
		if err := json.Unmarshal(scanner.Bytes(), &a); err != nil {
			t.Fatalf("line %d is not an article: %v", lines+1, err)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}

	var array bytes.Buffer
	if err := h.services.Export.StreamArticles(ctx, &array, "json"); err != nil {
		t.Fatalf("json export error = %v", err)
	}
	var decoded []models.Article
	if err := json.Unmarshal(array.Bytes(), &decoded); err != nil {
		t.Fatalf("json export is not an array: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("expected 3 articles, got %d", len(decoded))
	}

	if err := h.services.Export.StreamArticles(ctx, &array, "csv"); err == nil {
		t.Error("csv should be rejected")
	}
	if err := h.services.Export.StreamResource(ctx, &array, "users", "json"); err == nil {
		t.Error("users are not exportable")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestHarness(t)
	editor := src.as("editor-1", models.RoleEditor)
	for _, title := range []string{"पहली खबर", "दूसरी खबर"} {
		if _, err := src.services.Article.Create(editor, &models.ArticleInput{Title: title, Content: "सामग्री", Category: "tech"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := src.services.Export.StreamComments(context.Background(), &buf, "ndjson"); err != nil {
		t.Fatalf("comments export error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty comments export, got %q", buf.String())
	}
	if err := src.services.Export.StreamArticles(context.Background(), &buf, "ndjson"); err != nil {
		t.Fatalf("articles export error = %v", err)
	}

	dst := newTestHarness(t)
	result, err := dst.services.Import.ImportArticles(dst.as("editor-2", models.RoleEditor), &buf)
	if err != nil {
		t.Fatalf("ImportArticles() error = %v", err)
	}
	if result.Created != 2 || result.Failed != 0 {
		t.Errorf("round trip lost articles: %+v", result)
	}
}
