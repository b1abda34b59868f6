package validation

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hindinewshub/news-api/internal/models"
)

func testdataPath(t *testing.T, filename string) string {
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

func TestValidateArticle_SampleNDJSON(t *testing.T) {
	filePath := testdataPath(t, "articles_sample.ndjson")

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	validator := NewValidator()
	totalRecords := 0
	failedLines := make(map[int][]ValidationError)
	slugs := make(map[string]bool)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		totalRecords++

		var input models.ArticleInput
		if err := json.Unmarshal([]byte(line), &input); err != nil {
			t.Fatalf("line %d: %v", lineNum, err)
		}

		if errs := validator.ValidateArticle(&input); len(errs) > 0 {
			failedLines[lineNum] = errs
			continue
		}

		slug := Slugify(input.Title)
		if slug == "" {
			t.Errorf("line %d: empty slug for %q", lineNum, input.Title)
		}
		if slugs[slug] {
			t.Errorf("line %d: duplicate slug %q", lineNum, slug)
		}
		slugs[slug] = true
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	if totalRecords != 9 {
		t.Errorf("expected 9 records, got %d", totalRecords)
	}
	if len(failedLines) != 3 {
		t.Errorf("expected 3 invalid records, got %d: %+v", len(failedLines), failedLines)
	}

	// Line 9 is missing content and carries an unknown status
	fields := make(map[string]bool)
	for _, e := range failedLines[9] {
		fields[e.Field] = true
	}
	if !fields["content"] || !fields["status"] {
		t.Errorf("line 9: expected content and status errors, got %+v", failedLines[9])
	}

	t.Logf("Validated %d sample articles: %d failed", totalRecords, len(failedLines))
}
