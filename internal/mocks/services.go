package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	mu       sync.Mutex
	Result   *service.ImportResult
	Err      error
	Received []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{Result: &service.ImportResult{}}
}

func (m *MockImportService) ImportArticles(ctx context.Context, r io.Reader) (*service.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Received = append(m.Received, string(data))
	m.mu.Unlock()
	return m.Result, m.Err
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamFunc func(ctx context.Context, w io.Writer, resource, format string) error
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) StreamArticles(ctx context.Context, w io.Writer, format string) error {
	return m.StreamResource(ctx, w, "articles", format)
}

func (m *MockExportService) StreamComments(ctx context.Context, w io.Writer, format string) error {
	return m.StreamResource(ctx, w, "comments", format)
}

func (m *MockExportService) StreamResource(ctx context.Context, w io.Writer, resource, format string) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, w, resource, format)
	}
	if format == "json" {
		_, err := io.WriteString(w, "[]\n")
		return err
	}
	return nil
}

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	Stats models.Stats
	Err   error
}

// Verify interface compliance
var _ service.StatsService = (*MockStatsService)(nil)

func (m *MockStatsService) Get(ctx context.Context) (*models.Stats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	stats := m.Stats
	return &stats, nil
}
