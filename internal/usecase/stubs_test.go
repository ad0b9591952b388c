package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/seafresh/backend/internal/domain"
)

// stubCatalog is an in-memory domain.CatalogRepository
type stubCatalog struct {
	products []domain.Product
	err      error
	calls    int
}

func (s *stubCatalog) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

// stubVision is a VisionProvider returning canned responses
type stubVision struct {
	configured bool
	resp       *domain.VisionAnnotateResponse
	err        error
	calls      int
	lastImage  []byte
}

func (s *stubVision) Configured() bool { return s.configured }

func (s *stubVision) Annotate(ctx context.Context, image []byte) (*domain.VisionAnnotateResponse, error) {
	s.calls++
	s.lastImage = image
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

// stubImages is an in-memory domain.ImageStore
type stubImages map[string][]byte

func (s stubImages) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	data, ok := s[path]
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	return data, nil
}

// recordingReporter captures pipeline events
type recordingReporter struct {
	mu        sync.Mutex
	fallbacks []string
	scenarios []string
	catalog   []error
	completed int
}

func (r *recordingReporter) MockFallback(ctx context.Context, reason string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, reason)
}

func (r *recordingReporter) MockScenario(ctx context.Context, scenario string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios = append(r.scenarios, scenario)
}

func (r *recordingReporter) CatalogFailed(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = append(r.catalog, err)
}

func (r *recordingReporter) Completed(ctx context.Context, result *domain.AnalysisResult, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func strPtr(s string) *string { return &s }

func product(id uint, name, description string) domain.Product {
	p := domain.Product{
		ID:          id,
		Name:        name,
		Price:       float64(id) * 10,
		ImageURL:    "/images/" + name + ".jpg",
		IsAvailable: true,
	}
	if description != "" {
		p.Description = strPtr(description)
	}
	return p
}
