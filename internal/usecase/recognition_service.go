package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seafresh/backend/internal/domain"
	"github.com/seafresh/backend/internal/infrastructure/vision"
	"github.com/seafresh/backend/internal/logging"
)

// VisionProvider is a vision client that can report whether it has credentials
type VisionProvider interface {
	domain.VisionClient
	Configured() bool
}

// RecognitionServiceConfig holds configuration for the recognition service
type RecognitionServiceConfig struct {
	Match      MatchConfig
	Vocabulary []string
	Scenarios  []Scenario
	Selector   ScenarioSelector
	Reporter   Reporter
}

// RecognitionService turns a photograph into labels, a seafood flag and
// product suggestions. Provider problems never surface as errors; they
// switch the request to the mock analysis instead.
type RecognitionService struct {
	vision     VisionProvider
	images     domain.ImageStore
	classifier *SeafoodClassifier
	matcher    *ProductMatcher
	mock       *MockAnalysisGenerator
	reporter   Reporter
}

// NewRecognitionService creates a new recognition service with dependencies.
// visionClient may be nil, which behaves like an unconfigured provider.
func NewRecognitionService(
	visionClient VisionProvider,
	catalog domain.CatalogRepository,
	images domain.ImageStore,
	config RecognitionServiceConfig,
) *RecognitionService {
	matcher := NewProductMatcher(catalog, config.Match)

	reporter := config.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &RecognitionService{
		vision:     visionClient,
		images:     images,
		classifier: NewSeafoodClassifier(config.Vocabulary),
		matcher:    matcher,
		mock:       NewMockAnalysisGenerator(matcher, config.Scenarios, config.Selector),
		reporter:   reporter,
	}
}

// LiveMode reports whether requests go to the real provider
func (s *RecognitionService) LiveMode() bool {
	return s.vision != nil && s.vision.Configured()
}

// Analyze runs the pipeline on raw image bytes.
// Flow: annotate -> normalize -> classify -> match, or mock -> match on provider failure.
// Only catalog failures are returned as errors.
func (s *RecognitionService) Analyze(ctx context.Context, image []byte) (*domain.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidRequest)
	}

	start := time.Now()

	var (
		result *domain.AnalysisResult
		err    error
	)
	if !s.LiveMode() {
		s.reporter.MockFallback(ctx, FallbackNotConfigured, nil)
		result, err = s.analyzeMock(ctx)
	} else {
		result, err = s.analyzeLive(ctx, image)
	}
	if err != nil {
		s.reporter.CatalogFailed(ctx, err)
		return nil, logging.NewOperationError("recognition.match_products", logging.RequestIDFromContext(ctx), err)
	}

	s.reporter.Completed(ctx, result, time.Since(start))
	return result, nil
}

// AnalyzePath reads an uploaded image from the image store and analyzes it
func (s *RecognitionService) AnalyzePath(ctx context.Context, path string) (*domain.AnalysisResult, error) {
	if s.images == nil {
		return nil, errors.New("image store not configured")
	}

	image, err := s.images.ReadBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, image)
}

func (s *RecognitionService) analyzeLive(ctx context.Context, image []byte) (*domain.AnalysisResult, error) {
	resp, err := s.vision.Annotate(ctx, image)
	if err != nil {
		s.reporter.MockFallback(ctx, FallbackProviderError, err)
		return s.analyzeMock(ctx)
	}

	labels, objects, text := vision.Normalize(resp)

	products, err := s.matcher.GetSuggestedProducts(ctx, labels, objects)
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisResult{
		Success:           true,
		Labels:            labels,
		Objects:           objects,
		Text:              text,
		SeafoodDetected:   s.classifier.DetectSeafood(labels, objects),
		SuggestedProducts: products,
		MockData:          false,
	}, nil
}

func (s *RecognitionService) analyzeMock(ctx context.Context) (*domain.AnalysisResult, error) {
	result, scenario, err := s.mock.Generate(ctx)
	s.reporter.MockScenario(ctx, scenario)
	return result, err
}
