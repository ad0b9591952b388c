package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seafresh/backend/internal/domain"
	"github.com/seafresh/backend/internal/logging"
)

// Reasons passed to Reporter.MockFallback
const (
	FallbackNotConfigured = "not_configured"
	FallbackProviderError = "provider_error"
)

// Reporter receives pipeline events. Implementations must be safe for
// concurrent use.
type Reporter interface {
	MockFallback(ctx context.Context, reason string, err error)
	MockScenario(ctx context.Context, scenario string)
	CatalogFailed(ctx context.Context, err error)
	Completed(ctx context.Context, result *domain.AnalysisResult, elapsed time.Duration)
}

// NopReporter discards every event
type NopReporter struct{}

func (NopReporter) MockFallback(context.Context, string, error) {}
func (NopReporter) MockScenario(context.Context, string) {}
func (NopReporter) CatalogFailed(context.Context, error) {}
func (NopReporter) Completed(context.Context, *domain.AnalysisResult, time.Duration) {}

// ZapReporter writes pipeline events as structured log lines
type ZapReporter struct {
	logger *zap.Logger
}

// NewZapReporter creates a reporter on a named child of logger
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	return &ZapReporter{logger: logger.Named("recognition")}
}

func (r *ZapReporter) with(ctx context.Context, operation string) *zap.Logger {
	return logging.WithOperation(r.logger, operation, logging.RequestIDFromContext(ctx))
}

// MockFallback logs why the live provider was bypassed
func (r *ZapReporter) MockFallback(ctx context.Context, reason string, err error) {
	l := r.with(ctx, "recognition.vision")
	if err == nil {
		l.Info("vision provider not configured, using mock analysis", zap.String("reason", reason))
		return
	}
	l.Warn("vision provider failed, using mock analysis", zap.String("reason", reason), zap.Error(err))
}

// MockScenario logs the canned scenario chosen
func (r *ZapReporter) MockScenario(ctx context.Context, scenario string) {
	r.with(ctx, "recognition.mock").Debug("mock scenario selected", zap.String("scenario", scenario))
}

// CatalogFailed logs a catalog read failure
func (r *ZapReporter) CatalogFailed(ctx context.Context, err error) {
	r.with(ctx, "recognition.match_products").Error("catalog read failed", zap.Error(err))
}

// Completed logs a summary of the result
func (r *ZapReporter) Completed(ctx context.Context, result *domain.AnalysisResult, elapsed time.Duration) {
	r.with(ctx, "recognition.analyze").Info("analysis completed",
		zap.Bool("mock_data", result.MockData),
		zap.Bool("seafood_detected", result.SeafoodDetected),
		zap.Int("labels", len(result.Labels)),
		zap.Int("objects", len(result.Objects)),
		zap.Int("text_fragments", len(result.Text)),
		zap.Int("suggested_products", len(result.SuggestedProducts)),
		zap.Duration("elapsed", elapsed),
	)
}
