package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/seafresh/backend/internal/domain"
)

// DefaultTimeout bounds a single annotate call
const DefaultTimeout = 30 * time.Second

// Result caps sent with every request
const (
	maxLabelResults  = 10
	maxObjectResults = 10
	maxTextResults   = 5
)

// maxErrorBody limits how much of a failed response body is kept for logging
const maxErrorBody = 4096

// requestedFeatures is the fixed feature set of every annotate request
var requestedFeatures = []domain.VisionFeature{
	{Type: domain.FeatureLabelDetection, MaxResults: maxLabelResults},
	{Type: domain.FeatureObjectLocalization, MaxResults: maxObjectResults},
	{Type: domain.FeatureTextDetection, MaxResults: maxTextResults},
}

// Client handles communication with the Cloud Vision images:annotate API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
}

// NewClient creates a new vision API client
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:      logger.Named("vision_client"),
	}
}

// SetDebug enables logging of every request and response summary
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetTimeout overrides the per-request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// SetRateLimit replaces the client-side quota guard
func (c *Client) SetRateLimit(requestsPerSecond float64, burst int) {
	if requestsPerSecond <= 0 {
		c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// Configured reports whether a credential is available
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Annotate sends one image with the label, object and text features.
// The whole call, including waiting for the rate limiter, is bounded by the
// client timeout. There are no retries; the caller decides how to degrade.
func (c *Client) Annotate(ctx context.Context, image []byte) (*domain.VisionAnnotateResponse, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: api key not configured", domain.ErrVisionAPIFailure)
	}

	payload, err := json.Marshal(buildAnnotateRequest(image))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	// The timeout covers the limiter wait as well as the round trip
	ctx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.logger.Warn("rate limiter wait aborted", zap.Error(err))
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrVisionAPIFailure, err)
	}

	params := url.Values{}
	params.Add("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/images:annotate?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SeaFresh/1.0")

	if c.debug {
		c.logger.Debug("annotate request", zap.Int("image_bytes", len(image)))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("annotate transport error",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("%w: %v", domain.ErrVisionAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("annotate read error", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrVisionAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("annotate non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(body, maxErrorBody)))
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrVisionAPIFailure, resp.StatusCode, truncate(body, maxErrorBody))
	}

	var annotated domain.VisionAnnotateResponse
	if err := json.Unmarshal(body, &annotated); err != nil {
		c.logger.Error("annotate decode error",
			zap.Error(err),
			zap.String("body", truncate(body, maxErrorBody)))
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrVisionAPIFailure, err)
	}

	if len(annotated.Responses) > 0 && annotated.Responses[0].Error != nil {
		status := annotated.Responses[0].Error
		c.logger.Error("annotate image error",
			zap.Int("code", status.Code),
			zap.String("message", status.Message))
		return nil, fmt.Errorf("%w: image error %d: %s", domain.ErrVisionAPIFailure, status.Code, status.Message)
	}

	if c.debug {
		c.logger.Debug("annotate response",
			zap.Int("status", resp.StatusCode),
			zap.Int("responses", len(annotated.Responses)),
			zap.Duration("elapsed", time.Since(start)))
	}

	return &annotated, nil
}

func buildAnnotateRequest(image []byte) domain.VisionAnnotateRequest {
	features := make([]domain.VisionFeature, len(requestedFeatures))
	copy(features, requestedFeatures)

	return domain.VisionAnnotateRequest{
		Requests: []domain.VisionImageRequest{
			{
				Image:    domain.VisionImage{Content: base64.StdEncoding.EncodeToString(image)},
				Features: features,
			},
		},
	}
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "...(truncated)"
}
