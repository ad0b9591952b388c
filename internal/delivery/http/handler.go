package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seafresh/backend/internal/domain"
	"github.com/seafresh/backend/internal/logging"
)

// multipartOverhead is the slack allowed on top of the image size for
// multipart boundaries and headers
const multipartOverhead = 64 << 10

// Image formats accepted by the analyze endpoints
var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
}

// RecognitionService is the usecase consumed by the handlers
type RecognitionService interface {
	Analyze(ctx context.Context, image []byte) (*domain.AnalysisResult, error)
	AnalyzePath(ctx context.Context, path string) (*domain.AnalysisResult, error)
	LiveMode() bool
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recognition    RecognitionService
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler
func NewHandler(recognition RecognitionService, logger *zap.Logger, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		recognition:    recognition,
		logger:         logger.Named("http"),
		maxUploadBytes: maxUploadBytes,
	}
}

// AnalyzePathRequest is the body of POST /recognition/analyze-path
type AnalyzePathRequest struct {
	Path string `json:"path" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	mode := "mock"
	if h.recognition != nil && h.recognition.LiveMode() {
		mode = "live"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "seafresh-backend",
		"version":     "1.0.0",
		"vision_mode": mode,
	})
}

// AnalyzeUpload analyzes an image sent as the multipart field "image"
func (h *Handler) AnalyzeUpload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidRequest, h.maxUploadBytes))
			return
		}
		h.respondError(c, fmt.Errorf("%w: multipart field \"image\" is required", domain.ErrInvalidRequest))
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		h.respondError(c, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidRequest, h.maxUploadBytes))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	if err := validateImage(image); err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.recognition.Analyze(c.Request.Context(), image)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzePath analyzes an image previously stored by the upload collaborator
func (h *Handler) AnalyzePath(c *gin.Context) {
	var req AnalyzePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.recognition.AnalyzePath(c.Request.Context(), req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// validateImage sniffs the content type of an upload
func validateImage(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image", domain.ErrInvalidRequest)
	}

	mtype := mimetype.Detect(image)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, mtype.String())
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	abortWithError(c, h.logger, err)
}

// abortWithError writes the JSON error body. Internal errors are logged
// and replaced by a generic message.
func abortWithError(c *gin.Context, logger *zap.Logger, err error) {
	requestID := logging.RequestIDFromContext(c.Request.Context())
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.WithOperation(logger, "http.respond_error", requestID).
			Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"request_id": requestID,
	})
}
