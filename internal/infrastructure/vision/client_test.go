package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seafresh/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://vision.example.com/v1", nil)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://vision.example.com/v1", client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
	assert.True(t, client.Configured())
}

func TestClientSetters(t *testing.T) {
	client := NewClient("", "https://vision.example.com/v1", zap.NewNop())
	assert.False(t, client.Configured())

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetTimeout(2 * time.Second)
	assert.Equal(t, 2*time.Second, client.httpClient.Timeout)

	client.SetTimeout(0)
	assert.Equal(t, 2*time.Second, client.httpClient.Timeout)

	client.SetRateLimit(0, 0)
	assert.True(t, client.rateLimiter.Allow())
}

func TestAnnotate_Success(t *testing.T) {
	image := []byte("fake-jpeg-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/images:annotate", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body domain.VisionAnnotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Requests, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), body.Requests[0].Image.Content)
		assert.Equal(t, []domain.VisionFeature{
			{Type: "LABEL_DETECTION", MaxResults: 10},
			{Type: "OBJECT_LOCALIZATION", MaxResults: 10},
			{Type: "TEXT_DETECTION", MaxResults: 5},
		}, body.Requests[0].Features)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses":[{
			"labelAnnotations":[{"description":"Salmon","score":0.95}],
			"localizedObjectAnnotations":[{"name":"Fish","score":0.9}],
			"textAnnotations":[{"description":"FRESH"}]
		}]}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, zap.NewNop())
	result, err := client.Annotate(context.Background(), image)

	require.NoError(t, err)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "Salmon", result.Responses[0].LabelAnnotations[0].Description)
	assert.Equal(t, 0.95, result.Responses[0].LabelAnnotations[0].Score)
	assert.Equal(t, "Fish", result.Responses[0].LocalizedObjectAnnotations[0].Name)
	assert.Equal(t, "FRESH", result.Responses[0].TextAnnotations[0].Description)
}

func TestAnnotate_NotConfigured(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient("", server.URL, zap.NewNop())
	result, err := client.Annotate(context.Background(), []byte("img"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
	assert.Equal(t, 0, calls)
}

func TestAnnotate_NonSuccessStatus_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	client := NewClient("bad-key", server.URL, zap.New(core))

	result, err := client.Annotate(context.Background(), []byte("img"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
	assert.Contains(t, err.Error(), "status 403")
	assert.Equal(t, 1, calls)

	entries := logs.FilterMessage("annotate non-success status").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 403, entries[0].ContextMap()["status"])
	assert.Contains(t, entries[0].ContextMap()["body"], "API key not valid")
}

func TestAnnotate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient("test-api-key", server.URL, zap.NewNop())
	client.SetTimeout(50 * time.Millisecond)

	result, err := client.Annotate(context.Background(), []byte("img"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
}

func TestAnnotate_RateLimitWaitBoundedByTimeout(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"responses":[{}]}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, zap.NewNop())
	client.SetTimeout(200 * time.Millisecond)
	client.SetRateLimit(0.5, 1)

	_, err := client.Annotate(context.Background(), []byte("img"))
	require.NoError(t, err)

	// the next token is two seconds away, beyond the timeout
	start := time.Now()
	result, err := client.Annotate(context.Background(), []byte("img"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnnotate_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses": [`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, zap.NewNop())
	result, err := client.Annotate(context.Background(), []byte("img"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
	assert.Contains(t, err.Error(), "decode response")
}

func TestAnnotate_PerImageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, zap.NewNop())
	result, err := client.Annotate(context.Background(), []byte("img"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
	assert.Contains(t, err.Error(), "Bad image data.")
}

func TestAnnotate_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{}]}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Annotate(ctx, []byte("img"))
	assert.ErrorIs(t, err, domain.ErrVisionAPIFailure)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate([]byte("short"), 10))

	long := strings.Repeat("x", 20)
	got := truncate([]byte(long), 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 10)))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
}
