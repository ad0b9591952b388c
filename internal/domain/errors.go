package domain

import "errors"

var (
	// ErrImageNotFound is returned when the image store has nothing at the requested path
	ErrImageNotFound = errors.New("image not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnsupportedImage is returned when an upload is not a recognised image format
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrVisionAPIFailure is returned when the vision provider request fails
	ErrVisionAPIFailure = errors.New("vision API request failed")

	// ErrCatalogUnavailable is returned when the product catalog cannot be read
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
