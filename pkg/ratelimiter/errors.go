package ratelimiter

import "errors"

var (
	// ErrInvalidConfig indicates the bucket configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidTokenCount indicates a non-positive token count was requested.
	ErrInvalidTokenCount = errors.New("invalid token count")

	// ErrStoreUnavailable indicates the storage backend could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)
