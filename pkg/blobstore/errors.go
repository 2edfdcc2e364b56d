package blobstore

import "errors"

var (
	ErrInvalidKey    = errors.New("invalid blob key")
	ErrNotFound      = errors.New("blob not found")
	ErrInvalidConfig = errors.New("invalid blobstore configuration")

	// S3 error classification.
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("storage service temporarily unavailable")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")

	ErrOperationTimeout  = errors.New("storage operation timed out")
	ErrOperationCanceled = errors.New("storage operation canceled")
)
