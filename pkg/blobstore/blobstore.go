package blobstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// Storage stores generated artifacts (rendered previews, QR codes) under
// string keys and serves them through public URLs.
type Storage interface {
	// Put stores data under key, overwriting any existing blob.
	Put(ctx context.Context, key string, data []byte, contentType string) (*Object, error)
	// Get returns the blob's content.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes a single blob.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every blob whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) bool
	// URL returns the public URL for a key.
	URL(key string) string
}

// Config selects and configures the storage backend.
type Config struct {
	Provider string `env:"BLOBSTORE_PROVIDER" envDefault:"local"`

	// Local backend.
	LocalDir string `env:"BLOBSTORE_LOCAL_DIR" envDefault:"var/blobs"`
	BaseURL  string `env:"BLOBSTORE_BASE_URL" envDefault:"/previews/"`

	// S3 backend. Endpoint and ForcePathStyle support S3-compatible
	// services like MinIO.
	S3Bucket       string `env:"BLOBSTORE_S3_BUCKET"`
	S3Region       string `env:"BLOBSTORE_S3_REGION"`
	S3AccessKeyID  string `env:"BLOBSTORE_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"BLOBSTORE_S3_SECRET_KEY"`
	S3Endpoint     string `env:"BLOBSTORE_S3_ENDPOINT"`
	ForcePathStyle bool   `env:"BLOBSTORE_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// New builds the storage backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// cleanKey normalizes a blob key and rejects traversal attempts. Keys are
// slash-separated and relative; a leading slash is tolerated and stripped.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return key, nil
}

// DetectContentType sniffs the content type from the blob's leading bytes.
// Callers that know the type (rendered HTML, PNG) should pass it to Put
// directly; this is the fallback for everything else.
func DetectContentType(data []byte) string {
	return http.DetectContentType(data)
}
