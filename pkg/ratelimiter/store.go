package ratelimiter

import (
	"context"
	"time"
)

// Store is a token bucket storage backend.
type Store interface {
	// ConsumeTokens refills the bucket for key according to config, then
	// consumes tokens from it. A negative remaining means the request must
	// be denied; the bucket stays overdrawn until refills catch up.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset clears the bucket for key.
	Reset(ctx context.Context, key string) error
}
