package ratelimiter

import (
	"context"
	"fmt"
)

// Limiter is a token bucket rate limiter backed by a pluggable Store.
type Limiter struct {
	store Store
	cfg   Config
}

// New validates cfg and returns a Limiter using store as its backend.
func New(store Store, cfg Config) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Must is New that panics on invalid configuration.
func Must(store Store, cfg Config) *Limiter {
	l, err := New(store, cfg)
	if err != nil {
		panic(fmt.Sprintf("ratelimiter: %v", err))
	}
	return l
}

// Allow consumes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key. The returned Result reports a negative
// Remaining when the bucket is overdrawn; callers decide via Result.Allowed.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}

	remaining, resetAt, err := l.store.ConsumeTokens(ctx, key, n, l.cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: l.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

// Status reports the bucket state for key without consuming tokens.
func (l *Limiter) Status(ctx context.Context, key string) (*Result, error) {
	// Consuming zero tokens refreshes refill state without spending any.
	remaining, resetAt, err := l.store.ConsumeTokens(ctx, key, 0, l.cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Limit: l.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset clears the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}
