package ratelimiter

import "time"

// Result is the outcome of a rate limit check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // tokens left, negative when overdrawn
	ResetAt   time.Time // next refill time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying, or 0 when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config describes a token bucket: Capacity is the burst limit, and
// RefillRate tokens are added every RefillInterval.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

// PerMinute returns a Config allowing n requests per minute with bursts up
// to n.
func PerMinute(n int) Config {
	return Config{Capacity: n, RefillRate: n, RefillInterval: time.Minute}
}

// PerHour returns a Config allowing n requests per hour with bursts up to n.
func PerHour(n int) Config {
	return Config{Capacity: n, RefillRate: n, RefillInterval: time.Hour}
}
