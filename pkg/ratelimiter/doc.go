// Package ratelimiter implements token bucket rate limiting with pluggable
// storage backends.
//
// A Limiter pairs a bucket Config with a Store. MemoryStore serves a single
// process; RedisStore shares buckets across replicas through an atomic Lua
// script. The HTTP middleware keys buckets per client and answers over-limit
// requests with 429 plus X-RateLimit-* and Retry-After headers:
//
//	store := ratelimiter.NewMemoryStore()
//	limiter := ratelimiter.Must(store, ratelimiter.PerMinute(30))
//	r.Use(ratelimiter.Middleware(limiter, ratelimiter.ByClientIP))
//
// Buckets refill RefillRate tokens every RefillInterval up to Capacity, so
// clients can burst to Capacity and then sustain the refill rate.
package ratelimiter
