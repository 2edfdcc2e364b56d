// Package redis connects the go-redis client with env-driven config, connect
// retries and a readiness probe. The client backs the rate limiter store.
package redis
