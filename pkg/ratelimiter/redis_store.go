package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript refills and consumes in one atomic step so concurrent
// replicas agree on the bucket state. Reply is {remaining, resetAtMillis}.
//
// KEYS[1] bucket hash key
// ARGV: capacity, refill rate, refill interval ms, tokens requested, now ms
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refilled')
local tokens = tonumber(state[1])
local refilled = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  refilled = now
end

local maxIntervals = math.floor(capacity / rate) + 1
local intervals = math.floor((now - refilled) / interval)
if intervals > maxIntervals then
  intervals = maxIntervals
end
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  refilled = now
end

tokens = tokens - requested

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled', refilled)
local ttl = math.ceil(capacity / rate) * math.ceil(interval / 1000) + 60
redis.call('EXPIRE', KEYS[1], ttl)

return {tokens, refilled + interval}
`)

// defaultKeyPrefix namespaces bucket keys in a shared Redis database.
const defaultKeyPrefix = "ratelimit:"

// RedisStore keeps token buckets in Redis so limits hold across replicas.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "ratelimit:" key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	reply, err := consumeScript.Run(ctx, s.client,
		[]string{s.keyPrefix + key},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		tokens,
		time.Now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(reply) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply length %d", ErrStoreUnavailable, len(reply))
	}

	return int(reply[0]), time.UnixMilli(reply[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
