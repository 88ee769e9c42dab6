package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"agendo/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "idempotency:"

// RedisIdempotencyStore shares cached responses across replicas. Redis
// errors fall back to a cache miss: the request runs again, which is safe
// because the booking transaction itself detects conflicts.
type RedisIdempotencyStore struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	log     *logger.Logger
}

type redisCachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

func NewRedisIdempotencyStore(addr string, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		ttl:     ttl,
		timeout: 2 * time.Second,
		log:     log,
	}
}

func (s *RedisIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Idempotency cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var cached redisCachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Idempotency cache entry corrupt", "key", key, "error", err)
		return nil, false
	}

	return &CachedResponse{
		StatusCode: cached.StatusCode,
		Headers:    cached.Headers,
		Body:       cached.Body,
		CreatedAt:  cached.CreatedAt,
	}, true
}

func (s *RedisIdempotencyStore) Set(key string, response *CachedResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	response.CreatedAt = time.Now()
	data, err := json.Marshal(redisCachedResponse{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       response.Body,
		CreatedAt:  response.CreatedAt,
	})
	if err != nil {
		s.log.Warn("Failed to encode idempotency cache entry", "key", key, "error", err)
		return
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Idempotency cache write failed", "key", key, "error", err)
	}
}

func (s *RedisIdempotencyStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.log.Warn("Failed to close Redis client", "error", err)
	}
}
