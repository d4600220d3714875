// Package cache stores computed interview results between score updates.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
	redis "github.com/redis/go-redis/v9"
)

// DefaultTTL is used when a Redis cache is configured without one.
const DefaultTTL = 10 * time.Minute

// ResultCache caches the score aggregate of an interview. A miss returns nil, nil.
type ResultCache interface {
	GetResult(ctx context.Context, interviewID uuid.UUID) (*types.Aggregate, error)
	SetResult(ctx context.Context, interviewID uuid.UUID, agg *types.Aggregate) error
	Invalidate(ctx context.Context, interviewID uuid.UUID) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetResult(context.Context, uuid.UUID) (*types.Aggregate, error) { return nil, nil }
func (Nop) SetResult(context.Context, uuid.UUID, *types.Aggregate) error   { return nil }
func (Nop) Invalidate(context.Context, uuid.UUID) error                    { return nil }

// Redis is a ResultCache backed by go-redis. Values are JSON with a fixed TTL.
type Redis struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// Options configures NewRedis.
type Options struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
	TTL       time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisWithClient(client, opts.Namespace, opts.TTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	if namespace == "" {
		namespace = "interview-coach"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, namespace: namespace, ttl: ttl}
}

// Key returns the Redis key holding an interview's result.
func (r *Redis) Key(interviewID uuid.UUID) string {
	return fmt.Sprintf("%s:result:%s", r.namespace, interviewID)
}

// GetResult implements ResultCache.
func (r *Redis) GetResult(ctx context.Context, interviewID uuid.UUID) (*types.Aggregate, error) {
	data, err := r.client.Get(ctx, r.Key(interviewID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached result: %w", err)
	}

	var agg types.Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &agg, nil
}

// SetResult implements ResultCache.
func (r *Redis) SetResult(ctx context.Context, interviewID uuid.UUID, agg *types.Aggregate) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := r.client.Set(ctx, r.Key(interviewID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Invalidate implements ResultCache.
func (r *Redis) Invalidate(ctx context.Context, interviewID uuid.UUID) error {
	if err := r.client.Del(ctx, r.Key(interviewID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached result: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
