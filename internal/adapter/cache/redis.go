package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/readysethire/genai-server/internal/domain"
)

// Redis is a summary cache shared across replicas. Entries are stored as
// JSON with SET EX so Redis handles expiry.
type Redis struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

var _ domain.SummaryCache = (*Redis)(nil)

// NewRedis creates a Redis-backed cache. Keys are stored under prefix.
func NewRedis(rdb redis.Cmdable, ttl time.Duration, prefix string) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (domain.SummaryResponse, bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SummaryResponse{}, false, nil
	}
	if err != nil {
		return domain.SummaryResponse{}, false, fmt.Errorf("op=cache.Redis.Get: %w", err)
	}
	var out domain.SummaryResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return domain.SummaryResponse{}, false, fmt.Errorf("op=cache.Redis.Get: decode: %w", err)
	}
	return out, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value domain.SummaryResponse) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("op=cache.Redis.Set: %w", err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.Redis.Set: %w", err)
	}
	return nil
}
