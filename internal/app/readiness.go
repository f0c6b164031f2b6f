package app

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/config"
)

// Pinger is the minimal interface of a dependency that can be pinged.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisPingResult is the minimal return type of a Redis client's Ping.
type RedisPingResult interface{ Err() error }

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface{ Ping(ctx context.Context) RedisPingResult }

type redisAdapter struct{ c redis.Cmdable }

func (a redisAdapter) Ping(ctx context.Context) RedisPingResult { return a.c.Ping(ctx) }

// FromRedis adapts a go-redis client to RedisClient.
func FromRedis(c redis.Cmdable) RedisClient { return redisAdapter{c: c} }

// BuildReadinessChecks returns the checks for the dependencies this process
// is configured to use. The model credential is always checked; redis and
// the data store only when they are wired (non-nil).
func BuildReadinessChecks(cfg config.Config, rdb RedisClient, store Pinger) []httpserver.ReadinessCheck {
	checks := []httpserver.ReadinessCheck{{
		Name: "openai",
		Check: func(context.Context) error {
			if cfg.OpenAIAPIKey == "" {
				return errors.New("OPENAI_API_KEY not configured")
			}
			return nil
		},
	}}
	if rdb != nil {
		checks = append(checks, httpserver.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	if store != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "datastore", Check: store.Ping})
	}
	return checks
}
