package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/readysethire/genai-server/internal/adapter/ai/openai"
	"github.com/readysethire/genai-server/internal/adapter/ai/tokencount"
	"github.com/readysethire/genai-server/internal/adapter/cache"
	"github.com/readysethire/genai-server/internal/adapter/datastore/postgrest"
	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/internal/usecase"
)

// Services is the fully wired usecase layer plus the resources it owns.
type Services struct {
	GenAI      *usecase.GenAIService
	Applicants *usecase.ApplicantSummaryService
	Questions  *usecase.QuestionBankService
	Answers    *usecase.AnswerService
	Transcribe *usecase.TranscribeService
	Checks     []httpserver.ReadinessCheck

	closers []func() error
}

// Close releases owned resources such as the redis connection pool.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// BuildServices wires the model client, summary cache, data store client and
// usecase services from configuration. Nothing here performs network I/O.
func BuildServices(cfg config.Config) (*Services, error) {
	s := &Services{}
	model := openai.New(cfg, openai.WithTokenCounter(tokencount.NewCounter()))

	summaryCache, rdb, err := NewSummaryCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("op=app.BuildServices: %w", err)
	}
	var redisCheck RedisClient
	if rdb != nil {
		s.closers = append(s.closers, rdb.Close)
		redisCheck = FromRedis(rdb)
	}

	var (
		store          domain.RecruitingStore
		questionWriter domain.QuestionWriter
		answerWriter   domain.AnswerWriter
		storePinger    Pinger
	)
	if cfg.DataStoreEnabled() {
		c := postgrest.New(cfg.DataStoreBaseURL, cfg.DataStoreJWT, cfg.DataStoreTimeout)
		store, questionWriter, answerWriter, storePinger = c, c, c, c
	}

	var transcriber domain.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = model
	}

	s.GenAI = usecase.NewGenAIService(cfg, model, summaryCache)
	s.Applicants = usecase.NewApplicantSummaryService(store, s.GenAI)
	s.Transcribe = usecase.NewTranscribeService(transcriber, cfg.UseStubTranscribe)
	s.Questions = usecase.NewQuestionBankService(questionWriter)
	s.Answers = usecase.NewAnswerService(store, answerWriter, s.Transcribe)
	s.Checks = BuildReadinessChecks(cfg, redisCheck, storePinger)
	return s, nil
}

// NewSummaryCache returns the configured summary cache, or nil when caching is
// disabled (TTL 0). The redis client is returned so the caller can close it.
func NewSummaryCache(cfg config.Config) (domain.SummaryCache, *redis.Client, error) {
	ttl := cfg.CacheTTL()
	if ttl <= 0 {
		return nil, nil, nil
	}
	switch cfg.CacheBackendName() {
	case "", "memory":
		slog.Info("summary cache enabled", slog.String("backend", "memory"), slog.Duration("ttl", ttl), slog.Int("size", cfg.CacheSize))
		return cache.NewMemory(cfg.CacheSize, ttl), nil, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: REDIS_URL: %w", domain.ErrConfiguration, err)
		}
		rdb := redis.NewClient(opts)
		slog.Info("summary cache enabled", slog.String("backend", "redis"), slog.Duration("ttl", ttl), slog.String("addr", opts.Addr))
		return cache.NewRedis(rdb, ttl, cfg.CacheKeyPrefix), rdb, nil
	default:
		return nil, nil, &domain.ConfigurationError{Setting: "GENAI_CACHE_BACKEND", Reason: "unknown backend " + cfg.CacheBackend}
	}
}

// Ping checks every readiness dependency once; used at startup to log
// problems early without refusing to start.
func (s *Services) Ping(ctx context.Context) {
	for _, c := range s.Checks {
		if err := c.Check(ctx); err != nil {
			slog.Warn("dependency not ready", slog.String("check", c.Name), slog.Any("error", err))
		}
	}
}
