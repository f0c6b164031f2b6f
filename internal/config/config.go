// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Fallbacks used when neither a per-call option nor the environment supplies a value.
const (
	DefaultModel               = "gpt-4o-mini"
	DefaultQuestionTemperature = 0.7
	DefaultSummaryTemperature  = 0.2
	DefaultTranscriptMaxChars  = 1200
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Model invocation
	LLMModel                string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTemperatureQuestions float64       `env:"LLM_TEMPERATURE_QUESTIONS" envDefault:"0.7"`
	LLMTemperatureSummary   float64       `env:"LLM_TEMPERATURE_SUMMARY" envDefault:"0.2"`
	OpenAIAPIKey            string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL           string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMTimeout              time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMMaxRetries           int           `env:"LLM_MAX_RETRIES" envDefault:"1"`
	LLMBackoffInitial       time.Duration `env:"LLM_BACKOFF_INITIAL_INTERVAL" envDefault:"500ms"`
	LLMBackoffMax           time.Duration `env:"LLM_BACKOFF_MAX_INTERVAL" envDefault:"5s"`

	// Summary cache. A zero TTL disables caching.
	CacheTTLSeconds int    `env:"GENAI_CACHE_TTL_SEC" envDefault:"0"`
	CacheSize       int    `env:"GENAI_CACHE_SIZE" envDefault:"1024"`
	CacheBackend    string `env:"GENAI_CACHE_BACKEND" envDefault:"memory"`
	CacheKeyPrefix  string `env:"GENAI_CACHE_PREFIX" envDefault:"genai:summary:"`
	RedisURL        string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	TranscriptMaxChars int `env:"TRANSCRIPT_MAX_CHARS" envDefault:"1200"`
	// SuggestListFallback lets the suggestion pipeline accept a numbered list
	// when the model does not return a JSON array.
	SuggestListFallback bool `env:"GENAI_SUGGEST_LIST_FALLBACK" envDefault:"true"`

	// Transcription
	UseStubTranscribe bool   `env:"USE_STUB_TRANSCRIBE" envDefault:"true"`
	TranscribeModel   string `env:"TRANSCRIBE_MODEL" envDefault:"whisper-1"`
	MaxAudioMB        int64  `env:"MAX_AUDIO_MB" envDefault:"25"`

	// External recruiting data store (PostgREST-style)
	DataStoreBaseURL string        `env:"DATASTORE_BASE_URL"`
	DataStoreJWT     string        `env:"DATASTORE_JWT"`
	DataStoreTimeout time.Duration `env:"DATASTORE_TIMEOUT" envDefault:"15s"`

	// HTTP surface
	RequireAuth           bool          `env:"REQUIRE_AUTH" envDefault:"false"`
	AuthTokenHash         string        `env:"AUTH_TOKEN_HASH"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	MaxBodyBytes          int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"55s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"readysethire-server"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("GENAI_CACHE_TTL_SEC must be >= 0, got %d", c.CacheTTLSeconds)
	}
	switch c.CacheBackendName() {
	case "memory", "redis":
	default:
		return fmt.Errorf("GENAI_CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}
	if c.TranscriptMaxChars < 1 || c.TranscriptMaxChars > 5000 {
		return fmt.Errorf("TRANSCRIPT_MAX_CHARS must be in [1,5000], got %d", c.TranscriptMaxChars)
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must be >= 0, got %d", c.LLMMaxRetries)
	}
	return nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// CacheTTL returns the summary cache TTL; zero means caching is disabled.
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

// CacheBackendName returns the normalized cache backend name.
func (c Config) CacheBackendName() string { return strings.ToLower(strings.TrimSpace(c.CacheBackend)) }

// DataStoreEnabled reports whether the recruiting data store is configured.
func (c Config) DataStoreEnabled() bool { return c.DataStoreBaseURL != "" }
