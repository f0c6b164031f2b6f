// Package openai implements the model invoker and transcriber against an
// OpenAI-compatible API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/readysethire/genai-server/internal/adapter/ai/tokencount"
	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
)

const provider = "openai"

// Client implements domain.ChatModel and domain.Transcriber.
type Client struct {
	api             sdk.Client
	apiKey          string
	retry           config.RetryConfig
	transcribeModel string
	counter         *tokencount.Counter
	httpClient      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithTokenCounter enables prompt token accounting.
func WithTokenCounter(tc *tokencount.Counter) Option {
	return func(c *Client) { c.counter = tc }
}

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New constructs a client from configuration. Construction never fails; a
// missing API key surfaces on the first call.
func New(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		apiKey:          cfg.OpenAIAPIKey,
		retry:           cfg.GetRetryConfig(),
		transcribeModel: cfg.TranscribeModel,
		httpClient:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, o := range opts {
		o(c)
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(c.apiKey),
		option.WithHTTPClient(c.httpClient),
		// retries are owned by backoff below
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	c.api = sdk.NewClient(reqOpts...)
	return c
}

// Complete sends one system+user exchange and returns the first choice's
// content. Transport failures (network, 429, 5xx) are retried with
// exponential backoff; other 4xx responses fail immediately.
func (c *Client) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	lg := observability.LoggerFromContext(ctx)

	if c.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.retry.Timeout)
		defer cancel()
	}
	ctx, span := otel.Tracer("genai/openai").Start(ctx, "openai.chat",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Float64("llm.temperature", req.Temperature),
			attribute.String("genai.operation", req.Operation),
		))
	defer span.End()

	params := sdk.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(req.System),
			sdk.UserMessage(req.User),
		},
		Temperature: sdk.Float(req.Temperature),
	}
	if req.JSONObject {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if c.counter != nil {
		tokens := c.counter.CountChat(req.System, req.User)
		observability.ObservePromptTokens(req.Operation, tokens)
		span.SetAttributes(attribute.Int("llm.prompt_tokens_estimate", tokens))
	}

	var reqOpts []option.RequestOption
	if rid := observability.RequestIDFromContext(ctx); rid != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Request-Id", rid))
	}

	var content string
	attempt := 0
	op := func() error {
		attempt++
		start := time.Now()
		resp, err := c.api.Chat.Completions.New(ctx, params, reqOpts...)
		observability.ObserveAIRequest(provider, req.Operation, time.Since(start))
		if err != nil {
			lg.Warn("ai provider call failed",
				slog.String("provider", provider),
				slog.String("op", req.Operation),
				slog.Int("attempt", attempt),
				slog.Int("status", statusOf(err)),
				slog.Any("error", err))
			return classify(ctx, err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(&domain.ModelOutputError{Pipeline: req.Operation, Reason: "no choices returned"})
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(op, c.backOff(ctx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat completion failed")
		if errors.Is(err, domain.ErrModelOutput) {
			return "", err
		}
		return "", fmt.Errorf("op=openai.Complete: %w: %w", domain.ErrModelInvocation, err)
	}
	span.SetAttributes(attribute.Int("llm.attempts", attempt))
	lg.Debug("ai provider call ok",
		slog.String("provider", provider),
		slog.String("op", req.Operation),
		slog.String("model", req.Model),
		slog.Int("attempts", attempt))
	return content, nil
}

// Transcribe forwards audio to the transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, filename, mime string, audio []byte) (string, error) {
	if c.apiKey == "" {
		return "", &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	if c.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.retry.Timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := c.api.Audio.Transcriptions.New(ctx, sdk.AudioTranscriptionNewParams{
		File:  sdk.File(bytes.NewReader(audio), filename, mime),
		Model: sdk.AudioModel(c.transcribeModel),
	})
	observability.ObserveAIRequest(provider, "transcribe", time.Since(start))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("transcription failed",
			slog.String("provider", provider),
			slog.Int("status", statusOf(err)),
			slog.Any("error", err))
		return "", fmt.Errorf("op=openai.Transcribe: %w: %w", domain.ErrModelInvocation, err)
	}
	return resp.Text, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	if c.retry.InitialDelay > 0 {
		expo.InitialInterval = c.retry.InitialDelay
	}
	if c.retry.MaxDelay > 0 {
		expo.MaxInterval = c.retry.MaxDelay
	}
	expo.MaxElapsedTime = c.retry.Timeout
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(max(c.retry.MaxRetries, 0))), ctx)
}

// classify marks errors that must not be retried as permanent.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return backoff.Permanent(err)
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}
	return err
}

func statusOf(err error) int {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
