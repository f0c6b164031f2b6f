package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/readysethire/genai-server/internal/adapter/cache"
	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
)

var tracer = otel.Tracer("genai/usecase")

// GenAIService runs the question-generation, summarization and suggestion
// pipelines: validate, assemble prompt, invoke model, validate response.
type GenAIService struct {
	model domain.ChatModel
	// cache is nil when caching is disabled.
	cache domain.SummaryCache

	modelName           string
	questionTemperature float64
	summaryTemperature  float64
	maxChars            int
	listFallback        bool
	callTimeout         time.Duration

	inflight singleflight.Group
}

// NewGenAIService wires a service. A nil summaryCache disables caching.
func NewGenAIService(cfg config.Config, model domain.ChatModel, summaryCache domain.SummaryCache) *GenAIService {
	s := &GenAIService{
		model:               model,
		cache:               summaryCache,
		modelName:           cfg.LLMModel,
		questionTemperature: cfg.LLMTemperatureQuestions,
		summaryTemperature:  cfg.LLMTemperatureSummary,
		maxChars:            cfg.TranscriptMaxChars,
		listFallback:        cfg.SuggestListFallback,
		callTimeout:         cfg.LLMTimeout,
	}
	if s.modelName == "" {
		s.modelName = config.DefaultModel
	}
	if s.maxChars <= 0 {
		s.maxChars = config.DefaultTranscriptMaxChars
	}
	return s
}

// resolveTemperature applies per-call option over the configured default.
func resolveTemperature(opt *float64, configured float64) float64 {
	if opt != nil {
		return *opt
	}
	return configured
}

// GenerateQuestions produces interview questions for a role.
func (s *GenAIService) GenerateQuestions(ctx context.Context, in GenerateQuestionsInput) (out domain.GenerationResponse, err error) {
	ctx, span := tracer.Start(ctx, "genai.generate_questions")
	defer func() { s.finish(ctx, span, PipelineGenerate, err) }()

	req, err := NormalizeGeneration(in)
	if err != nil {
		return out, fmt.Errorf("op=usecase.GenerateQuestions: %w", err)
	}
	span.SetAttributes(attribute.Int("genai.count", req.Count), attribute.String("genai.language", string(req.Options.Language)))

	system, user := generationPrompt(req)
	raw, err := s.model.Complete(ctx, domain.ChatRequest{
		Model:       s.modelName,
		Temperature: resolveTemperature(req.Options.Temperature, s.questionTemperature),
		System:      system,
		User:        user,
		JSONObject:  true,
		Operation:   PipelineGenerate,
	})
	if err != nil {
		return out, fmt.Errorf("op=usecase.GenerateQuestions: %w", err)
	}
	out, err = ParseGeneration(raw)
	if err != nil {
		return out, fmt.Errorf("op=usecase.GenerateQuestions: %w", err)
	}
	span.SetAttributes(attribute.Int("genai.items", len(out.Items)))
	return out, nil
}

// SummarizeApplicant produces a recruiter summary from interview answers.
func (s *GenAIService) SummarizeApplicant(ctx context.Context, in SummarizeInput) (domain.SummaryResponse, error) {
	req, err := NormalizeSummary(in, s.maxChars)
	if err != nil {
		ctx, span := tracer.Start(ctx, "genai.summarize_applicant")
		s.finish(ctx, span, PipelineSummarize, err)
		return domain.SummaryResponse{}, fmt.Errorf("op=usecase.SummarizeApplicant: %w", err)
	}
	return s.Summarize(ctx, req)
}

// Summarize runs the summarization pipeline on an already normalized
// request, consulting the cache when one is configured.
func (s *GenAIService) Summarize(ctx context.Context, req domain.SummaryRequest) (out domain.SummaryResponse, err error) {
	ctx, span := tracer.Start(ctx, "genai.summarize_applicant",
		trace.WithAttributes(attribute.Int("genai.answers", len(req.Answers))))
	defer func() { s.finish(ctx, span, PipelineSummarize, err) }()

	if s.cache == nil {
		out, err = s.invokeSummary(ctx, req)
	} else {
		out, err = s.summarizeCached(ctx, span, req)
	}
	if err != nil {
		return domain.SummaryResponse{}, fmt.Errorf("op=usecase.Summarize: %w", err)
	}
	observability.RecordSummarySignal(string(out.OverallSignal))
	return out, nil
}

func (s *GenAIService) summarizeCached(ctx context.Context, span trace.Span, req domain.SummaryRequest) (domain.SummaryResponse, error) {
	lg := observability.LoggerFromContext(ctx)
	key := cache.Key(req)

	v, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		observability.RecordCacheLookup("error")
		lg.Warn("summary cache read failed", slog.String("key", key), slog.Any("error", err))
	case ok:
		observability.RecordCacheLookup("hit")
		span.SetAttributes(attribute.Bool("genai.cache_hit", true))
		lg.Debug("summary cache hit", slog.String("key", key))
		return v, nil
	default:
		observability.RecordCacheLookup("miss")
	}
	span.SetAttributes(attribute.Bool("genai.cache_hit", false))

	// Identical concurrent misses share one model call. The call outlives any
	// single waiter's cancellation and is bounded by callTimeout instead.
	ch := s.inflight.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		if s.callTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, s.callTimeout)
			defer cancel()
		}
		res, err := s.invokeSummary(callCtx, req)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(callCtx, key, res); err != nil {
			lg.Warn("summary cache write failed", slog.String("key", key), slog.Any("error", err))
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return domain.SummaryResponse{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return domain.SummaryResponse{}, r.Err
		}
		if r.Shared {
			lg.Debug("summary call coalesced", slog.String("key", key))
		}
		return copySummary(r.Val.(domain.SummaryResponse)), nil
	}
}

func (s *GenAIService) invokeSummary(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResponse, error) {
	system, user := summaryPrompt(req)
	raw, err := s.model.Complete(ctx, domain.ChatRequest{
		Model:       s.modelName,
		Temperature: resolveTemperature(req.Options.Temperature, s.summaryTemperature),
		System:      system,
		User:        user,
		JSONObject:  true,
		Operation:   PipelineSummarize,
	})
	if err != nil {
		return domain.SummaryResponse{}, err
	}
	return ParseSummary(raw)
}

// SuggestQuestions produces plain question strings for a job role.
func (s *GenAIService) SuggestQuestions(ctx context.Context, in SuggestInput) (out domain.SuggestResponse, err error) {
	ctx, span := tracer.Start(ctx, "genai.suggest_questions")
	defer func() { s.finish(ctx, span, PipelineSuggest, err) }()

	req, err := NormalizeSuggest(in)
	if err != nil {
		return out, fmt.Errorf("op=usecase.SuggestQuestions: %w", err)
	}
	system, user := suggestPrompt(req)
	raw, err := s.model.Complete(ctx, domain.ChatRequest{
		Model:       s.modelName,
		Temperature: s.questionTemperature,
		System:      system,
		User:        user,
		Operation:   PipelineSuggest,
	})
	if err != nil {
		return out, fmt.Errorf("op=usecase.SuggestQuestions: %w", err)
	}
	qs, err := ParseSuggestions(raw, s.listFallback)
	if err != nil {
		return out, fmt.Errorf("op=usecase.SuggestQuestions: %w", err)
	}
	return domain.SuggestResponse{Questions: qs}, nil
}

// finish records the pipeline outcome on the span, in metrics and in logs.
func (s *GenAIService) finish(ctx context.Context, span trace.Span, pipeline string, err error) {
	defer span.End()
	outcome := outcomeOf(err)
	observability.RecordPipelineOutcome(pipeline, outcome)
	lg := observability.LoggerFromContext(ctx).With(slog.String("pipeline", pipeline), slog.String("outcome", outcome))
	if err == nil {
		lg.Info("genai pipeline completed")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	switch outcome {
	case "invalid_request":
		lg.Info("genai request rejected", slog.Any("error", err))
	default:
		lg.Error("genai pipeline failed", slog.Any("error", err))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_request"
	case errors.Is(err, domain.ErrConfiguration):
		return "config_error"
	case errors.Is(err, domain.ErrModelOutput):
		return "model_output_error"
	case errors.Is(err, domain.ErrModelInvocation):
		return "model_invocation_error"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func copySummary(s domain.SummaryResponse) domain.SummaryResponse {
	s.Strengths = cloneStrings(s.Strengths)
	s.Concerns = cloneStrings(s.Concerns)
	return s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
