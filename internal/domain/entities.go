package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConfiguration   = errors.New("configuration error")
	ErrModelOutput     = errors.New("model output invalid")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream error")
	ErrModelInvocation = errors.New("model invocation failed")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Difficulty of a generated or stored interview question.
type Difficulty string

const (
	DifficultyEasy         Difficulty = "Easy"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Difficulties lists the permitted difficulty values in prompt order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyIntermediate, DifficultyAdvanced}

// Signal is the recruiter-facing hiring recommendation.
type Signal string

const (
	SignalProceed Signal = "Proceed"
	SignalMaybe   Signal = "Maybe"
	SignalPass    Signal = "Pass"
)

// Signals lists the permitted overall_signal values in prompt order.
var Signals = []Signal{SignalProceed, SignalMaybe, SignalPass}

// Language is the natural language requested for model output.
type Language string

const (
	LanguageEN Language = "en"
	LanguageES Language = "es"
)

// NoAnswerSentinel stands in for an answer the applicant never gave.
// It is applied once during request normalization; prompt assembly never
// substitutes text on its own.
const NoAnswerSentinel = "(no answer provided)"

// GenerationOptions are per-call overrides for question generation.
type GenerationOptions struct {
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	Language    Language `json:"language,omitempty" validate:"required,oneof=en es"`
}

// GenerationRequest is a normalized question-generation request.
// Invariants: Role and Seniority non-empty; Count in [1,10].
type GenerationRequest struct {
	Role      string            `json:"role" validate:"required"`
	Seniority string            `json:"seniority" validate:"required"`
	TechStack []string          `json:"techStack" validate:"dive,required"`
	Count     int               `json:"count" validate:"min=1,max=10"`
	Options   GenerationOptions `json:"options"`
}

// GeneratedQuestion is one item of a generation response.
type GeneratedQuestion struct {
	Question   string     `json:"question" validate:"required"`
	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=Easy Intermediate Advanced"`
	Rationale  string     `json:"rationale" validate:"required"`
}

// GenerationResponse holds at least one generated question.
type GenerationResponse struct {
	Items []GeneratedQuestion `json:"items" validate:"required,min=1,dive"`
}

// Answer pairs an interview question with the applicant's transcript.
type Answer struct {
	Question   string `json:"question" validate:"required"`
	Transcript string `json:"transcript" validate:"required"`
}

// SummaryOptions are per-call overrides for summarization.
type SummaryOptions struct {
	MaxCharsPerAnswer int      `json:"maxCharsPerAnswer" validate:"min=1,max=5000"`
	Temperature       *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	Language          Language `json:"language,omitempty" validate:"required,oneof=en es"`
}

// SummaryRequest is a normalized answer-summarization request.
type SummaryRequest struct {
	Role       string         `json:"role" validate:"required"`
	Seniority  string         `json:"seniority" validate:"required"`
	SkillsHint []string       `json:"skillsHint" validate:"dive,required"`
	Answers    []Answer       `json:"answers" validate:"required,min=1,dive"`
	Options    SummaryOptions `json:"options"`
}

// SummaryResponse is the structured recruiter summary.
type SummaryResponse struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Concerns      []string `json:"concerns"`
	OverallSignal Signal   `json:"overall_signal" validate:"required,oneof=Proceed Maybe Pass"`
}

// SuggestRequest is a normalized free-form question suggestion request.
type SuggestRequest struct {
	JobRole     string     `json:"jobRole" validate:"required,min=2"`
	Description string     `json:"description"`
	Count       int        `json:"count" validate:"min=1,max=10"`
	Difficulty  Difficulty `json:"difficulty" validate:"required,oneof=Easy Intermediate Advanced"`
}

// SuggestResponse holds plain question strings.
type SuggestResponse struct {
	Questions []string `json:"questions"`
}

// ChatRequest is one two-message exchange with a chat-completion model.
type ChatRequest struct {
	Model       string
	Temperature float64
	System      string
	User        string
	// JSONObject asks the provider to constrain output to a JSON object.
	JSONObject bool
	// Operation labels metrics and logs (e.g. "generate_questions").
	Operation string
}

// ChatModel (port) returns the raw text content of a single completion.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// SummaryCache (port) stores validated summaries by normalized request key.
// Implementations treat expired entries as absent.
type SummaryCache interface {
	Get(ctx context.Context, key string) (SummaryResponse, bool, error)
	Set(ctx context.Context, key string, value SummaryResponse) error
}

// Transcriber (port) converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename, mime string, audio []byte) (string, error)
}
