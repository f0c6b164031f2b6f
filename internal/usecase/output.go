package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/readysethire/genai-server/internal/adapter/ai"
	"github.com/readysethire/genai-server/internal/domain"
)

// Pipeline names used in errors, logs and metrics.
const (
	PipelineGenerate  = "generate_questions"
	PipelineSummarize = "summarize_applicant"
	PipelineSuggest   = "suggest_questions"
)

type wireQuestion struct {
	Question   *string `json:"question"`
	Difficulty *string `json:"difficulty"`
	Rationale  *string `json:"rationale"`
}

type wireGeneration struct {
	Items *[]wireQuestion `json:"items"`
}

type wireSummary struct {
	Summary       *string   `json:"summary"`
	Strengths     *[]string `json:"strengths"`
	Concerns      *[]string `json:"concerns"`
	OverallSignal *string   `json:"overall_signal"`
}

// decodeStrict parses text as exactly one JSON value after removing a
// surrounding code fence. Prose before or after the value is rejected.
func decodeStrict(pipeline, raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(ai.StripCodeFence(raw)))
	if err := dec.Decode(v); err != nil {
		return &domain.ModelOutputError{Pipeline: pipeline, Reason: "response is not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &domain.ModelOutputError{Pipeline: pipeline, Reason: "unexpected content after JSON value"}
	}
	return nil
}

// ParseGeneration validates raw model text against the generation schema.
func ParseGeneration(raw string) (domain.GenerationResponse, error) {
	var w wireGeneration
	if err := decodeStrict(PipelineGenerate, raw, &w); err != nil {
		return domain.GenerationResponse{}, err
	}
	if w.Items == nil {
		return domain.GenerationResponse{}, missingKey(PipelineGenerate, "items")
	}
	out := domain.GenerationResponse{Items: make([]domain.GeneratedQuestion, 0, len(*w.Items))}
	for i, it := range *w.Items {
		switch {
		case it.Question == nil:
			return domain.GenerationResponse{}, missingKey(PipelineGenerate, fmt.Sprintf("items[%d].question", i))
		case it.Difficulty == nil:
			return domain.GenerationResponse{}, missingKey(PipelineGenerate, fmt.Sprintf("items[%d].difficulty", i))
		case it.Rationale == nil:
			return domain.GenerationResponse{}, missingKey(PipelineGenerate, fmt.Sprintf("items[%d].rationale", i))
		}
		out.Items = append(out.Items, domain.GeneratedQuestion{
			Question:   strings.TrimSpace(*it.Question),
			Difficulty: domain.Difficulty(*it.Difficulty),
			Rationale:  strings.TrimSpace(*it.Rationale),
		})
	}
	if err := schemaCheck(PipelineGenerate, out); err != nil {
		return domain.GenerationResponse{}, err
	}
	return out, nil
}

// ParseSummary validates raw model text against the summary schema.
func ParseSummary(raw string) (domain.SummaryResponse, error) {
	var w wireSummary
	if err := decodeStrict(PipelineSummarize, raw, &w); err != nil {
		return domain.SummaryResponse{}, err
	}
	switch {
	case w.Summary == nil:
		return domain.SummaryResponse{}, missingKey(PipelineSummarize, "summary")
	case w.Strengths == nil:
		return domain.SummaryResponse{}, missingKey(PipelineSummarize, "strengths")
	case w.Concerns == nil:
		return domain.SummaryResponse{}, missingKey(PipelineSummarize, "concerns")
	case w.OverallSignal == nil:
		return domain.SummaryResponse{}, missingKey(PipelineSummarize, "overall_signal")
	}
	out := domain.SummaryResponse{
		Summary:       *w.Summary,
		Strengths:     *w.Strengths,
		Concerns:      *w.Concerns,
		OverallSignal: domain.Signal(*w.OverallSignal),
	}
	if err := schemaCheck(PipelineSummarize, out); err != nil {
		return domain.SummaryResponse{}, err
	}
	return out, nil
}

// ParseSuggestions accepts a JSON array of strings or an object with a
// "questions" array. When listFallback is set, text that is not JSON is
// split as a numbered list instead.
func ParseSuggestions(raw string, listFallback bool) ([]string, error) {
	var arr []string
	err := decodeStrict(PipelineSuggest, raw, &arr)
	if err != nil {
		var obj struct {
			Questions *[]string `json:"questions"`
		}
		if objErr := decodeStrict(PipelineSuggest, raw, &obj); objErr == nil && obj.Questions != nil {
			arr, err = *obj.Questions, nil
		}
	}
	if err != nil {
		text := ai.StripCodeFence(raw)
		// malformed JSON is not a list
		if !listFallback || strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
			return nil, err
		}
		arr = ai.ParseNumberedList(text)
	}
	out := make([]string, 0, len(arr))
	for _, q := range arr {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, &domain.ModelOutputError{Pipeline: PipelineSuggest, Reason: "no questions returned"}
	}
	return out, nil
}

func missingKey(pipeline, key string) error {
	return &domain.ModelOutputError{Pipeline: pipeline, Reason: fmt.Sprintf("missing key %q", key)}
}

// schemaCheck runs struct validation and reports failures as model output
// errors rather than caller errors.
func schemaCheck(pipeline string, v any) error {
	err := validateStruct(v)
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			parts = append(parts, f.Field+" "+f.Message)
		}
		return &domain.ModelOutputError{Pipeline: pipeline, Reason: "schema mismatch: " + strings.Join(parts, "; ")}
	}
	return &domain.ModelOutputError{Pipeline: pipeline, Reason: "schema mismatch", Err: err}
}
