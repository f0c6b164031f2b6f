package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/pkg/textx"
)

// Default counts applied when the caller omits count.
const (
	DefaultQuestionCount = 6
	DefaultSuggestCount  = 5
)

// GenerateQuestionsInput is the raw generation request as decoded from
// JSON or YAML. Pointers distinguish absent from zero.
type GenerateQuestionsInput struct {
	Role      *string                 `json:"role" yaml:"role"`
	Seniority *string                 `json:"seniority" yaml:"seniority"`
	TechStack []string                `json:"techStack" yaml:"techStack"`
	Count     *int                    `json:"count" yaml:"count"`
	Options   *GenerationOptionsInput `json:"options" yaml:"options"`
}

type GenerationOptionsInput struct {
	Temperature *float64 `json:"temperature" yaml:"temperature"`
	Language    *string  `json:"language" yaml:"language"`
}

// SummarizeInput is the raw summarization request.
type SummarizeInput struct {
	Role       *string              `json:"role" yaml:"role"`
	Seniority  *string              `json:"seniority" yaml:"seniority"`
	SkillsHint []string             `json:"skillsHint" yaml:"skillsHint"`
	Answers    []AnswerInput        `json:"answers" yaml:"answers"`
	Options    *SummaryOptionsInput `json:"options" yaml:"options"`
}

// AnswerInput is one raw question/transcript pair. A nil Transcript means
// the applicant gave no answer.
type AnswerInput struct {
	Question   *string `json:"question" yaml:"question"`
	Transcript *string `json:"transcript" yaml:"transcript"`
}

type SummaryOptionsInput struct {
	MaxCharsPerAnswer *int     `json:"maxCharsPerAnswer" yaml:"maxCharsPerAnswer"`
	Temperature       *float64 `json:"temperature" yaml:"temperature"`
	Language          *string  `json:"language" yaml:"language"`
}

// SuggestInput is the raw free-form suggestion request.
type SuggestInput struct {
	JobRole     *string `json:"jobRole" yaml:"jobRole"`
	Description *string `json:"description" yaml:"description"`
	Count       *int    `json:"count" yaml:"count"`
	Difficulty  *string `json:"difficulty" yaml:"difficulty"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		// report wire names instead of Go field names
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// NormalizeGeneration applies defaults, trims text and validates a raw
// generation request. Out-of-range counts are rejected, never clamped.
func NormalizeGeneration(in GenerateQuestionsInput) (domain.GenerationRequest, error) {
	req := domain.GenerationRequest{
		Role:      trimmed(in.Role),
		Seniority: trimmed(in.Seniority),
		TechStack: trimAll(in.TechStack),
		Count:     intOr(in.Count, DefaultQuestionCount),
		Options:   domain.GenerationOptions{Language: domain.LanguageEN},
	}
	if in.Options != nil {
		req.Options.Temperature = in.Options.Temperature
		if in.Options.Language != nil {
			req.Options.Language = domain.Language(strings.TrimSpace(*in.Options.Language))
		}
	}
	if err := validateStruct(req); err != nil {
		return domain.GenerationRequest{}, err
	}
	return req, nil
}

// NormalizeSummary applies defaults, trims text, strips control characters
// from transcripts, maps absent transcripts to
// domain.NoAnswerSentinel and validates a raw summarization request.
// defaultMaxChars is used when the caller does not set maxCharsPerAnswer.
func NormalizeSummary(in SummarizeInput, defaultMaxChars int) (domain.SummaryRequest, error) {
	req := domain.SummaryRequest{
		Role:       trimmed(in.Role),
		Seniority:  trimmed(in.Seniority),
		SkillsHint: trimAll(in.SkillsHint),
		Options: domain.SummaryOptions{
			MaxCharsPerAnswer: defaultMaxChars,
			Language:          domain.LanguageEN,
		},
	}
	if in.Answers != nil {
		req.Answers = make([]domain.Answer, 0, len(in.Answers))
	}
	for _, a := range in.Answers {
		ans := domain.Answer{Question: trimmed(a.Question), Transcript: domain.NoAnswerSentinel}
		if a.Transcript != nil {
			ans.Transcript = textx.SanitizeText(*a.Transcript)
		}
		req.Answers = append(req.Answers, ans)
	}
	if o := in.Options; o != nil {
		req.Options.MaxCharsPerAnswer = intOr(o.MaxCharsPerAnswer, defaultMaxChars)
		req.Options.Temperature = o.Temperature
		if o.Language != nil {
			req.Options.Language = domain.Language(strings.TrimSpace(*o.Language))
		}
	}
	if err := validateStruct(req); err != nil {
		return domain.SummaryRequest{}, err
	}
	return req, nil
}

// NormalizeSuggest applies defaults and validates a raw suggestion request.
func NormalizeSuggest(in SuggestInput) (domain.SuggestRequest, error) {
	req := domain.SuggestRequest{
		JobRole:     trimmed(in.JobRole),
		Description: trimmed(in.Description),
		Count:       intOr(in.Count, DefaultSuggestCount),
		Difficulty:  domain.DifficultyIntermediate,
	}
	if in.Difficulty != nil {
		req.Difficulty = domain.Difficulty(strings.TrimSpace(*in.Difficulty))
	}
	if err := validateStruct(req); err != nil {
		return domain.SuggestRequest{}, err
	}
	return req, nil
}

func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(ves))}
	for _, fe := range ves {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "SummaryRequest.answers[0].transcript"
// becomes "answers[0].transcript".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
