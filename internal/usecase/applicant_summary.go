package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/pkg/textx"
)

// ApplicantSummaryInput carries what the data store does not know about
// the summary request.
type ApplicantSummaryInput struct {
	Seniority  *string              `json:"seniority" yaml:"seniority"`
	SkillsHint []string             `json:"skillsHint" yaml:"skillsHint"`
	Options    *SummaryOptionsInput `json:"options" yaml:"options"`
}

// ApplicantSummary is one entry of an interview-wide summary run. Exactly one
// of Summary and Error is set.
type ApplicantSummary struct {
	ApplicantID int64                   `json:"applicantId"`
	Name        string                  `json:"name"`
	Summary     *domain.SummaryResponse `json:"summary,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// ApplicantSummaryService summarizes applicants from the answers stored
// in the recruiting data store.
type ApplicantSummaryService struct {
	store domain.RecruitingStore
	genai *GenAIService
}

// NewApplicantSummaryService wires the service. A nil store makes every
// call fail with a configuration error.
func NewApplicantSummaryService(store domain.RecruitingStore, genai *GenAIService) *ApplicantSummaryService {
	return &ApplicantSummaryService{store: store, genai: genai}
}

// Summarize loads the applicant, its interview, questions and answers, then
// runs the summarization pipeline with the interview's job role.
func (s *ApplicantSummaryService) Summarize(ctx context.Context, applicantID int64, in ApplicantSummaryInput) (domain.SummaryResponse, error) {
	if s.store == nil {
		return domain.SummaryResponse{}, &domain.ConfigurationError{Setting: "DATASTORE_BASE_URL"}
	}
	if applicantID <= 0 {
		return domain.SummaryResponse{}, domain.NewValidationError("id", "min", "must be a positive integer")
	}

	applicant, err := s.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return domain.SummaryResponse{}, fmt.Errorf("op=usecase.ApplicantSummary: %w", err)
	}
	interview, err := s.store.GetInterview(ctx, applicant.InterviewID)
	if err != nil {
		return domain.SummaryResponse{}, fmt.Errorf("op=usecase.ApplicantSummary: %w", err)
	}
	questions, err := s.store.ListQuestions(ctx, interview.ID)
	if err != nil {
		return domain.SummaryResponse{}, fmt.Errorf("op=usecase.ApplicantSummary: %w", err)
	}
	out, err := s.summarizeFor(ctx, interview, questions, applicantID, in)
	if err != nil {
		return domain.SummaryResponse{}, fmt.Errorf("op=usecase.ApplicantSummary: %w", err)
	}
	return out, nil
}

// SummarizeInterview summarizes every applicant of an interview. Applicants
// without usable answers or with an unusable model response are reported
// per entry; store, configuration and invocation failures abort the run.
func (s *ApplicantSummaryService) SummarizeInterview(ctx context.Context, interviewID int64, in ApplicantSummaryInput) ([]ApplicantSummary, error) {
	if s.store == nil {
		return nil, &domain.ConfigurationError{Setting: "DATASTORE_BASE_URL"}
	}
	if interviewID <= 0 {
		return nil, domain.NewValidationError("interviewId", "min", "must be a positive integer")
	}

	interview, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("op=usecase.SummarizeInterview: %w", err)
	}
	questions, err := s.store.ListQuestions(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("op=usecase.SummarizeInterview: %w", err)
	}
	applicants, err := s.store.ListApplicants(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("op=usecase.SummarizeInterview: %w", err)
	}

	out := make([]ApplicantSummary, 0, len(applicants))
	for _, a := range applicants {
		entry := ApplicantSummary{ApplicantID: a.ID, Name: applicantName(a)}
		sum, err := s.summarizeFor(ctx, interview, questions, a.ID, in)
		switch {
		case err == nil:
			entry.Summary = &sum
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrModelOutput):
			entry.Error = err.Error()
		default:
			return nil, fmt.Errorf("op=usecase.SummarizeInterview: applicant %d: %w", a.ID, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *ApplicantSummaryService) summarizeFor(ctx context.Context, interview domain.Interview, questions []domain.Question, applicantID int64, in ApplicantSummaryInput) (domain.SummaryResponse, error) {
	answers, err := s.store.ListAnswersByApplicant(ctx, applicantID)
	if err != nil {
		return domain.SummaryResponse{}, err
	}
	pairs := joinAnswers(questions, answers)
	observability.LoggerFromContext(ctx).Debug("applicant answers loaded",
		slog.Int64("applicant_id", applicantID),
		slog.Int64("interview_id", interview.ID),
		slog.Int("questions", len(questions)),
		slog.Int("answers", len(pairs)))
	if len(pairs) == 0 {
		return domain.SummaryResponse{}, domain.NewValidationError("answers", "min", "applicant has no recorded answers")
	}

	role := interview.JobRole
	return s.genai.SummarizeApplicant(ctx, SummarizeInput{
		Role:       &role,
		Seniority:  in.Seniority,
		SkillsHint: in.SkillsHint,
		Answers:    pairs,
		Options:    in.Options,
	})
}

// joinAnswers pairs answers with their questions in question order. When a
// question was answered more than once the newest answer wins. Answers to
// unknown questions are dropped. Null and blank answers are passed on as
// absent so they become the no-answer sentinel.
func joinAnswers(questions []domain.Question, answers []domain.ApplicantAnswer) []AnswerInput {
	latest := make(map[int64]domain.ApplicantAnswer, len(answers))
	for _, a := range answers {
		if cur, ok := latest[a.QuestionID]; !ok || a.ID > cur.ID {
			latest[a.QuestionID] = a
		}
	}
	out := make([]AnswerInput, 0, len(latest))
	for _, q := range questions {
		a, ok := latest[q.ID]
		if !ok {
			continue
		}
		question := q.Question
		var transcript *string
		if a.Answer != nil && textx.SanitizeText(*a.Answer) != "" {
			transcript = a.Answer
		}
		out = append(out, AnswerInput{Question: &question, Transcript: transcript})
	}
	return out
}

func applicantName(a domain.Applicant) string {
	switch {
	case a.Firstname == "":
		return a.Surname
	case a.Surname == "":
		return a.Firstname
	default:
		return a.Firstname + " " + a.Surname
	}
}
