package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/pkg/textx"
)

// RecordedAnswer is the stored answer plus whether it completed the
// applicant's interview.
type RecordedAnswer struct {
	Answer    domain.ApplicantAnswer `json:"answer"`
	Completed bool                   `json:"completed"`
}

// AnswerService records an applicant's answers the way the interview page
// does: one row per answer, then the applicant is marked Completed once
// every question of the interview has an answer.
type AnswerService struct {
	store      domain.RecruitingStore
	writer     domain.AnswerWriter
	transcribe *TranscribeService
}

// NewAnswerService wires the service. A nil store or writer makes every call
// fail with a configuration error.
func NewAnswerService(store domain.RecruitingStore, writer domain.AnswerWriter, transcribe *TranscribeService) *AnswerService {
	return &AnswerService{store: store, writer: writer, transcribe: transcribe}
}

// Record stores text as the applicant's answer to a question. Nil or blank
// text is stored as a null answer.
func (s *AnswerService) Record(ctx context.Context, applicantID, questionID int64, text *string) (RecordedAnswer, error) {
	if s.store == nil || s.writer == nil {
		return RecordedAnswer{}, &domain.ConfigurationError{Setting: "DATASTORE_BASE_URL"}
	}
	if applicantID <= 0 {
		return RecordedAnswer{}, domain.NewValidationError("applicantId", "min", "must be a positive integer")
	}
	if questionID <= 0 {
		return RecordedAnswer{}, domain.NewValidationError("questionId", "min", "must be a positive integer")
	}

	applicant, err := s.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return RecordedAnswer{}, fmt.Errorf("op=usecase.RecordAnswer: %w", err)
	}
	questions, err := s.store.ListQuestions(ctx, applicant.InterviewID)
	if err != nil {
		return RecordedAnswer{}, fmt.Errorf("op=usecase.RecordAnswer: %w", err)
	}
	if !hasQuestion(questions, questionID) {
		return RecordedAnswer{}, fmt.Errorf("op=usecase.RecordAnswer: question %d in interview %d: %w",
			questionID, applicant.InterviewID, domain.ErrNotFound)
	}

	var answer *string
	if text != nil {
		if clean := textx.SanitizeText(*text); clean != "" {
			answer = &clean
		}
	}
	stored, err := s.writer.CreateAnswer(ctx, domain.ApplicantAnswerCreate{
		InterviewID: applicant.InterviewID,
		QuestionID:  questionID,
		ApplicantID: applicantID,
		Answer:      answer,
		Username:    applicant.Username,
	})
	if err != nil {
		return RecordedAnswer{}, fmt.Errorf("op=usecase.RecordAnswer: %w", err)
	}
	out := RecordedAnswer{Answer: stored}

	if applicant.InterviewStatus == domain.ApplicantCompleted {
		return out, nil
	}
	answers, err := s.store.ListAnswersByApplicant(ctx, applicantID)
	if err != nil {
		return out, fmt.Errorf("op=usecase.RecordAnswer: %w", err)
	}
	if !allAnswered(questions, answers) {
		return out, nil
	}
	done := domain.ApplicantCompleted
	if _, err := s.writer.UpdateApplicant(ctx, applicantID, domain.ApplicantUpdate{InterviewStatus: &done}); err != nil {
		return out, fmt.Errorf("op=usecase.RecordAnswer: %w", err)
	}
	out.Completed = true
	observability.LoggerFromContext(ctx).Info("applicant interview completed",
		slog.Int64("applicant_id", applicantID),
		slog.Int64("interview_id", applicant.InterviewID))
	return out, nil
}

// RecordAudio transcribes a recording and stores the transcript as the
// answer.
func (s *AnswerService) RecordAudio(ctx context.Context, applicantID, questionID int64, audio []byte) (RecordedAnswer, error) {
	if s.transcribe == nil {
		return RecordedAnswer{}, &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	text, err := s.transcribe.Transcribe(ctx, audio)
	if err != nil {
		return RecordedAnswer{}, fmt.Errorf("op=usecase.RecordAudio: %w", err)
	}
	return s.Record(ctx, applicantID, questionID, &text)
}

func hasQuestion(questions []domain.Question, id int64) bool {
	for _, q := range questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func allAnswered(questions []domain.Question, answers []domain.ApplicantAnswer) bool {
	if len(questions) == 0 {
		return false
	}
	answered := make(map[int64]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}
	for _, q := range questions {
		if !answered[q.ID] {
			return false
		}
	}
	return true
}
