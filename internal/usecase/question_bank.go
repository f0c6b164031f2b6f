package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/domain"
)

// QuestionBankService stores generated questions in an interview's
// question bank.
type QuestionBankService struct {
	writer domain.QuestionWriter
}

// NewQuestionBankService wires the service. A nil writer makes every call
// fail with a configuration error.
func NewQuestionBankService(writer domain.QuestionWriter) *QuestionBankService {
	return &QuestionBankService{writer: writer}
}

// Save creates one stored question per generated item, in item order. On a
// store failure the questions saved so far are returned with the error.
func (s *QuestionBankService) Save(ctx context.Context, interviewID int64, username string, items []domain.GeneratedQuestion) ([]domain.Question, error) {
	if s.writer == nil {
		return nil, &domain.ConfigurationError{Setting: "DATASTORE_BASE_URL"}
	}
	if interviewID <= 0 {
		return nil, domain.NewValidationError("interviewId", "min", "must be a positive integer")
	}
	saved := make([]domain.Question, 0, len(items))
	for i, it := range items {
		q, err := s.writer.CreateQuestion(ctx, domain.QuestionCreate{
			InterviewID: interviewID,
			Question:    it.Question,
			Difficulty:  it.Difficulty,
			Username:    username,
		})
		if err != nil {
			return saved, fmt.Errorf("op=usecase.SaveQuestions: item %d of %d: %w", i+1, len(items), err)
		}
		saved = append(saved, q)
	}
	observability.LoggerFromContext(ctx).Info("generated questions saved",
		slog.Int64("interview_id", interviewID),
		slog.Int("count", len(saved)))
	return saved, nil
}
