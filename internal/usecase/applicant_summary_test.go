package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/readysethire/genai-server/internal/domain"
)

type fakeStore struct {
	applicants map[int64]domain.Applicant
	interviews map[int64]domain.Interview
	questions  []domain.Question
	answers    []domain.ApplicantAnswer
	err        error
}

func (f *fakeStore) GetApplicant(_ context.Context, id int64) (domain.Applicant, error) {
	if f.err != nil {
		return domain.Applicant{}, f.err
	}
	a, ok := f.applicants[id]
	if !ok {
		return domain.Applicant{}, fmt.Errorf("applicant %d: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (f *fakeStore) GetInterview(_ context.Context, id int64) (domain.Interview, error) {
	i, ok := f.interviews[id]
	if !ok {
		return domain.Interview{}, fmt.Errorf("interview %d: %w", id, domain.ErrNotFound)
	}
	return i, nil
}

func (f *fakeStore) ListQuestions(_ context.Context, interviewID int64) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range f.questions {
		if q.InterviewID == interviewID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) ListApplicants(_ context.Context, interviewID int64) ([]domain.Applicant, error) {
	var out []domain.Applicant
	for _, a := range f.applicants {
		if a.InterviewID == interviewID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListAnswersByApplicant(_ context.Context, applicantID int64) ([]domain.ApplicantAnswer, error) {
	var out []domain.ApplicantAnswer
	for _, a := range f.answers {
		if a.ApplicantID == applicantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		applicants: map[int64]domain.Applicant{7: {ID: 7, InterviewID: 3, Firstname: "Sam"}},
		interviews: map[int64]domain.Interview{3: {ID: 3, Title: "Platform hire", JobRole: "Platform Engineer"}},
		questions: []domain.Question{
			{ID: 10, InterviewID: 3, Question: "Describe an outage you handled."},
			{ID: 11, InterviewID: 3, Question: "How do you review code?"},
			{ID: 12, InterviewID: 3, Question: "Unanswered question."},
		},
		answers: []domain.ApplicantAnswer{
			{ID: 1, ApplicantID: 7, QuestionID: 11, Answer: ptr("first draft")},
			{ID: 2, ApplicantID: 7, QuestionID: 10, Answer: ptr("We rolled back within minutes.")},
			{ID: 3, ApplicantID: 7, QuestionID: 11, Answer: nil},
			{ID: 4, ApplicantID: 8, QuestionID: 10, Answer: ptr("other applicant")},
		},
	}
}

func TestApplicantSummary_JoinsStoredAnswers(t *testing.T) {
	var captured domain.ChatRequest
	m := &mockChatModel{}
	m.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(domain.ChatRequest) }).
		Return(validSummaryJSON, nil).Once()

	svc := NewApplicantSummaryService(newFakeStore(), NewGenAIService(testConfig(), m, nil))
	out, err := svc.Summarize(context.Background(), 7, ApplicantSummaryInput{Seniority: ptr("Senior")})
	require.NoError(t, err)
	assert.Equal(t, domain.SignalProceed, out.OverallSignal)

	var payload struct {
		Role    string          `json:"role"`
		Answers []domain.Answer `json:"answers"`
	}
	require.NoError(t, json.Unmarshal([]byte(captured.User), &payload))
	assert.Equal(t, "Platform Engineer", payload.Role)
	assert.Equal(t, []domain.Answer{
		{Question: "Describe an outage you handled.", Transcript: "We rolled back within minutes."},
		{Question: "How do you review code?", Transcript: domain.NoAnswerSentinel},
	}, payload.Answers)
}

func TestApplicantSummary_NotFound(t *testing.T) {
	m := &mockChatModel{}
	svc := NewApplicantSummaryService(newFakeStore(), NewGenAIService(testConfig(), m, nil))

	_, err := svc.Summarize(context.Background(), 99, ApplicantSummaryInput{Seniority: ptr("Mid")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestApplicantSummary_NoAnswers(t *testing.T) {
	store := newFakeStore()
	store.answers = nil
	svc := NewApplicantSummaryService(store, NewGenAIService(testConfig(), &mockChatModel{}, nil))

	_, err := svc.Summarize(context.Background(), 7, ApplicantSummaryInput{Seniority: ptr("Mid")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "answers", ve.Fields[0].Field)
}

func TestApplicantSummary_MissingSeniority(t *testing.T) {
	svc := NewApplicantSummaryService(newFakeStore(), NewGenAIService(testConfig(), &mockChatModel{}, nil))

	_, err := svc.Summarize(context.Background(), 7, ApplicantSummaryInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestApplicantSummary_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = fmt.Errorf("store down: %w", domain.ErrUpstream)
	svc := NewApplicantSummaryService(store, NewGenAIService(testConfig(), &mockChatModel{}, nil))

	_, err := svc.Summarize(context.Background(), 7, ApplicantSummaryInput{Seniority: ptr("Mid")})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestApplicantSummary_Preconditions(t *testing.T) {
	genai := NewGenAIService(testConfig(), &mockChatModel{}, nil)

	_, err := NewApplicantSummaryService(nil, genai).Summarize(context.Background(), 7, ApplicantSummaryInput{})
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DATASTORE_BASE_URL", cfgErr.Setting)

	_, err = NewApplicantSummaryService(newFakeStore(), genai).Summarize(context.Background(), 0, ApplicantSummaryInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestJoinAnswers_DropsUnknownQuestions(t *testing.T) {
	qs := []domain.Question{{ID: 1, Question: "Q1"}}
	as := []domain.ApplicantAnswer{{ID: 5, QuestionID: 2, Answer: ptr("orphan")}}
	assert.Empty(t, joinAnswers(qs, as))
}

func TestJoinAnswers_BlankStoredAnswerIsAbsent(t *testing.T) {
	qs := []domain.Question{{ID: 1, Question: "Q1"}, {ID: 2, Question: "Q2"}}
	as := []domain.ApplicantAnswer{
		{ID: 1, QuestionID: 1, Answer: ptr("  \n ")},
		{ID: 2, QuestionID: 2, Answer: ptr("Real answer")},
	}
	got := joinAnswers(qs, as)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Transcript)
	assert.Equal(t, "Real answer", *got[1].Transcript)
}

func TestApplicantSummary_BlankStoredAnswerUsesSentinel(t *testing.T) {
	store := newFakeStore()
	store.answers = []domain.ApplicantAnswer{{ID: 1, ApplicantID: 7, QuestionID: 10, Answer: ptr("   ")}}
	var captured domain.ChatRequest
	m := &mockChatModel{}
	m.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(domain.ChatRequest) }).
		Return(validSummaryJSON, nil).Once()

	svc := NewApplicantSummaryService(store, NewGenAIService(testConfig(), m, nil))
	_, err := svc.Summarize(context.Background(), 7, ApplicantSummaryInput{Seniority: ptr("Mid")})
	require.NoError(t, err)

	var payload struct {
		Answers []domain.Answer `json:"answers"`
	}
	require.NoError(t, json.Unmarshal([]byte(captured.User), &payload))
	assert.Equal(t, []domain.Answer{{Question: "Describe an outage you handled.", Transcript: domain.NoAnswerSentinel}}, payload.Answers)
}

func TestSummarizeInterview_ReportsPerApplicant(t *testing.T) {
	store := newFakeStore()
	store.applicants[8] = domain.Applicant{ID: 8, InterviewID: 3, Firstname: "Alex", Surname: "Kim"}
	store.applicants[9] = domain.Applicant{ID: 9, InterviewID: 3, Firstname: "Jo"}
	store.applicants[20] = domain.Applicant{ID: 20, InterviewID: 4}
	m := &mockChatModel{}
	m.On("Complete", mock.Anything, mock.Anything).Return(validSummaryJSON, nil).Twice()

	svc := NewApplicantSummaryService(store, NewGenAIService(testConfig(), m, nil))
	out, err := svc.SummarizeInterview(context.Background(), 3, ApplicantSummaryInput{Seniority: ptr("Senior")})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, int64(7), out[0].ApplicantID)
	require.NotNil(t, out[0].Summary)
	assert.Equal(t, "Alex Kim", out[1].Name)
	require.NotNil(t, out[1].Summary)
	assert.Equal(t, int64(9), out[2].ApplicantID)
	assert.Nil(t, out[2].Summary)
	assert.Contains(t, out[2].Error, "no recorded answers")
	m.AssertExpectations(t)
}

func TestSummarizeInterview_AbortsOnInvocationFailure(t *testing.T) {
	m := &mockChatModel{}
	m.On("Complete", mock.Anything, mock.Anything).
		Return("", errors.Join(domain.ErrModelInvocation, errors.New("503"))).Once()

	svc := NewApplicantSummaryService(newFakeStore(), NewGenAIService(testConfig(), m, nil))
	_, err := svc.SummarizeInterview(context.Background(), 3, ApplicantSummaryInput{Seniority: ptr("Mid")})
	assert.ErrorIs(t, err, domain.ErrModelInvocation)
}

func TestSummarizeInterview_Preconditions(t *testing.T) {
	genai := NewGenAIService(testConfig(), &mockChatModel{}, nil)

	_, err := NewApplicantSummaryService(nil, genai).SummarizeInterview(context.Background(), 3, ApplicantSummaryInput{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	_, err = NewApplicantSummaryService(newFakeStore(), genai).SummarizeInterview(context.Background(), 0, ApplicantSummaryInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = NewApplicantSummaryService(newFakeStore(), genai).SummarizeInterview(context.Background(), 404, ApplicantSummaryInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
