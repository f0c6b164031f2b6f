package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
)

type mockChatModel struct{ mock.Mock }

func (m *mockChatModel) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// gatedModel blocks every call until release is closed.
type gatedModel struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	out     string
}

func newGatedModel(out string) *gatedModel {
	return &gatedModel{started: make(chan struct{}, 16), release: make(chan struct{}), out: out}
}

func (g *gatedModel) Complete(ctx context.Context, _ domain.ChatRequest) (string, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
		return g.out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:                  "test",
		LLMModel:                "gpt-4o-mini",
		LLMTemperatureQuestions: 0.7,
		LLMTemperatureSummary:   0.2,
		TranscriptMaxChars:      1200,
		SuggestListFallback:     true,
		LLMTimeout:              2 * time.Second,
	}
}

func ptr[T any](v T) *T { return &v }

const validSummaryJSON = `{"summary":"Strong systems thinker.","strengths":["Go","Testing","Ownership"],"concerns":["Limited k8s","Terse answers","No mentoring"],"overall_signal":"Proceed"}`

const threeItemsJSON = `{"items":[
 {"question":"How would you design an idempotent payment API?","difficulty":"Advanced","rationale":"Tests distributed systems reasoning."},
 {"question":"Explain how you would paginate a large table.","difficulty":"Intermediate","rationale":"Checks practical SQL knowledge."},
 {"question":"What does HTTP 409 mean?","difficulty":"Easy","rationale":"Baseline API literacy."}
]}`

func summaryInput() SummarizeInput {
	return SummarizeInput{
		Role:       ptr("Backend Engineer"),
		Seniority:  ptr("Mid"),
		SkillsHint: []string{"Go"},
		Answers: []AnswerInput{
			{Question: ptr("Describe a hard bug."), Transcript: ptr("A race in our cache layer.")},
		},
	}
}
