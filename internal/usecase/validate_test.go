package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readysethire/genai-server/internal/domain"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))
	out := map[string]string{}
	for _, f := range ve.Fields {
		out[f.Field] = f.Rule
	}
	return out
}

func TestNormalizeGeneration_Defaults(t *testing.T) {
	req, err := NormalizeGeneration(GenerateQuestionsInput{Role: ptr("  Backend Engineer "), Seniority: ptr("Mid")})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", req.Role)
	assert.Equal(t, DefaultQuestionCount, req.Count)
	assert.Equal(t, domain.LanguageEN, req.Options.Language)
	assert.Empty(t, req.TechStack)
	assert.NotNil(t, req.TechStack)
	assert.Nil(t, req.Options.Temperature)
}

func TestNormalizeGeneration_RejectsOutOfRangeCount(t *testing.T) {
	for _, n := range []int{0, -1, 11} {
		_, err := NormalizeGeneration(GenerateQuestionsInput{Role: ptr("QA"), Seniority: ptr("Junior"), Count: ptr(n)})
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "count", "count=%d", n)
	}
	for _, n := range []int{1, 10} {
		req, err := NormalizeGeneration(GenerateQuestionsInput{Role: ptr("QA"), Seniority: ptr("Junior"), Count: ptr(n)})
		require.NoError(t, err)
		assert.Equal(t, n, req.Count)
	}
}

func TestNormalizeGeneration_FieldDiagnostics(t *testing.T) {
	_, err := NormalizeGeneration(GenerateQuestionsInput{
		Role:      ptr("   "),
		TechStack: []string{"Go", " "},
		Options:   &GenerationOptionsInput{Temperature: ptr(2.5), Language: ptr("fr")},
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, "required", fields["role"])
	assert.Equal(t, "required", fields["seniority"])
	assert.Equal(t, "required", fields["techStack[1]"])
	assert.Equal(t, "max", fields["options.temperature"])
	assert.Equal(t, "oneof", fields["options.language"])
}

func TestNormalizeSummary_NullTranscriptBecomesSentinel(t *testing.T) {
	in := summaryInput()
	in.Answers = append(in.Answers, AnswerInput{Question: ptr("Why us?")})
	req, err := NormalizeSummary(in, 800)
	require.NoError(t, err)
	require.Len(t, req.Answers, 2)
	assert.Equal(t, domain.NoAnswerSentinel, req.Answers[1].Transcript)
	assert.Equal(t, 800, req.Options.MaxCharsPerAnswer)
	assert.Equal(t, domain.LanguageEN, req.Options.Language)
}

func TestNormalizeSummary_RejectsBlankTranscript(t *testing.T) {
	in := summaryInput()
	in.Answers[0].Transcript = ptr("   ")
	_, err := NormalizeSummary(in, 1200)
	fields := fieldErrors(t, err)
	assert.Equal(t, "required", fields["answers[0].transcript"])
}

func TestNormalizeSummary_StripsControlCharacters(t *testing.T) {
	in := summaryInput()
	in.Answers[0].Transcript = ptr(" I led\x00 the\tmigration\x7f.\n")
	req, err := NormalizeSummary(in, 1200)
	require.NoError(t, err)
	assert.Equal(t, "I led the\tmigration.", req.Answers[0].Transcript)
}

func TestNormalizeSummary_RejectsEmptyAnswersAndBadOptions(t *testing.T) {
	in := summaryInput()
	in.Answers = []AnswerInput{}
	in.Options = &SummaryOptionsInput{MaxCharsPerAnswer: ptr(5001), Language: ptr("de")}
	_, err := NormalizeSummary(in, 1200)
	fields := fieldErrors(t, err)
	assert.Equal(t, "min", fields["answers"])
	assert.Equal(t, "max", fields["options.maxCharsPerAnswer"])
	assert.Equal(t, "oneof", fields["options.language"])

	in.Answers = nil
	in.Options = &SummaryOptionsInput{MaxCharsPerAnswer: ptr(0)}
	_, err = NormalizeSummary(in, 1200)
	fields = fieldErrors(t, err)
	assert.Equal(t, "required", fields["answers"])
	assert.Equal(t, "min", fields["options.maxCharsPerAnswer"])
}

func TestNormalizeSuggest(t *testing.T) {
	req, err := NormalizeSuggest(SuggestInput{JobRole: ptr("SRE")})
	require.NoError(t, err)
	assert.Equal(t, DefaultSuggestCount, req.Count)
	assert.Equal(t, domain.DifficultyIntermediate, req.Difficulty)
	assert.Equal(t, "", req.Description)

	_, err = NormalizeSuggest(SuggestInput{JobRole: ptr("X"), Difficulty: ptr("Hard"), Count: ptr(20)})
	fields := fieldErrors(t, err)
	assert.Equal(t, "min", fields["jobRole"])
	assert.Equal(t, "oneof", fields["difficulty"])
	assert.Equal(t, "max", fields["count"])
}

func TestValidationError_Message(t *testing.T) {
	_, err := NormalizeGeneration(GenerateQuestionsInput{Seniority: ptr("Mid"), Role: ptr("Dev"), Count: ptr(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count: must be >= 1")
}
