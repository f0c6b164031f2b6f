package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/domain"
)

// fakeOpenAI answers every chat completion with content and records the
// last request body.
func fakeOpenAI(t *testing.T, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	last := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &last)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
			"choices": []any{map[string]any{
				"index": 0, "finish_reason": "stop",
				"message": map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func setEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", baseURL+"/v1/")
	t.Setenv("LLM_MAX_RETRIES", "0")
	t.Setenv("GENAI_CACHE_TTL_SEC", "0")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	srv, last := fakeOpenAI(t, `{"items":[{"question":"Q?","difficulty":"Easy","rationale":"R"}]}`)
	setEnv(t, srv.URL)

	out, err := run(t, "", "generate", "--role", "Backend Engineer", "--seniority", "Mid", "--count", "1", "--tech", "Go,Postgres", "--temperature", "1.1")
	require.NoError(t, err)

	var resp domain.GenerationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Items, 1)
	assert.InDelta(t, 1.1, (*last)["temperature"], 1e-9)
}

func TestGenerate_InvalidCount(t *testing.T) {
	srv, _ := fakeOpenAI(t, `{}`)
	setEnv(t, srv.URL)

	_, err := run(t, "", "generate", "--role", "Dev", "--seniority", "Mid", "--count", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSummarize_YAMLFromStdin(t *testing.T) {
	srv, last := fakeOpenAI(t, `{"summary":"Solid.","strengths":["Go"],"concerns":[],"overall_signal":"Maybe"}`)
	setEnv(t, srv.URL)

	req := `
role: Backend Engineer
seniority: Mid
answers:
  - question: Describe a hard bug.
    transcript: A race in the cache layer.
  - question: Anything else?
    transcript: ~
`
	out, err := run(t, req, "summarize", "-f", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"Solid.","strengths":["Go"],"concerns":[],"overall_signal":"Maybe"}`, out)

	msgs, ok := (*last)["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, domain.NoAnswerSentinel)
}

func TestReadSummarizeInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"role":"Dev","seniority":"Mid","answers":[{"question":"Q","transcript":"A"}],"options":{"maxCharsPerAnswer":50}}`), 0o600))

	in, err := readSummarizeInput(nil, path)
	require.NoError(t, err)
	require.NotNil(t, in.Role)
	assert.Equal(t, "Dev", *in.Role)
	require.Len(t, in.Answers, 1)
	require.NotNil(t, in.Options)
	assert.Equal(t, 50, *in.Options.MaxCharsPerAnswer)

	_, err = readSummarizeInput(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSuggest_NumberedListFallback(t *testing.T) {
	srv, _ := fakeOpenAI(t, "1) First?\n2) Second?")
	setEnv(t, srv.URL)

	out, err := run(t, "", "suggest", "--job-role", "SRE", "--count", "2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":["First?","Second?"]}`, out)
}

func TestApplicant_StoreNotConfigured(t *testing.T) {
	srv, _ := fakeOpenAI(t, `{}`)
	setEnv(t, srv.URL)
	t.Setenv("DATASTORE_BASE_URL", "")

	_, err := run(t, "", "applicant", "--id", "7", "--seniority", "Mid")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

// fakeStore serves the PostgREST resources genaictl writes to and records
// every POST and PATCH as "METHOD /resource".
func fakeStore(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var writes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodGet {
			writes = append(writes, r.Method+" "+r.URL.Path)
		}
		switch {
		case r.Method == http.MethodPost:
			row := map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&row)
			row["id"] = len(writes) + 100
			_ = json.NewEncoder(w).Encode([]any{row})
		case r.URL.Path == "/applicant":
			_, _ = io.WriteString(w, `[{"id":7,"interview_id":3,"firstname":"Sam","interview_status":"Not Started","username":"recruiter1"}]`)
		case r.URL.Path == "/question":
			_, _ = io.WriteString(w, `[{"id":10,"interview_id":3,"question":"Q1?","difficulty":"Easy"},{"id":11,"interview_id":3,"question":"Q2?","difficulty":"Easy"}]`)
		case r.URL.Path == "/applicant_answer":
			_, _ = io.WriteString(w, `[{"id":1,"interview_id":3,"question_id":10,"applicant_id":7,"answer":"A"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &writes
}

func TestGenerate_SavesToInterview(t *testing.T) {
	srv, _ := fakeOpenAI(t, `{"items":[{"question":"Q?","difficulty":"Easy","rationale":"R"},{"question":"Q2?","difficulty":"Advanced","rationale":"R2"}]}`)
	setEnv(t, srv.URL)
	store, writes := fakeStore(t)
	t.Setenv("DATASTORE_BASE_URL", store.URL)

	out, err := run(t, "", "generate", "--role", "Dev", "--seniority", "Mid", "--count", "2", "--interview-id", "3", "--username", "recruiter1")
	require.NoError(t, err)

	var resp struct {
		Items []domain.GeneratedQuestion `json:"items"`
		Saved []domain.Question          `json:"saved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Saved, 2)
	assert.Equal(t, int64(3), resp.Saved[0].InterviewID)
	assert.Equal(t, "recruiter1", resp.Saved[1].Username)
	assert.Equal(t, domain.DifficultyAdvanced, resp.Saved[1].Difficulty)
	assert.Equal(t, []string{"POST /question", "POST /question"}, *writes)
}

func TestAnswer_RecordsText(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1")
	store, writes := fakeStore(t)
	t.Setenv("DATASTORE_BASE_URL", store.URL)

	out, err := run(t, "", "answer", "--applicant", "7", "--question", "11", "--text", " Second answer ")
	require.NoError(t, err)
	assert.Equal(t, []string{"POST /applicant_answer"}, *writes)

	var resp struct {
		Answer    domain.ApplicantAnswer `json:"answer"`
		Completed bool                   `json:"completed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Answer.Answer)
	assert.Equal(t, "Second answer", *resp.Answer.Answer)
	assert.False(t, resp.Completed)
}

func TestApplicant_FlagsAreExclusive(t *testing.T) {
	_, err := run(t, "", "applicant", "--id", "7", "--interview-id", "3")
	assert.Error(t, err)

	_, err = run(t, "", "applicant", "--seniority", "Mid")
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	out, err := run(t, "from-stdin\n", "hash-token")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(hash, "argon2id$"))
	assert.True(t, httpserver.VerifyToken("from-stdin", hash))

	_, err = run(t, "", "hash-token")
	assert.Error(t, err)
}
