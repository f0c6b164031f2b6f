package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/internal/usecase"
)

type fixedModel struct{ out string }

func (m fixedModel) Complete(context.Context, domain.ChatRequest) (string, error) { return m.out, nil }

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"*"}, ParseOrigins(" * "))
	assert.Equal(t, []string{"*"}, ParseOrigins(" , "))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, ParseOrigins("https://a.example, https://b.example,"))
}

func newRouter(cfg config.Config) http.Handler {
	genai := usecase.NewGenAIService(cfg, fixedModel{out: `["Q1?","Q2?"]`}, nil)
	srv := httpserver.NewServer(cfg, genai, nil, usecase.NewTranscribeService(nil, true))
	return BuildRouter(cfg, srv)
}

func baseConfig() config.Config {
	return config.Config{
		LLMModel:         "gpt-4o-mini",
		CORSAllowOrigins: "https://app.example",
		RateLimitPerMin:  100,
		MaxBodyBytes:     1 << 20,
		OTELServiceName:  "readysethire-server",
	}
}

func serve(h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Routes(t *testing.T) {
	h := newRouter(baseConfig())

	rec := serve(h, http.MethodPost, "/genai/suggest-questions", `{"jobRole":"SRE"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"questions":["Q1?","Q2?"]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/transcribe", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/genai/unknown", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "/genai/generate-questions", "", nil).Code)
}

func TestRouter_RequireAuth(t *testing.T) {
	cfg := baseConfig()
	cfg.RequireAuth = true
	h := newRouter(cfg)

	rec := serve(h, http.MethodPost, "/genai/suggest-questions", `{"jobRole":"SRE"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unauthorized"`)

	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "", nil).Code)

	rec = serve(h, http.MethodPost, "/genai/suggest-questions", `{"jobRole":"SRE"}`, map[string]string{"Authorization": "Bearer t0ken"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newRouter(baseConfig())

	rec := serve(h, http.MethodOptions, "/genai/generate-questions", "", map[string]string{
		"Origin":                        "https://app.example",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_BodyCap(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxBodyBytes = 64
	h := newRouter(cfg)

	rec := serve(h, http.MethodPost, "/genai/suggest-questions", `{"jobRole":"`+strings.Repeat("x", 200)+`"}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitPerMin = 2
	h := newRouter(cfg)

	var last int
	for i := 0; i < 3; i++ {
		last = serve(h, http.MethodPost, "/genai/suggest-questions", `{"jobRole":"SRE"}`, nil).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "", nil).Code)
}

func TestRouter_RateLimitRunsBeforeAuth(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitPerMin = 2
	cfg.RequireAuth = true
	h := newRouter(cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(h, http.MethodPost, "/genai/suggest-questions", `{"jobRole":"SRE"}`, map[string]string{"Authorization": "Bearer"}).Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "", nil).Code)
}
