// Package postgrest is a typed client for the recruiting data store, a
// PostgREST-style REST service that exposes one resource per table and
// filters rows with `?column=eq.value` query parameters.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/domain"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

const (
	resInterview = "interview"
	resQuestion  = "question"
	resApplicant = "applicant"
	resAnswer    = "applicant_answer"
)

// StoreError is a non-2xx response from the data store.
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("data store %d: %s", e.Status, e.Message)
}

// Is maps a 404 to domain.ErrNotFound, auth failures to ErrUnauthorized and
// everything else to ErrUpstream.
func (e *StoreError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case domain.ErrUpstream:
		return e.Status != http.StatusNotFound
	}
	return false
}

// Client talks to the data store. It is safe for concurrent use.
type Client struct {
	baseURL string
	jwt     string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// New builds a client for baseURL. jwt may be empty for anonymous access.
func New(baseURL, jwt string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		jwt:     jwt,
		hc:      &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Interviews

func (c *Client) GetInterview(ctx context.Context, id int64) (domain.Interview, error) {
	var out []domain.Interview
	if err := c.do(ctx, http.MethodGet, resInterview, eq("id", id), nil, &out); err != nil {
		return domain.Interview{}, fmt.Errorf("op=postgrest.GetInterview: %w", err)
	}
	if len(out) == 0 {
		return domain.Interview{}, fmt.Errorf("op=postgrest.GetInterview: interview %d: %w", id, domain.ErrNotFound)
	}
	return out[0], nil
}

// Questions

func (c *Client) ListQuestions(ctx context.Context, interviewID int64) ([]domain.Question, error) {
	var out []domain.Question
	q := eq("interview_id", interviewID)
	q.Set("order", "id.asc")
	if err := c.do(ctx, http.MethodGet, resQuestion, q, nil, &out); err != nil {
		return nil, fmt.Errorf("op=postgrest.ListQuestions: %w", err)
	}
	return out, nil
}

func (c *Client) CreateQuestion(ctx context.Context, in domain.QuestionCreate) (domain.Question, error) {
	out, err := createOne[domain.Question](ctx, c, resQuestion, in)
	if err != nil {
		return out, fmt.Errorf("op=postgrest.CreateQuestion: %w", err)
	}
	return out, nil
}

// Applicants

// ListApplicants lists the applicants of one interview in id order.
func (c *Client) ListApplicants(ctx context.Context, interviewID int64) ([]domain.Applicant, error) {
	var out []domain.Applicant
	q := eq("interview_id", interviewID)
	q.Set("order", "id.asc")
	if err := c.do(ctx, http.MethodGet, resApplicant, q, nil, &out); err != nil {
		return nil, fmt.Errorf("op=postgrest.ListApplicants: %w", err)
	}
	return out, nil
}

func (c *Client) GetApplicant(ctx context.Context, id int64) (domain.Applicant, error) {
	var out []domain.Applicant
	if err := c.do(ctx, http.MethodGet, resApplicant, eq("id", id), nil, &out); err != nil {
		return domain.Applicant{}, fmt.Errorf("op=postgrest.GetApplicant: %w", err)
	}
	if len(out) == 0 {
		return domain.Applicant{}, fmt.Errorf("op=postgrest.GetApplicant: applicant %d: %w", id, domain.ErrNotFound)
	}
	return out[0], nil
}

func (c *Client) UpdateApplicant(ctx context.Context, id int64, in domain.ApplicantUpdate) (domain.Applicant, error) {
	var rows []domain.Applicant
	if err := c.do(ctx, http.MethodPatch, resApplicant, eq("id", id), in, &rows); err != nil {
		return domain.Applicant{}, fmt.Errorf("op=postgrest.UpdateApplicant: %w", err)
	}
	if len(rows) == 0 {
		return domain.Applicant{}, fmt.Errorf("op=postgrest.UpdateApplicant: applicant %d: %w", id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// Answers

func (c *Client) ListAnswersByApplicant(ctx context.Context, applicantID int64) ([]domain.ApplicantAnswer, error) {
	var out []domain.ApplicantAnswer
	q := eq("applicant_id", applicantID)
	q.Set("order", "id.asc")
	if err := c.do(ctx, http.MethodGet, resAnswer, q, nil, &out); err != nil {
		return nil, fmt.Errorf("op=postgrest.ListAnswersByApplicant: %w", err)
	}
	return out, nil
}

func (c *Client) CreateAnswer(ctx context.Context, in domain.ApplicantAnswerCreate) (domain.ApplicantAnswer, error) {
	out, err := createOne[domain.ApplicantAnswer](ctx, c, resAnswer, in)
	if err != nil {
		return out, fmt.Errorf("op=postgrest.CreateAnswer: %w", err)
	}
	return out, nil
}

// Ping checks that the store answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("op=postgrest.Ping: %w: %w", domain.ErrUpstream, err)
	}
	_ = resp.Body.Close()
	return nil
}

// createOne posts body and returns the single representation the store
// echoes back.
func createOne[T any](ctx context.Context, c *Client, resource string, body any) (T, error) {
	var rows []T
	var zero T
	if err := c.do(ctx, http.MethodPost, resource, nil, body, &rows); err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, &StoreError{Status: http.StatusBadGateway, Message: "empty representation"}
	}
	return rows[0], nil
}

func eq(col string, v int64) url.Values {
	return url.Values{col: []string{"eq." + strconv.FormatInt(v, 10)}}
}

func (c *Client) authorize(req *http.Request) {
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}
}

func (c *Client) do(ctx context.Context, method, resource string, q url.Values, body, out any) error {
	u := c.baseURL + "/" + resource
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}
	if rid := observability.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	observability.ObserveDataStoreRequest(resource, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return storeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", domain.ErrUpstream, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrUpstream, resource, err)
	}
	return nil
}

func storeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StoreError{Status: resp.StatusCode, Message: msg}
}

var (
	_ domain.RecruitingStore = (*Client)(nil)
	_ domain.QuestionWriter  = (*Client)(nil)
	_ domain.AnswerWriter    = (*Client)(nil)
)
