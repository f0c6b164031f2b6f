package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/internal/usecase"
)

// GenAI runs the model-backed pipelines.
type GenAI interface {
	GenerateQuestions(ctx context.Context, in usecase.GenerateQuestionsInput) (domain.GenerationResponse, error)
	SummarizeApplicant(ctx context.Context, in usecase.SummarizeInput) (domain.SummaryResponse, error)
	SuggestQuestions(ctx context.Context, in usecase.SuggestInput) (domain.SuggestResponse, error)
}

// ApplicantSummarizer summarizes an applicant stored in the data store.
type ApplicantSummarizer interface {
	Summarize(ctx context.Context, applicantID int64, in usecase.ApplicantSummaryInput) (domain.SummaryResponse, error)
}

// Transcriber turns an uploaded recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// ReadinessCheck is one named dependency check used by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	GenAI       GenAI
	Applicants  ApplicantSummarizer
	Transcriber Transcriber
	Checks      []ReadinessCheck
	now         func() time.Time
}

// NewServer constructs the handler set.
func NewServer(cfg config.Config, genai GenAI, applicants ApplicantSummarizer, transcriber Transcriber, checks ...ReadinessCheck) *Server {
	return &Server{Cfg: cfg, GenAI: genai, Applicants: applicants, Transcriber: transcriber, Checks: checks, now: time.Now}
}

// GenerateQuestionsHandler handles POST /genai/generate-questions.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in usecase.GenerateQuestionsInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := s.GenAI.GenerateQuestions(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// SummarizeApplicantHandler handles POST /genai/summarize-applicant.
func (s *Server) SummarizeApplicantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in usecase.SummarizeInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := s.GenAI.SummarizeApplicant(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// SuggestQuestionsHandler handles POST /genai/suggest-questions.
func (s *Server) SuggestQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in usecase.SuggestInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := s.GenAI.SuggestQuestions(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ApplicantSummaryHandler handles POST /genai/applicants/{id}/summary.
func (s *Server) ApplicantSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, domain.NewValidationError("id", "min", "must be a positive integer"))
			return
		}
		var in usecase.ApplicantSummaryInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		out, err := s.Applicants.Summarize(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// TranscribeHandler handles POST /transcribe with a multipart "audio" part.
func (s *Server) TranscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := s.Cfg.MaxAudioMB << 20
		if maxBytes <= 0 {
			maxBytes = 25 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

		var audio []byte
		file, _, err := r.FormFile("audio")
		switch {
		case err == nil:
			defer func() { _ = file.Close() }()
			audio, err = io.ReadAll(io.LimitReader(file, maxBytes+1))
			if err != nil {
				writeError(w, r, err)
				return
			}
			if int64(len(audio)) > maxBytes {
				writeError(w, r, &http.MaxBytesError{Limit: maxBytes})
				return
			}
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			// a missing file is only an error once stub mode is off
		default:
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				writeError(w, r, &http.MaxBytesError{Limit: maxBytes})
				return
			}
			writeError(w, r, domain.NewValidationError("audio", "multipart", "malformed multipart body"))
			return
		}

		text, err := s.Transcriber.Transcribe(r.Context(), audio)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

// HealthHandler returns a liveness document for the front end.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		service := s.Cfg.OTELServiceName
		if service == "" {
			service = "readysethire-server"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": service,
			"time":    s.now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
}

// ReadyzHandler runs every configured readiness check.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		ok := true
		for _, c := range s.Checks {
			if err := c.Check(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: c.Name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
