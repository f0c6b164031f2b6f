// Package app assembles the HTTP router and process-level wiring.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/config"
)

// openPaths skip rate limiting and bearer auth.
var openPaths = []string{"/healthz", "/readyz", "/metrics"}

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	// the limiter runs before auth so failed Argon2 checks are rate limited too
	if cfg.RateLimitPerMin > 0 {
		r.Use(exceptPaths(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute), openPaths...))
	}
	if cfg.RequireAuth {
		r.Use(httpserver.BearerAuth(cfg.AuthTokenHash, openPaths...))
	}

	r.Get("/health", srv.HealthHandler())
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(wr chi.Router) {
		if cfg.RequestTimeout > 0 {
			wr.Use(httpserver.TimeoutMiddleware(cfg.RequestTimeout))
		}
		wr.Route("/genai", func(gr chi.Router) {
			gr.Use(httpserver.BodyLimit(cfg.MaxBodyBytes))
			gr.Post("/generate-questions", srv.GenerateQuestionsHandler())
			gr.Post("/summarize-applicant", srv.SummarizeApplicantHandler())
			gr.Post("/suggest-questions", srv.SuggestQuestionsHandler())
			gr.Post("/applicants/{id}/summary", srv.ApplicantSummaryHandler())
		})
		wr.Post("/transcribe", srv.TranscribeHandler())
	})

	return httpserver.SecurityHeaders(r)
}

// exceptPaths applies mw to every request except those for the given paths.
func exceptPaths(mw func(http.Handler) http.Handler, paths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range paths {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
