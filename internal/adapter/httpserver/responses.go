// Package httpserver contains the HTTP handlers and middleware of the GenAI
// service. Handlers decode JSON, call a usecase service and render either the
// result or a single `{ "error": { code, message, details } }` envelope.
package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/domain"
)

// Error codes of the envelope.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConfig       = "config_error"
	CodeGenAI        = "genai_error"
	CodeUpstream     = "upstream_error"
	CodeTooLarge     = "payload_too_large"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto the status code and envelope. Messages of 5xx
// responses are fixed strings; the cause only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	lg := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("request failed", slog.String("code", body.Code), slog.Any("error", err))
	} else {
		lg.Info("request rejected", slog.String("code", body.Code), slog.Any("error", err))
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

func classify(err error) (int, apiError) {
	var (
		ve       *domain.ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, apiError{Code: CodeTooLarge, Message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)}
	case errors.As(err, &ve):
		return http.StatusBadRequest, apiError{Code: CodeBadRequest, Message: "Validation failed", Details: ve.Fields}
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, apiError{Code: CodeBadRequest, Message: "Validation failed"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, apiError{Code: CodeUnauthorized, Message: "Missing or invalid Authorization header"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, apiError{Code: CodeNotFound, Message: "Resource not found"}
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, apiError{Code: CodeConfig, Message: "Service is not configured"}
	case errors.Is(err, domain.ErrModelOutput):
		return http.StatusInternalServerError, apiError{Code: CodeGenAI, Message: "Model returned an invalid response"}
	case errors.Is(err, domain.ErrModelInvocation):
		return http.StatusInternalServerError, apiError{Code: CodeGenAI, Message: "GenAI request failed"}
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, apiError{Code: CodeUpstream, Message: "Upstream service failed"}
	default:
		return http.StatusInternalServerError, apiError{Code: CodeGenAI, Message: "GenAI request failed"}
	}
}

// decodeJSON reads one JSON value from the body into v. Syntax and type
// errors become a ValidationError on the "body" field.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "required", "request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(typeErr.Field, "type", "must be of type "+typeErr.Type.String())
		}
		return domain.NewValidationError("body", "json", "malformed JSON")
	}
	if dec.More() {
		return domain.NewValidationError("body", "json", "trailing data after JSON value")
	}
	return nil
}
