package domain

import (
	"fmt"
	"strings"
)

// FieldError is one field-level diagnostic of a rejected request.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError reports caller input that failed the request schema.
// It matches ErrInvalidArgument under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// ConfigurationError reports a missing or unusable setting.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return e.Setting + " missing"
	}
	return fmt.Sprintf("%s: %s", e.Setting, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ModelOutputError reports a model response that was not parseable JSON or
// did not match the declared response schema.
type ModelOutputError struct {
	Pipeline string
	Reason   string
	Err      error
}

func (e *ModelOutputError) Error() string {
	msg := fmt.Sprintf("model output invalid (%s): %s", e.Pipeline, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelOutputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrModelOutput, e.Err}
	}
	return []error{ErrModelOutput}
}
