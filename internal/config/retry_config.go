package config

import (
	"time"
)

// RetryConfig bounds how often a failed model call is retried.
type RetryConfig struct {
	// MaxRetries is the number of extra attempts after the first call.
	MaxRetries int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
	// Timeout bounds a single invocation including its retries.
	Timeout time.Duration
}

// GetRetryConfig returns the retry configuration for model calls.
// In test environments delays are shortened for fast test execution.
func (c Config) GetRetryConfig() RetryConfig {
	rc := RetryConfig{
		MaxRetries:   c.LLMMaxRetries,
		InitialDelay: c.LLMBackoffInitial,
		MaxDelay:     c.LLMBackoffMax,
		Timeout:      c.LLMTimeout,
	}
	if c.IsTest() {
		rc.InitialDelay = 10 * time.Millisecond
		rc.MaxDelay = 50 * time.Millisecond
	}
	return rc
}
