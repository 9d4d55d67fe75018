// Package genai wraps the generation service used to derive todo
// items from chat conversations. All model output is JSON embedded in
// the completion text; decoding is strict and parse failures surface
// as ParseError values, never as panics.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors callers branch on.
var (
	// ErrEmptyResponse indicates the service returned no completion
	// text. At the extractor layer this is an error condition, not a
	// "zero todos" outcome.
	ErrEmptyResponse = errors.New("genai: empty response")

	// ErrNoCredential indicates no API key is configured.
	ErrNoCredential = errors.New("genai: api key is not configured")
)

// Request is a single completion call.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Generator performs one completion call and returns the raw
// completion text. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ParseError wraps a completion that was not valid JSON or was
// missing required fields.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("genai: parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsBillingError reports whether err looks like an OpenAI billing or
// quota failure. Such errors are logged distinctly but handled the
// same as any other service failure.
func IsBillingError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "billing_not_active") ||
		strings.Contains(msg, "insufficient_quota") ||
		strings.Contains(msg, "rate_limit") {
		return true
	}
	// Anchor the HTTP code on the status phrasing so request IDs or
	// ports containing the digits do not match.
	return strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "status code: 429") ||
		strings.Contains(msg, "429 Too Many Requests")
}
