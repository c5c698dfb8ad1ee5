// Package ai provides the canonical client for the external generation
// engine: one request shape per feature, bounded retry with exponential
// backoff on transient failures, and a feature-appropriate fallback
// whenever the engine cannot produce usable output.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Message is one prior turn passed to the engine as context.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Schema constrains the engine to a structured JSON object. Fields maps
// field names to plain-language descriptions of their content.
type Schema struct {
	Fields map[string]string
}

// GenerateRequest is a single structured request to the engine.
type GenerateRequest struct {
	Instruction string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	Schema      *Schema
}

// GenerateResponse carries the raw reply text. In structured mode the
// text is the JSON document to be parsed by the client.
type GenerateResponse struct {
	Text string
}

// Engine is a generation backend. Implementations translate the request
// into their wire format and normalize failures into *UpstreamError
// where an HTTP status is known.
type Engine interface {
	// Name returns the engine name
	Name() string

	// Generate performs a single generation attempt
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// ValidateConfig reports whether the engine has the credentials and
	// endpoint it needs to attempt a call at all
	ValidateConfig() error
}

// ErrMissingAPIKey indicates the engine has no credential configured.
var ErrMissingAPIKey = errors.New("api key is not configured")

// UpstreamError is a failure status returned by the engine endpoint.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("engine returned status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the status is worth retrying: rate limits
// and server-side errors are, caller errors are not.
func (e *UpstreamError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsTransient classifies an attempt failure as retryable. Rate-limit
// and server-error statuses, connection-level faults, and timeouts are
// transient; every other failure aborts the retry loop.
func IsTransient(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
