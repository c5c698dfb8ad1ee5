package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Result is what a generation produces. It is always usable: when the
// engine cannot deliver, the feature's fallback fills the same fields
// and Degraded is set. Fields is populated only for schema features.
type Result struct {
	Text     string
	Fields   map[string]string
	Degraded bool
}

// Client is the canonical AI client. It owns retries and fallbacks; it
// persists nothing and never returns an error to its caller.
type Client struct {
	engine Engine
	retry  RetryPolicy
	logger *logrus.Entry
}

// NewClient creates a client around the given engine with the default
// retry policy.
func NewClient(engine Engine) *Client {
	return NewClientWithRetry(engine, DefaultRetryPolicy())
}

// NewClientWithRetry creates a client with an explicit retry policy.
func NewClientWithRetry(engine Engine, retry RetryPolicy) *Client {
	return &Client{
		engine: engine,
		retry:  retry,
		logger: logrus.WithField("component", "ai"),
	}
}

// Generate sends the composed instruction and conversation content to
// the engine for one feature. Transient failures are retried with
// exponential backoff, each attempt bounded by the feature's timeout;
// everything else degrades to the feature fallback. The fallback input
// is the most recent user message.
func (c *Client) Generate(ctx context.Context, feature FeatureSpec, instruction string, messages []Message) Result {
	input := lastUserText(messages)
	log := c.logger.WithFields(logrus.Fields{
		"feature": feature.Key,
		"engine":  c.engine.Name(),
	})

	if err := c.engine.ValidateConfig(); err != nil {
		log.WithError(err).Warn("Engine is not configured, returning fallback")
		return feature.Fallback(input)
	}

	req := GenerateRequest{
		Instruction: instruction,
		Messages:    messages,
		Temperature: feature.Temperature,
		MaxTokens:   feature.MaxTokens,
		Schema:      feature.Schema,
	}

	// The timeout bounds each outbound call, not the whole retry loop:
	// a hung attempt is cut off and retried, and the backoff schedule
	// cannot starve later attempts of their deadline.
	var resp *GenerateResponse
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, feature.Timeout)
		defer cancel()

		r, genErr := c.engine.Generate(attemptCtx, req)
		if genErr != nil {
			return genErr
		}
		resp = r
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Generation failed, returning fallback")
		return feature.Fallback(input)
	}

	text := strings.TrimSpace(resp.Text)

	if feature.Schema != nil {
		fields, parseErr := parseStructured(text, feature.Schema)
		if parseErr != nil {
			log.WithError(parseErr).Warn("Structured response was unusable, returning fallback")
			return feature.Fallback(input)
		}
		return Result{Text: text, Fields: fields}
	}

	return Result{Text: text}
}

func lastUserText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == "user" {
			return messages[i].Text
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Text
	}
	return ""
}

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\n?(.*?)\n?```")

// parseStructured decodes the reply as the schema's JSON object, after
// stripping a markdown code fence if the model wrapped its output in
// one. Every schema field must be present as a string.
func parseStructured(text string, schema *Schema) (map[string]string, error) {
	if match := codeFencePattern.FindStringSubmatch(text); match != nil {
		text = match[1]
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}

	fields := make(map[string]string, len(schema.Fields))
	for name := range schema.Fields {
		value, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("response is missing field %q", name)
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("field %q is not a string: %w", name, err)
		}
		fields[name] = strings.TrimSpace(s)
	}

	return fields, nil
}
