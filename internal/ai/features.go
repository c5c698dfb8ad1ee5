package ai

import (
	"strings"
	"time"
)

// Feature keys. Each maps a product module to one row of the feature
// table below.
const (
	FeatureChat    = "chat"
	FeatureAdapt   = "adapt"
	FeatureExplain = "explain"
)

// FeatureSpec is one row of the declarative feature table: generation
// parameters, the per-call timeout, the optional structured-output
// schema, and the fallback used when the engine cannot deliver. The
// fallback receives the caller's input text and must produce a result
// indistinguishable in shape from a successful one.
type FeatureSpec struct {
	Key         string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Schema      *Schema
	Fallback    func(input string) Result
}

const chatFallbackText = "I'm here with you. Can you tell me a bit more about what's going on?"

const explainFallbackBody = "I couldn't put together a full explanation right now. " +
	"Take it one piece at a time, and try asking again in a moment."

// Features is the per-feature configuration table. One canonical client
// reads it; there are no per-feature client implementations.
var Features = map[string]FeatureSpec{
	FeatureChat: {
		Key:         FeatureChat,
		Temperature: 0.8,
		MaxTokens:   2048,
		Timeout:     10 * time.Second,
		Fallback: func(input string) Result {
			return Result{Text: chatFallbackText, Degraded: true}
		},
	},
	FeatureAdapt: {
		Key:         FeatureAdapt,
		Temperature: 0.5,
		MaxTokens:   4096,
		Timeout:     20 * time.Second,
		Fallback: func(input string) Result {
			// The original text untouched beats no text at all.
			return Result{Text: input, Degraded: true}
		},
	},
	FeatureExplain: {
		Key:         FeatureExplain,
		Temperature: 0.7,
		MaxTokens:   2048,
		Timeout:     30 * time.Second,
		Schema: &Schema{
			Fields: map[string]string{
				"title": "A short, clear title for the explanation",
				"body":  "The explanation itself, in plain language",
			},
		},
		Fallback: func(input string) Result {
			return Result{
				Text: explainFallbackBody,
				Fields: map[string]string{
					"title": TruncateTitle(input),
					"body":  explainFallbackBody,
				},
				Degraded: true,
			}
		},
	},
}

// TruncateTitle derives a short title from free text.
func TruncateTitle(input string) string {
	title := strings.TrimSpace(input)
	if title == "" {
		return "Explanation"
	}
	const max = 80
	if runes := []rune(title); len(runes) > max {
		title = strings.TrimSpace(string(runes[:max])) + "…"
	}
	return title
}
