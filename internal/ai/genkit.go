package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const generatePath = "/api/generate"

// GenkitEngine speaks the flow-engine wire format: a single POST with
// the system instruction, the conversation content, and an optional
// structured-output schema directive.
type GenkitEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGenkitEngine creates an engine for the flow endpoint at baseURL,
// defaulting to the local flow server. No client-side timeout is set
// here; every call is bounded by the per-feature context deadline.
func NewGenkitEngine(baseURL, apiKey string) *GenkitEngine {
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}
	return &GenkitEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// Name returns the engine name
func (e *GenkitEngine) Name() string {
	return "genkit"
}

// ValidateConfig checks the endpoint and credential are present
func (e *GenkitEngine) ValidateConfig() error {
	if e.baseURL == "" {
		return errors.New("engine base URL is not configured")
	}
	if e.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

type genkitConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type genkitRequest struct {
	SystemInstruction string            `json:"systemInstruction"`
	Content           []Message         `json:"content"`
	Config            genkitConfig      `json:"config"`
	OutputSchema      map[string]string `json:"outputSchema,omitempty"`
}

type genkitResponse struct {
	Result struct {
		Text string `json:"text"`
	} `json:"result"`
	Error string `json:"error,omitempty"`
}

// Generate performs one generation attempt against the flow endpoint.
func (e *GenkitEngine) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	payload := genkitRequest{
		SystemInstruction: req.Instruction,
		Content:           req.Messages,
		Config: genkitConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.Schema != nil {
		payload.OutputSchema = req.Schema.Fields
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var parsed genkitResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("engine error: %s", parsed.Error)
	}
	if parsed.Result.Text == "" {
		return nil, errors.New("engine returned empty response")
	}

	return &GenerateResponse{Text: parsed.Result.Text}, nil
}
