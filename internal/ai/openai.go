package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEngine speaks the chat-completions API through the official
// wire format, so any OpenAI-compatible endpoint can serve as the
// generation backend.
type OpenAIEngine struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIEngine creates an engine for the given credentials. baseURL
// is optional and overrides the default API host; model defaults to
// gpt-4o-mini.
func NewOpenAIEngine(apiKey, baseURL, model string) *OpenAIEngine {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		baseURL = strings.TrimRight(baseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIEngine{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns the engine name
func (e *OpenAIEngine) Name() string {
	return "openai"
}

// ValidateConfig checks the credential is present
func (e *OpenAIEngine) ValidateConfig() error {
	if e.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Generate performs one chat-completion attempt.
func (e *OpenAIEngine) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	instruction := req.Instruction
	if req.Schema != nil {
		instruction += "\n\n" + schemaDirective(req.Schema)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: instruction,
	})
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Sender == "ai" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Text,
		})
	}

	completionReq := openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Schema != nil {
		completionReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := e.client.CreateChatCompletion(ctx, completionReq)
	if err != nil {
		return nil, normalizeOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("engine returned no choices")
	}

	return &GenerateResponse{Text: resp.Choices[0].Message.Content}, nil
}

// schemaDirective renders the schema as a prompt instruction, since the
// json_object response format alone does not name the fields.
func schemaDirective(schema *Schema) string {
	names := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Respond with a single JSON object containing exactly these fields:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %q: %s\n", name, schema.Fields[name])
	}
	return strings.TrimRight(b.String(), "\n")
}

// normalizeOpenAIError maps SDK errors onto UpstreamError so the retry
// classification sees the HTTP status.
func normalizeOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return err
}
