package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/windlgrass/om1agent/internal/llmadapter"
)

// OpenAIConfig configures an OpenAIBackend. BaseURL lets this same backend
// serve any OpenAI-compatible endpoint (e.g. a NearAI-style gateway), per
// spec §6's cortex_llm.config.base_url override.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// OpenAIBackend implements llmadapter.Backend against the Chat Completions
// function-calling API.
type OpenAIBackend struct {
	client       *openai.Client
	defaultModel string
}

func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(clientCfg), defaultModel: model}, nil
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Complete(ctx context.Context, req llmadapter.CompletionRequest) (llmadapter.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = b.defaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Tools:    convertOpenAITools(req.Tools),
	}

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return llmadapter.CompletionResponse{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llmadapter.CompletionResponse{}, nil
	}

	choice := resp.Choices[0].Message
	out := llmadapter.CompletionResponse{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, llmadapter.ToolCall{Name: tc.Function.Name, Arguments: args})
	}
	return out, nil
}

func convertOpenAITools(tools []llmadapter.ToolSchema) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{t.Parameter.Name: toJSONSchemaProperty(t.Parameter)},
					"required":   []string{t.Parameter.Name},
				},
			},
		})
	}
	return result
}
