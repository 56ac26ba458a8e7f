// Package providers implements concrete llmadapter.Backend integrations for
// each LLM vendor wired into this module's domain stack (spec's "particular
// LLM vendor wire formats" boundary, §1). Each backend owns exactly one
// vendor SDK and converts that vendor's shapes to and from
// llmadapter.CompletionRequest/Response; none of them know about Actions,
// Sensors, or the fuser.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/windlgrass/om1agent/internal/llmadapter"
)

// AnthropicConfig configures an AnthropicBackend.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// AnthropicBackend implements llmadapter.Backend against the Claude Messages
// API, grounded on the teacher's AnthropicProvider (non-streaming path:
// this module collects one complete response per tick rather than
// streaming tokens, since the fuser already produced the whole prompt).
type AnthropicBackend struct {
	client       anthropic.Client
	defaultModel string
}

// NewAnthropicBackend builds a Backend from config. An empty APIKey is a
// configuration error the caller should classify as errtax.ConfigError.
func NewAnthropicBackend(cfg AnthropicConfig) (*AnthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicBackend{client: anthropic.NewClient(opts...), defaultModel: model}, nil
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

func (b *AnthropicBackend) Complete(ctx context.Context, req llmadapter.CompletionRequest) (llmadapter.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = b.defaultModel
	}

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return llmadapter.CompletionResponse{}, fmt.Errorf("anthropic: convert tools: %w", err)
		}
		params.Tools = tools
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return llmadapter.CompletionResponse{}, fmt.Errorf("anthropic: %w", err)
	}

	var resp llmadapter.CompletionResponse
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Text += variant.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal(variant.Input, &args); err != nil {
				continue
			}
			resp.ToolCalls = append(resp.ToolCalls, llmadapter.ToolCall{Name: variant.Name, Arguments: args})
		}
	}
	return resp, nil
}

func convertTools(tools []llmadapter.ToolSchema) ([]anthropic.ToolUnionParam, error) {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Properties: map[string]any{t.Parameter.Name: toJSONSchemaProperty(t.Parameter)},
			Required:   []string{t.Parameter.Name},
		}
		toolParam := anthropic.ToolUnionParamOfTool(schema, t.Name)
		toolParam.OfTool.Description = anthropic.String(t.Description)
		result = append(result, toolParam)
	}
	return result, nil
}

func toJSONSchemaProperty(p llmadapter.ToolParameter) map[string]any {
	prop := map[string]any{"type": p.Type, "description": p.Description}
	if len(p.Enum) > 0 {
		prop["enum"] = p.Enum
	}
	if p.Type == "array" && p.Items != nil {
		prop["items"] = toJSONSchemaProperty(*p.Items)
	}
	return prop
}
