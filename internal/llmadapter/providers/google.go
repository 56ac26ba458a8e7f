package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/windlgrass/om1agent/internal/llmadapter"
)

// GoogleConfig configures a GoogleBackend against the Gemini API.
type GoogleConfig struct {
	APIKey       string
	DefaultModel string
}

// GoogleBackend implements llmadapter.Backend against Gemini's
// GenerateContent function-calling surface.
type GoogleBackend struct {
	client       *genai.Client
	defaultModel string
}

func NewGoogleBackend(ctx context.Context, cfg GoogleConfig) (*GoogleBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: API key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("google: new client: %w", err)
	}
	return &GoogleBackend{client: client, defaultModel: model}, nil
}

func (b *GoogleBackend) Name() string { return "google" }

func (b *GoogleBackend) Complete(ctx context.Context, req llmadapter.CompletionRequest) (llmadapter.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = b.defaultModel
	}

	var contents []*genai.Content
	for _, m := range req.History {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if len(req.Tools) > 0 {
		cfg = &genai.GenerateContentConfig{Tools: []*genai.Tool{{FunctionDeclarations: convertGoogleTools(req.Tools)}}}
	}

	resp, err := b.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return llmadapter.CompletionResponse{}, fmt.Errorf("google: %w", err)
	}

	var out llmadapter.CompletionResponse
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				out.Text += part.Text
			}
			if part.FunctionCall != nil {
				out.ToolCalls = append(out.ToolCalls, llmadapter.ToolCall{
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				})
			}
		}
	}
	return out, nil
}

func convertGoogleTools(tools []llmadapter.ToolSchema) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		result = append(result, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{t.Parameter.Name: toGenaiSchema(t.Parameter)},
				Required:   []string{t.Parameter.Name},
			},
		})
	}
	return result
}

func toGenaiSchema(p llmadapter.ToolParameter) *genai.Schema {
	s := &genai.Schema{Description: p.Description}
	switch p.Type {
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
		if p.Items != nil {
			s.Items = toGenaiSchema(*p.Items)
		}
	default:
		s.Type = genai.TypeString
	}
	if len(p.Enum) > 0 {
		s.Enum = p.Enum
	}
	return s
}
