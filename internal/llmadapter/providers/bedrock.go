package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/document"

	"github.com/windlgrass/om1agent/internal/llmadapter"
)

// BedrockConfig configures a BedrockBackend. Region follows the AWS SDK's
// usual resolution chain (env, shared config) when left empty.
type BedrockConfig struct {
	Region       string
	DefaultModel string
}

// BedrockBackend implements llmadapter.Backend against the Bedrock Runtime
// Converse API, which gives tool calling a vendor-neutral shape across the
// models Bedrock hosts (Claude, Llama, Titan, ...).
type BedrockBackend struct {
	client       *bedrockruntime.Client
	defaultModel string
}

func NewBedrockBackend(ctx context.Context, cfg BedrockConfig) (*BedrockBackend, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	return &BedrockBackend{client: bedrockruntime.NewFromConfig(awsCfg), defaultModel: model}, nil
}

func (b *BedrockBackend) Name() string { return "bedrock" }

func (b *BedrockBackend) Complete(ctx context.Context, req llmadapter.CompletionRequest) (llmadapter.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = b.defaultModel
	}

	messages := make([]types.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		role := types.ConversationRoleUser
		if m.Role == "assistant" {
			role = types.ConversationRoleAssistant
		}
		messages = append(messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}
	messages = append(messages, types.Message{
		Role:    types.ConversationRoleUser,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Prompt}},
	})

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(model),
		Messages: messages,
	}
	if len(req.Tools) > 0 {
		input.ToolConfig = &types.ToolConfiguration{Tools: convertBedrockTools(req.Tools)}
	}

	out, err := b.client.Converse(ctx, input)
	if err != nil {
		return llmadapter.CompletionResponse{}, fmt.Errorf("bedrock: %w", err)
	}

	msgOut, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return llmadapter.CompletionResponse{}, nil
	}

	var resp llmadapter.CompletionResponse
	for _, block := range msgOut.Value.Content {
		switch v := block.(type) {
		case *types.ContentBlockMemberText:
			resp.Text += v.Value
		case *types.ContentBlockMemberToolUse:
			args, _ := v.Value.Input.(document.Interface).UnmarshalSmithyDocument()
			argMap, _ := args.(map[string]any)
			resp.ToolCalls = append(resp.ToolCalls, llmadapter.ToolCall{Name: aws.ToString(v.Value.Name), Arguments: argMap})
		}
	}
	return resp, nil
}

func convertBedrockTools(tools []llmadapter.ToolSchema) []types.Tool {
	result := make([]types.Tool, 0, len(tools))
	for _, t := range tools {
		schema := map[string]any{
			"type":       "object",
			"properties": map[string]any{t.Parameter.Name: toJSONSchemaProperty(t.Parameter)},
			"required":   []string{t.Parameter.Name},
		}
		result = append(result, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(t.Name),
				Description: aws.String(t.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
			},
		})
	}
	return result
}
