// Package llmadapter implements the LLM Adapter (spec §4.5): it turns the
// fused prompt into a function-call request against a pluggable backend,
// and turns the backend's response into a list of Actions. Three response
// shapes are tolerated without ever propagating as a fault: one or more
// tool calls, content with no tool calls ("no action"), and an error or
// timeout ("no response").
package llmadapter

import (
	"context"
	"time"
)

// ToolParameter describes one JSON-schema-shaped function parameter,
// built from an ActionInterface per the spec §4.5 type-mapping table.
type ToolParameter struct {
	Name        string
	Type        string // "string" | "integer" | "number" | "boolean" | "array"
	Description string
	Enum        []string
	Items       *ToolParameter // set when Type == "array"
	Nullable    bool
}

// ToolSchema is one registered action's function-call schema.
type ToolSchema struct {
	Name        string
	Description string
	Parameter   ToolParameter
}

// CompletionMessage is one turn of conversation history passed to a
// Backend.
type CompletionMessage struct {
	Role    string
	Content string
}

// ToolCall is a backend's request to invoke one registered action.
type ToolCall struct {
	Name string
	// Arguments holds the decoded JSON arguments for the call; the
	// adapter extracts the single expected scalar via the matching
	// ToolSchema.Parameter.Name.
	Arguments map[string]any
}

// CompletionRequest carries everything a Backend needs to produce a
// response: the fused prompt, conversation history, and the tool catalog.
type CompletionRequest struct {
	Prompt    string
	History   []CompletionMessage
	Tools     []ToolSchema
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// CompletionResponse is a backend's parsed reply: either free-form text
// (no tool calls were made), or a list of requested tool calls. Both may
// be empty ("no response"/"no action").
type CompletionResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// Backend is the pluggable interface each LLM vendor integration
// implements (spec's "Particular LLM vendor wire formats" boundary, §1).
type Backend interface {
	// Name identifies the backend for logging and default-model lookup.
	Name() string

	// Complete issues one request and returns the parsed response. It
	// must honor ctx cancellation/timeout and never panic on malformed
	// backend output — malformed output becomes an error return, which
	// the Adapter converts into "no response" rather than propagating a
	// fault.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
