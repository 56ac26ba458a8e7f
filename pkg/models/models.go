// Package models holds the data types shared across the runtime: sensor
// messages, LLM-chosen actions, and the registration records that tie a
// named action to its interface and connector.
package models

import (
	"context"
	"time"
)

// Message is a single timestamped observation produced by a sensor and
// consumed by the Fuser. The timestamp is wall-clock seconds since the
// Unix epoch as a float (see NewMessage), so buffers can be ordered and
// aged.
type Message struct {
	Timestamp float64
	Text      string
}

// NewMessage stamps text with the current monotonic-ish time (seconds
// since the Unix epoch, fractional). Sensors may also construct Message
// directly when they already have a timestamp (e.g. from a device event).
func NewMessage(text string) Message {
	return Message{Timestamp: float64(time.Now().UnixNano()) / 1e9, Text: text}
}

// Action is the (type, value) pair the LLM Adapter emits for one tool
// call. Type matches a registered AgentAction's LLMLabel; Value is the
// single scalar argument, interpreted by the action's ActionInterface.
type Action struct {
	Type  string
	Value string
}

// FieldKind enumerates the primitive shapes an ActionInterface's input can
// take. It drives both LLM function-schema generation (spec §4.5) and
// dispatcher-side parsing (spec §4.6).
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindInteger FieldKind = "integer"
	KindFloat   FieldKind = "float"
	KindBool    FieldKind = "bool"
	KindEnum    FieldKind = "enum"
	KindList    FieldKind = "list"
)

// ActionInterface is a typed description of one action's single scalar
// argument: its kind, the enumerated values it accepts (if Kind is
// KindEnum), and the docstring shown to the LLM. Input and Output coincide
// for every action in this corpus (pass-through), so only one shape is
// carried.
type ActionInterface struct {
	// Name labels the interface for error messages and docs, e.g. "move".
	Name string

	// Doc is the human-readable description surfaced to the LLM both in
	// the fused prompt and in the generated function schema.
	Doc string

	// Kind is the scalar shape of the single accepted argument.
	Kind FieldKind

	// Enum lists the permissible values when Kind == KindEnum.
	Enum []string

	// ElementKind describes the element type when Kind == KindList.
	ElementKind FieldKind
}

// PromptDescription renders the interface as the one-line block the Fuser
// appends to the action catalog (spec §4.4): the action name, its
// docstring, and — for enum types — the permitted values listed inline.
func (ai ActionInterface) PromptDescription(llmLabel string) string {
	switch ai.Kind {
	case KindEnum:
		return llmLabel + ": " + ai.Doc + " (one of: " + joinEnum(ai.Enum) + ")"
	default:
		return llmLabel + ": " + ai.Doc
	}
}

func joinEnum(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

// Connector performs an Action's side effect. Implementations live under
// internal/connectors; the dispatcher never constructs a typed argument
// itself, it passes the parsed scalar value as a string and lets the
// connector interpret it against its own ActionInterface.
type Connector interface {
	// Connect performs the side effect for one dispatched action value.
	Connect(ctx context.Context, value string) error
}

// AgentAction is the immutable registration record created at startup for
// one configured action: its name, the label the LLM sees, its interface,
// and the connector that performs it.
type AgentAction struct {
	Name              string
	LLMLabel          string
	Interface         ActionInterface
	Connector         Connector
	ExcludeFromPrompt bool
}
