package llmadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/windlgrass/om1agent/internal/iostate"
	"github.com/windlgrass/om1agent/internal/stopsignal"
	"github.com/windlgrass/om1agent/pkg/models"
)

// DefaultTimeout is used when a CompletionRequest doesn't specify one
// (spec §6: cortex_llm.config.timeout default 60s).
const DefaultTimeout = 60 * time.Second

// BeforeHook runs before a request is sent to the backend and may
// transform the outgoing prompt or history. AfterHook runs after a
// response comes back (or fails) and may observe, but not alter, the
// outcome. These replace the teacher's decorator-stacked method wrappers
// (AvatarLLMState.trigger_thinking, LLMHistoryManager.update_history) with
// explicit middleware composition, per spec §9's redesign note.
type BeforeHook func(ctx context.Context, req *CompletionRequest)
type AfterHook func(ctx context.Context, resp CompletionResponse, err error)

// Adapter wires a Backend to the runtime: it keeps an append-only
// conversation history, generates tool schemas from the registered action
// set, enforces a per-request timeout bound to the StopSignal, and parses
// responses into Actions without ever letting a parse failure propagate
// as a fault (spec §4.5).
type Adapter struct {
	backend Backend
	stop    *stopsignal.StopSignal
	state   *iostate.IOState
	logger  *slog.Logger

	history []CompletionMessage
	before  []BeforeHook
	after   []AfterHook

	timeout time.Duration
	model   string
}

// New creates an Adapter. Only the LLM Adapter mutates the returned
// Adapter's conversation history (spec §5, "Shared resources").
func New(backend Backend, stop *stopsignal.StopSignal, state *iostate.IOState, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{backend: backend, stop: stop, state: state, logger: logger, timeout: DefaultTimeout}
}

// SetTimeout overrides the per-request timeout.
func (a *Adapter) SetTimeout(d time.Duration) {
	if d > 0 {
		a.timeout = d
	}
}

// SetModel sets the model identifier forwarded to the backend.
func (a *Adapter) SetModel(model string) {
	a.model = model
}

// Use registers before/after middleware hooks, in call order.
func (a *Adapter) Use(before BeforeHook, after AfterHook) {
	if before != nil {
		a.before = append(a.before, before)
	}
	if after != nil {
		a.after = append(a.after, after)
	}
}

// Ask sends the fused prompt plus the action catalog to the backend and
// returns the resulting Actions. It never returns an error for backend
// failures or timeouts — those are logged and yield an empty action list
// ("no response"), matching spec §4.5's tolerance contract. With no
// backend configured it logs the problem and returns nil.
func (a *Adapter) Ask(ctx context.Context, prompt string, actions []models.AgentAction) []models.Action {
	if a.backend == nil {
		a.logger.Error("llm adapter: no backend configured")
		return nil
	}

	req := CompletionRequest{
		Prompt:  prompt,
		History: append([]CompletionMessage(nil), a.history...),
		Tools:   BuildFunctionSchemas(actions),
		Model:   a.model,
		Timeout: a.timeout,
	}
	for _, hook := range a.before {
		hook(ctx, &req)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	callCtx, cancelStop := a.stopBoundContext(callCtx)
	defer cancelStop()

	if a.state != nil {
		a.state.MarkLLMStart(time.Now())
	}
	resp, err := a.backend.Complete(callCtx, req)
	if a.state != nil {
		a.state.MarkLLMEnd(time.Now())
	}

	for _, hook := range a.after {
		hook(ctx, resp, err)
	}

	if err != nil {
		a.logger.Error("llm adapter: backend call failed", "backend", a.backend.Name(), "error", err)
		return nil
	}

	a.history = append(a.history,
		CompletionMessage{Role: "user", Content: prompt},
		CompletionMessage{Role: "assistant", Content: resp.Text},
	)

	return parseActions(resp, req.Tools, a.logger)
}

// stopBoundContext derives a context cancelled either when the parent
// cancels/times out or when the runtime's StopSignal fires mid-call
// (spec §4.5's cancellation requirement).
func (a *Adapter) stopBoundContext(parent context.Context) (context.Context, context.CancelFunc) {
	if a.stop == nil {
		return context.WithCancel(parent)
	}
	return a.stop.Context(parent)
}

// parseActions converts a CompletionResponse's tool calls into Actions.
// Case (1): one or more tool calls -> one Action each, using the
// registered parameter name to extract the scalar value. Case (2):
// content but no tool calls -> empty list. Case (3) is handled by the
// caller before parseActions is ever reached (backend error -> "no
// response"). Parsing errors on an individual tool call are logged and
// that call is dropped; they never abort the whole batch.
func parseActions(resp CompletionResponse, tools []ToolSchema, logger *slog.Logger) []models.Action {
	if len(resp.ToolCalls) == 0 {
		return nil
	}
	schemaByName := make(map[string]ToolSchema, len(tools))
	for _, t := range tools {
		schemaByName[t.Name] = t
	}

	actions := make([]models.Action, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		schema, ok := schemaByName[tc.Name]
		if !ok {
			logger.Warn("llm adapter: tool call for unregistered action", "name", tc.Name)
			continue
		}
		raw, ok := tc.Arguments[schema.Parameter.Name]
		if !ok {
			// Fall back to the first (and only expected) argument value
			// when the backend used a different key name.
			for _, v := range tc.Arguments {
				raw = v
				ok = true
				break
			}
		}
		if !ok {
			logger.Warn("llm adapter: tool call missing its single argument", "name", tc.Name)
			continue
		}
		actions = append(actions, models.Action{Type: tc.Name, Value: stringifyArg(raw)})
	}
	return actions
}

func stringifyArg(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return trimFloat(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
