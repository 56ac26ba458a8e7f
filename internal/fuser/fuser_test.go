package fuser

import (
	"context"
	"strings"
	"testing"

	"github.com/windlgrass/om1agent/internal/iostate"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

// stubSensor lets a test control exactly what FormattedLatestBuffer
// returns without wiring a real buffer/listen loop.
type stubSensor struct {
	block string
	ok    bool
}

func (s *stubSensor) Descriptor() string { return "stub" }
func (s *stubSensor) Listen(ctx context.Context) <-chan sensors.RawEvent {
	ch := make(chan sensors.RawEvent)
	close(ch)
	return ch
}
func (s *stubSensor) RawToText(ctx context.Context, raw sensors.RawEvent) error { return nil }
func (s *stubSensor) FormattedLatestBuffer() (string, bool)                    { return s.block, s.ok }

func TestFuseDeterminism(t *testing.T) {
	// Scenario 1 from spec §8: A has "hello", B is empty, C has "world";
	// actions {speak: included, emotion: excluded}.
	a := &stubSensor{block: "START A\nhello\nEND A", ok: true}
	b := &stubSensor{ok: false}
	c := &stubSensor{block: "START C\nworld\nEND C", ok: true}

	actions := []models.AgentAction{
		{
			Name: "speak", LLMLabel: "speak",
			Interface: models.ActionInterface{Doc: "Say something out loud.", Kind: models.KindString},
		},
		{
			Name: "emotion", LLMLabel: "emotion", ExcludeFromPrompt: true,
			Interface: models.ActionInterface{Doc: "Change facial expression.", Kind: models.KindEnum, Enum: []string{"happy", "sad"}},
		},
	}

	state := iostate.New()
	order := []NamedSensor{{Name: "A", Sensor: a}, {Name: "B", Sensor: b}, {Name: "C", Sensor: c}}
	f := New(SystemPromptSections{Base: "base prompt"}, order, actions, state)

	prompt1 := f.Build()

	// Rebuild the sensors fresh with identical content (since
	// FormattedLatestBuffer is one-shot) and confirm determinism.
	a2 := &stubSensor{block: a.block, ok: true}
	c2 := &stubSensor{block: c.block, ok: true}
	order2 := []NamedSensor{{Name: "A", Sensor: a2}, {Name: "B", Sensor: b}, {Name: "C", Sensor: c2}}
	f2 := New(SystemPromptSections{Base: "base prompt"}, order2, actions, state)
	prompt2 := f2.Build()

	if prompt1 != prompt2 {
		t.Fatalf("expected deterministic prompts, got:\n%q\nvs\n%q", prompt1, prompt2)
	}

	if !strings.Contains(prompt1, "hello") {
		t.Error("expected A's block in the prompt")
	}
	if !strings.Contains(prompt1, "world") {
		t.Error("expected C's block in the prompt")
	}
	if strings.Contains(prompt1, "START B") {
		t.Error("expected no block for sensor B (empty buffer)")
	}
	if !strings.Contains(prompt1, "speak") {
		t.Error("expected speak action description in the prompt")
	}
	if strings.Contains(prompt1, "emotion") {
		t.Error("expected emotion action to be excluded from the prompt")
	}
	if !strings.HasSuffix(prompt1, ClosingDirective) {
		t.Error("expected prompt to end with the closing directive")
	}
}

func TestFuseEmptySensorProducesNoEmptyDelimiters(t *testing.T) {
	empty := &stubSensor{ok: false}
	f := New(SystemPromptSections{}, []NamedSensor{{Name: "empty", Sensor: empty}}, nil, nil)
	prompt := f.Build()
	if strings.Contains(prompt, "START") {
		t.Fatalf("expected no delimiters for an empty sensor, got %q", prompt)
	}
}

func TestFuseRecordsTimingMarks(t *testing.T) {
	state := iostate.New()
	f := New(SystemPromptSections{Base: "x"}, nil, nil, state)
	f.Build()
	if state.FuseDuration() < 0 {
		t.Fatal("expected a non-negative fuse duration")
	}
}
