// Package fuser implements the Fuser (spec §4.4): it builds the single
// prompt string handed to the LLM Adapter each tick, from the configured
// system-prompt sections, each sensor's currently formatted buffer, and
// the action catalog. The output is pure with respect to its inputs: two
// calls with identical buffer contents and registered actions produce
// identical prompts.
package fuser

import (
	"strings"
	"time"

	"github.com/windlgrass/om1agent/internal/iostate"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

// ClosingDirective is the fixed final line appended to every prompt.
const ClosingDirective = "What will you do? Actions:"

// SystemPromptSections holds the three configuration-provided prompt
// parts, concatenated in fixed order (spec §4.4): basic context,
// governance laws, examples.
type SystemPromptSections struct {
	Base       string
	Governance string
	Examples   string
}

// NamedSensor pairs a sensor with the name the Fuser iterates sensors in
// declaration order; Go maps don't preserve order, so the Fuser is given
// an explicit ordered slice rather than discovering sensors itself.
type NamedSensor struct {
	Name   string
	Sensor sensors.Sensor
}

// Fuser builds prompts from live sensor buffers and the registered action
// set.
type Fuser struct {
	prompt  SystemPromptSections
	sensors []NamedSensor
	actions []models.AgentAction
	state   *iostate.IOState
	now     func() time.Time
}

// New creates a Fuser. sensorOrder fixes the declaration order sensor
// blocks appear in (spec's "declaration order" requirement); actions is
// the full registered action set, including those excluded from the
// prompt (ExcludeFromPrompt is honored internally).
func New(prompt SystemPromptSections, sensorOrder []NamedSensor, actions []models.AgentAction, state *iostate.IOState) *Fuser {
	return &Fuser{prompt: prompt, sensors: sensorOrder, actions: actions, state: state, now: time.Now}
}

// Build composes the fused prompt. Timestamps are recorded in IOState
// bracketing the operation, per spec §4.4.
func (f *Fuser) Build() string {
	if f.state != nil {
		f.state.MarkFuseStart(f.now())
	}

	var b strings.Builder
	writeNonEmpty(&b, f.prompt.Base)
	writeNonEmpty(&b, f.prompt.Governance)
	writeNonEmpty(&b, f.prompt.Examples)

	for _, ns := range f.sensors {
		block, ok := ns.Sensor.FormattedLatestBuffer()
		if !ok {
			continue
		}
		writeNonEmpty(&b, block)
	}

	for _, a := range f.actions {
		if a.ExcludeFromPrompt {
			continue
		}
		writeNonEmpty(&b, a.Interface.PromptDescription(a.LLMLabel))
	}

	b.WriteString(ClosingDirective)

	if f.state != nil {
		f.state.MarkFuseEnd(f.now())
	}

	return b.String()
}

func writeNonEmpty(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	b.WriteString("\n")
}
