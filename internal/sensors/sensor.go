// Package sensors defines the Sensor contract (spec §4.2) and the bounded
// ring-buffer Messages pass through on their way to the Fuser. A Sensor is
// either polling (PollingSource drives Poll on a ticker) or push
// (PushSource exposes a bounded channel fed by an external callback); both
// present the same Listen() stream to the Input Orchestrator, per the
// "standardize on a single source abstraction" redesign note (spec §9).
package sensors

import (
	"context"
	"sync"

	"github.com/windlgrass/om1agent/pkg/models"
)

// RawEvent is an opaque raw sensor event. Concrete sensors type-assert it
// back to their own raw type inside RawToText.
type RawEvent any

// Sensor is the contract every sensor plugin implements.
type Sensor interface {
	// Descriptor is the human-readable label used to delimit this
	// sensor's prompt block, e.g. "VisionInput".
	Descriptor() string

	// Listen returns a channel of raw events. It must close the channel
	// when the source is exhausted or ctx is done.
	Listen(ctx context.Context) <-chan RawEvent

	// RawToText converts one raw event into a Message, enqueuing it into
	// the sensor's buffer. It returns nil if the event doesn't warrant
	// surfacing. May read cross-sensor state via Providers.
	RawToText(ctx context.Context, raw RawEvent) error

	// FormattedLatestBuffer renders the latest Message(s) as a delimited
	// prompt block and atomically empties the buffer. Returns ("", false)
	// when the buffer is empty.
	FormattedLatestBuffer() (string, bool)
}

// Buffer is a bounded, ordered queue of Messages with drop-oldest-on-
// overflow semantics (spec §3). It is safe for concurrent use.
//
// Buffer collapses to "latest" presentation: FormattedLatestBuffer renders
// every currently queued Message as one block and atomically clears the
// queue, which is the sensor's one-shot contract that prevents stale
// inputs from being re-sent (spec §3's SensorBuffer invariant).
type Buffer struct {
	descriptor string
	capacity   int

	mu       sync.Mutex
	messages []models.Message
}

// NewBuffer creates a Buffer bounded to capacity entries (spec's typical
// bound: 50-300). capacity <= 0 defaults to 100.
func NewBuffer(descriptor string, capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 100
	}
	return &Buffer{descriptor: descriptor, capacity: capacity}
}

// Descriptor returns the sensor label used in prompt delimiters.
func (b *Buffer) Descriptor() string {
	return b.descriptor
}

// Push enqueues a Message, dropping the oldest entry if the buffer is at
// capacity.
func (b *Buffer) Push(msg models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) >= b.capacity {
		b.messages = b.messages[1:]
	}
	b.messages = append(b.messages, msg)
}

// Len returns the number of currently buffered messages.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

// FormattedLatestBuffer renders all buffered messages as one delimited
// block ("no block" i.e. ("", false) if empty) and clears the buffer.
func (b *Buffer) FormattedLatestBuffer() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return "", false
	}
	block := renderBlock(b.descriptor, b.messages)
	b.messages = nil
	return block, true
}

func renderBlock(descriptor string, messages []models.Message) string {
	out := "START " + descriptor + "\n"
	for _, m := range messages {
		out += m.Text + "\n"
	}
	out += "END " + descriptor
	return out
}
