// Package iostate implements the process-wide IOState registry (spec §3,
// §4.8, §6): the latest Message per sensor, a dynamic-variable map read by
// any component, and the fuser/LLM timing marks used for diagnostics. It
// is a Pull-style shared-state Provider: construction is idempotent via
// New, and Reset exists for tests only.
package iostate

import (
	"sync"
	"time"

	"github.com/windlgrass/om1agent/pkg/models"
)

// IOState is a concurrent, process-wide key/value registry. All exported
// methods are safe for concurrent use.
type IOState struct {
	mu       sync.RWMutex
	inputs   map[string]models.Message
	dynamic  map[string]any
	fuseMark timingMark
	llmMark  timingMark
}

type timingMark struct {
	start time.Time
	end   time.Time
}

// New creates an empty IOState. Unlike the Python original's metaclass
// singleton, the Go runtime constructs exactly one IOState at process
// start and passes it explicitly to every component that needs it (spec
// §9's redesign note on replacing global singletons with an explicit
// service container).
func New() *IOState {
	return &IOState{
		inputs:  make(map[string]models.Message),
		dynamic: make(map[string]any),
	}
}

// AddInput records the latest Message observed for a named sensor class.
func (s *IOState) AddInput(name string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[name] = msg
}

// LatestInput returns the most recently recorded Message for a sensor, if
// any.
func (s *IOState) LatestInput(name string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.inputs[name]
	return msg, ok
}

// AddDynamicVariable sets a process-wide variable (e.g. latitude,
// longitude, yaw) readable by any component. Last-writer-wins.
func (s *IOState) AddDynamicVariable(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dynamic[key] = value
}

// GetDynamicVariable returns the last value written for key by any
// goroutine, with a happens-before relationship established by the
// internal mutex.
func (s *IOState) GetDynamicVariable(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.dynamic[key]
	return v, ok
}

// MarkFuseStart records the start timestamp of a fuse operation.
func (s *IOState) MarkFuseStart(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuseMark.start = t
}

// MarkFuseEnd records the end timestamp of a fuse operation.
func (s *IOState) MarkFuseEnd(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuseMark.end = t
}

// FuseDuration returns the duration of the most recently completed fuse.
func (s *IOState) FuseDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fuseMark.start.IsZero() || s.fuseMark.end.IsZero() {
		return 0
	}
	return s.fuseMark.end.Sub(s.fuseMark.start)
}

// MarkLLMStart records the start timestamp of an LLM call.
func (s *IOState) MarkLLMStart(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llmMark.start = t
}

// MarkLLMEnd records the end timestamp of an LLM call.
func (s *IOState) MarkLLMEnd(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llmMark.end = t
}

// LLMDuration returns the duration of the most recently completed LLM call.
func (s *IOState) LLMDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.llmMark.start.IsZero() || s.llmMark.end.IsZero() {
		return 0
	}
	return s.llmMark.end.Sub(s.llmMark.start)
}

// Reset clears all state. For tests only.
func (s *IOState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = make(map[string]models.Message)
	s.dynamic = make(map[string]any)
	s.fuseMark = timingMark{}
	s.llmMark = timingMark{}
}
