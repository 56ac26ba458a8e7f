package sensors

import (
	"context"
	"time"
)

// PollFunc is called once per tick by PollingSource; it returns the next
// raw event, or an error if the poll failed. Errors are surfaced on
// Listen's channel wrapped as a RawEvent carrying the error so the
// orchestrator can classify and log it without killing the source.
type PollFunc func(ctx context.Context) (RawEvent, error)

// PollError wraps a poll failure so it flows through the same channel as
// successful events (spec §4.3: "a sensor task that terminates with an
// error ... does not tear down sibling tasks" — here the source itself
// never terminates on a poll error, it just reports and continues).
type PollError struct{ Err error }

// PollingSource is the default Sensor.Listen implementation for sensors
// that yield on a timer, grounded in original_source's
// `inputs/base/loop.py` FuserInput which loops `while True: yield await
// self._poll()`.
type PollingSource struct {
	Interval time.Duration
	Poll     PollFunc
}

// Listen drives Poll on a ticker until ctx is done, emitting each result
// (or PollError) on the returned channel.
func (p *PollingSource) Listen(ctx context.Context) <-chan RawEvent {
	out := make(chan RawEvent)
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ev, err := p.Poll(ctx)
				if err != nil {
					select {
					case out <- PollError{Err: err}:
					case <-ctx.Done():
						return
					}
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// PushSource is the default Sensor.Listen implementation for sensors that
// receive events via an external callback (a background thread, a
// subscription) rather than a timer. Pushed events never block the
// caller: Enqueue drops the oldest queued event when the bound is
// exceeded.
type PushSource struct {
	ch       chan RawEvent
	capacity int
}

// NewPushSource creates a PushSource with the given bounded capacity
// (default 64 if capacity <= 0).
func NewPushSource(capacity int) *PushSource {
	if capacity <= 0 {
		capacity = 64
	}
	return &PushSource{ch: make(chan RawEvent, capacity), capacity: capacity}
}

// Enqueue pushes a raw event without blocking. If the internal channel is
// full, the oldest queued event is dropped to make room — bounded queues
// with drop-oldest are mandatory for push sensors (spec §4.2).
func (p *PushSource) Enqueue(ev RawEvent) {
	select {
	case p.ch <- ev:
		return
	default:
	}
	select {
	case <-p.ch:
	default:
	}
	select {
	case p.ch <- ev:
	default:
	}
}

// Listen returns a channel of pushed raw events that closes when ctx is
// done.
func (p *PushSource) Listen(ctx context.Context) <-chan RawEvent {
	out := make(chan RawEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-p.ch:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
