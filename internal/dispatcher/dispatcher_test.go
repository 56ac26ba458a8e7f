package dispatcher

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/windlgrass/om1agent/internal/stopsignal"
	"github.com/windlgrass/om1agent/pkg/models"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type recordingConnector struct {
	mu         sync.Mutex
	inFlight   int32
	maxInFlight int32
	calls      []string
	delay      time.Duration
}

func (c *recordingConnector) Connect(ctx context.Context, value string) error {
	n := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)

	c.mu.Lock()
	if n > c.maxInFlight {
		c.maxInFlight = n
	}
	c.mu.Unlock()

	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	c.calls = append(c.calls, value)
	c.mu.Unlock()
	return nil
}

func TestConnectorSingleFlight(t *testing.T) {
	// Scenario 4 from spec §8: two actions for the same connector in one
	// tick; the second begins only after the first returns.
	conn := &recordingConnector{delay: 50 * time.Millisecond}
	d := New(stopsignal.New(), testLogger())
	d.Register("speak", models.ActionInterface{Kind: models.KindString}, conn)

	d.Dispatch(models.Action{Type: "speak", Value: "hello"})
	d.Dispatch(models.Action{Type: "speak", Value: "world"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn.mu.Lock()
		n := len(conn.calls)
		conn.mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.calls) != 2 {
		t.Fatalf("expected both dispatches to complete, got %v", conn.calls)
	}
	if conn.calls[0] != "hello" || conn.calls[1] != "world" {
		t.Fatalf("expected arrival-order execution, got %v", conn.calls)
	}
	if conn.maxInFlight != 1 {
		t.Fatalf("expected at most one Connect in flight, saw %d", conn.maxInFlight)
	}
}

func TestUnknownActionTypeIsDroppedNotFatal(t *testing.T) {
	conn := &recordingConnector{}
	d := New(stopsignal.New(), testLogger())
	d.Register("speak", models.ActionInterface{Kind: models.KindString}, conn)

	d.Dispatch(models.Action{Type: "unregistered", Value: "noop"})

	time.Sleep(50 * time.Millisecond)
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.calls) != 0 {
		t.Fatalf("expected no calls for an unregistered connector, got %v", conn.calls)
	}
}

func TestQueueDropsOldestPastCapacity(t *testing.T) {
	conn := &recordingConnector{delay: 200 * time.Millisecond}
	d := New(stopsignal.New(), testLogger())
	d.SetQueueCapacity(1)
	d.Register("speak", models.ActionInterface{Kind: models.KindString}, conn)

	// First dispatch starts executing immediately (queue drains it right
	// away); the next three land in a capacity-1 queue, so only the
	// latest of those three should survive once the first call returns.
	d.Dispatch(models.Action{Type: "speak", Value: "first"})
	time.Sleep(20 * time.Millisecond)
	d.Dispatch(models.Action{Type: "speak", Value: "dropped-1"})
	d.Dispatch(models.Action{Type: "speak", Value: "dropped-2"})
	d.Dispatch(models.Action{Type: "speak", Value: "kept"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn.mu.Lock()
		n := len(conn.calls)
		conn.mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.calls) != 2 {
		t.Fatalf("expected exactly 2 calls (first + last survivor), got %v", conn.calls)
	}
	if conn.calls[1] != "kept" {
		t.Fatalf("expected the most recent queued value to survive, got %v", conn.calls)
	}
}

func TestConnectorPanicIsIsolated(t *testing.T) {
	d := New(stopsignal.New(), testLogger())
	d.Register("panicky", models.ActionInterface{Kind: models.KindString}, connectFunc(func(ctx context.Context, value string) error {
		panic("boom")
	}))
	d.Register("speak", models.ActionInterface{Kind: models.KindString}, &recordingConnector{})

	d.Dispatch(models.Action{Type: "panicky", Value: "x"})
	time.Sleep(50 * time.Millisecond)

	conn := &recordingConnector{}
	d.Register("speak", models.ActionInterface{Kind: models.KindString}, conn)
	d.Dispatch(models.Action{Type: "speak", Value: "still works"})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		conn.mu.Lock()
		n := len(conn.calls)
		conn.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected sibling connector to keep working after a panicking connector")
}

type connectFunc func(ctx context.Context, value string) error

func (f connectFunc) Connect(ctx context.Context, value string) error { return f(ctx, value) }

func TestDispatchDropsValueOutsideDeclaredEnum(t *testing.T) {
	// Scenario 2 from spec §8: an LLM-returned value outside the action's
	// declared Enum must never reach the connector.
	conn := &recordingConnector{}
	d := New(stopsignal.New(), testLogger())
	d.Register("emotion", models.ActionInterface{Kind: models.KindEnum, Enum: []string{"happy", "sad"}}, conn)

	d.Dispatch(models.Action{Type: "emotion", Value: "grumpy"})
	d.Dispatch(models.Action{Type: "emotion", Value: "happy"})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		conn.mu.Lock()
		n := len(conn.calls)
		conn.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.calls) != 1 || conn.calls[0] != "happy" {
		t.Fatalf("expected only the valid enum member to reach the connector, got %v", conn.calls)
	}
}
