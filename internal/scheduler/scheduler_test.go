package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/windlgrass/om1agent/internal/stopsignal"
)

type countingTask struct {
	name  string
	calls *int32
}

func (t countingTask) Name() string { return t.name }
func (t countingTask) Run(ctx context.Context) error {
	atomic.AddInt32(t.calls, 1)
	return nil
}

func TestStopSignalEndsSchedulerPromptly(t *testing.T) {
	// Scenario 3 from spec §8: a background task sleeping on a long
	// cadence returns within ~100ms of StopSignal firing, not at the end
	// of its sleep.
	var calls int32
	stop := stopsignal.New()
	s := New(stop)
	s.AddTask(countingTask{name: "slow", calls: &calls}, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	stop.Fire()

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
			t.Fatalf("expected prompt shutdown, took %v", elapsed)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after StopSignal fired")
	}

	if atomic.LoadInt32(&calls) < 1 {
		t.Fatal("expected the task to run at least once before shutdown")
	}
}

func TestTaskRunsRepeatedlyOnItsInterval(t *testing.T) {
	var calls int32
	stop := stopsignal.New()
	s := New(stop)
	s.AddTask(countingTask{name: "fast", calls: &calls}, 20*time.Millisecond)

	go s.Run(context.Background())
	time.Sleep(90 * time.Millisecond)
	stop.Fire()

	if atomic.LoadInt32(&calls) < 3 {
		t.Fatalf("expected multiple runs within 90ms on a 20ms cadence, got %d", calls)
	}
}

func TestPanickingTaskDoesNotStopSibling(t *testing.T) {
	var calls int32
	stop := stopsignal.New()
	s := New(stop)
	s.AddTask(panicTask{}, 10*time.Millisecond)
	s.AddTask(countingTask{name: "ok", calls: &calls}, 10*time.Millisecond)

	go s.Run(context.Background())
	time.Sleep(60 * time.Millisecond)
	stop.Fire()

	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected sibling task to keep running despite a panicking task, got %d", calls)
	}
}

type panicTask struct{}

func (panicTask) Name() string                  { return "panicky" }
func (panicTask) Run(ctx context.Context) error { panic("boom") }

type fakeTicker struct{ calls *int32 }

func (f fakeTicker) Tick(ctx context.Context) error {
	atomic.AddInt32(f.calls, 1)
	return nil
}

func TestAddConnectorTickerRunsOnGivenInterval(t *testing.T) {
	var calls int32
	stop := stopsignal.New()
	s := New(stop)
	s.AddConnectorTicker("led", fakeTicker{calls: &calls}, 15*time.Millisecond)

	go s.Run(context.Background())
	time.Sleep(70 * time.Millisecond)
	stop.Fire()

	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected the connector ticker to fire multiple times, got %d", calls)
	}
}
