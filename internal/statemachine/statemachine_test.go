package statemachine

import (
	"testing"
	"time"
)

func TestGreetingConversationHappyPath(t *testing.T) {
	g := NewGreetingConversation(time.Second)
	now := time.Now()

	if g.State() != Engaging {
		t.Fatalf("expected initial state Engaging, got %s", g.State())
	}
	if got := g.ProcessConversationState("conversing", now); got != Conversing {
		t.Fatalf("expected Conversing, got %s", got)
	}
	if got := g.ProcessConversationState("finished", now); got != Finished {
		t.Fatalf("expected Finished, got %s", got)
	}
	if !g.FinishedFlag() {
		t.Fatal("expected the finished flag to be set")
	}
}

func TestGreetingConversationFinishedIsTerminalUntilReset(t *testing.T) {
	g := NewGreetingConversation(time.Second)
	now := time.Now()
	g.ProcessConversationState("finished", now)

	if got := g.ProcessConversationState("engaging", now); got != Finished {
		t.Fatalf("expected Finished to stay terminal, got %s", got)
	}

	g.ResetOnApproach(now)
	if g.State() != Engaging {
		t.Fatalf("expected Engaging after reset, got %s", g.State())
	}
	if g.FinishedFlag() {
		t.Fatal("expected the finished flag cleared after reset")
	}
}

func TestGreetingConversationSilenceTimerAdvancesState(t *testing.T) {
	g := NewGreetingConversation(100 * time.Millisecond)
	now := time.Now()
	g.ProcessConversationState("conversing", now)

	later := now.Add(200 * time.Millisecond)
	if got := g.TickSilence(later); got != Concluding {
		t.Fatalf("expected Concluding after silence, got %s", got)
	}

	evenLater := later.Add(200 * time.Millisecond)
	if got := g.TickSilence(evenLater); got != Finished {
		t.Fatalf("expected Finished after continued silence, got %s", got)
	}
}

func TestNavigationLifecycle(t *testing.T) {
	n := NewNavigation()
	if n.State() != Idle {
		t.Fatalf("expected initial state Idle, got %s", n.State())
	}
	n.GoalPublished()
	if n.State() != Planning {
		t.Fatalf("expected Planning, got %s", n.State())
	}
	n.ActionServerExecuting()
	if n.State() != Executing {
		t.Fatalf("expected Executing, got %s", n.State())
	}
	n.Succeed()
	if n.State() != Succeeded {
		t.Fatalf("expected Succeeded, got %s", n.State())
	}
}

func TestNavigationAbortFromAnyState(t *testing.T) {
	n := NewNavigation()
	n.GoalPublished()
	n.Abort()
	if n.State() != Aborted {
		t.Fatalf("expected Aborted, got %s", n.State())
	}
}
