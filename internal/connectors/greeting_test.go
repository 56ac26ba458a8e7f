package connectors

import (
	"testing"
	"time"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/statemachine"
)

func TestGreetingConversationConnectorWritesFinishedFlag(t *testing.T) {
	greeting := statemachine.NewGreetingConversation(time.Minute)
	context := providers.NewContextProvider()
	c := NewGreetingConversationConnector(greeting, context)

	if err := c.Connect(t.Context(), "conversing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if context.Flag(providers.GreetingConversationFinishedFlag) {
		t.Fatal("expected no finished flag before the conversation finishes")
	}

	if err := c.Connect(t.Context(), "finished"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !context.Flag(providers.GreetingConversationFinishedFlag) {
		t.Fatal("expected the finished flag set once the conversation finishes")
	}
}

func TestGreetingConversationConnectorSuppressesRepeatsAfterFinished(t *testing.T) {
	greeting := statemachine.NewGreetingConversation(time.Minute)
	greeting.ProcessConversationState("conversing", time.Now())

	context := providers.NewContextProvider()
	context.Set(providers.GreetingConversationFinishedFlag, true)

	c := NewGreetingConversationConnector(greeting, context)
	if err := c.Connect(t.Context(), "concluding"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if greeting.State() != statemachine.Conversing {
		t.Fatalf("expected a suppressed dispatch to leave the state unchanged, got %s", greeting.State())
	}
}
