package connectors

import (
	"context"
	"time"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/statemachine"
)

// GreetingConversationConnector drives the greeting-conversation state
// machine from the LLM's reported conversation_state and writes the
// finished flag downstream actions check before speaking again.
type GreetingConversationConnector struct {
	greeting *statemachine.GreetingConversation
	context  *providers.ContextProvider
	now      func() time.Time
}

func NewGreetingConversationConnector(greeting *statemachine.GreetingConversation, context *providers.ContextProvider) *GreetingConversationConnector {
	return &GreetingConversationConnector{greeting: greeting, context: context, now: time.Now}
}

// Connect advances the greeting conversation from value (one of
// "engaging", "conversing", "concluding", "finished"). Once the flow has
// finished, further calls are suppressed until the approaching-person
// background resets it — matching spec §4.9's "downstream actions read
// this flag to suppress repeats", applied here to the connector's own
// repeated dispatches rather than a separate reader.
func (c *GreetingConversationConnector) Connect(ctx context.Context, value string) error {
	if c.context.Flag(providers.GreetingConversationFinishedFlag) {
		return nil
	}
	if state := c.greeting.ProcessConversationState(value, c.now()); state == statemachine.Finished {
		c.context.Set(providers.GreetingConversationFinishedFlag, true)
	}
	return nil
}
