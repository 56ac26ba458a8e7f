package slack

import (
	"context"
	"testing"

	"github.com/slack-go/slack"
	"github.com/windlgrass/om1agent/internal/sensors"
)

type stubHistoryClient struct {
	resp *slack.GetConversationHistoryResponse
	err  error
}

func (s *stubHistoryClient) GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	return s.resp, s.err
}

func TestPollAdvancesLastSeenCursor(t *testing.T) {
	s := &Sensor{
		Buffer: *sensors.NewBuffer("SlackFeedInput", 10),
		client: &stubHistoryClient{resp: &slack.GetConversationHistoryResponse{
			Messages: []slack.Message{{Msg: slack.Msg{Timestamp: "100.1", User: "u1", Text: "hi"}}},
		}},
		channelID: "C1",
	}

	raw, err := s.poll(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.lastSeen != "100.1" {
		t.Fatalf("expected cursor to advance to the newest timestamp, got %q", s.lastSeen)
	}
	if err := s.RawToText(t.Context(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRawToTextRejectsWrongType(t *testing.T) {
	s := New("token", "C1")
	if err := s.RawToText(t.Context(), 42); err == nil {
		t.Fatal("expected an error for the wrong raw event type")
	}
}
