package telegram

import (
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
)

func TestRawToTextFormatsFromAndText(t *testing.T) {
	s := New("token")
	msg := &tgmodels.Message{
		Text: "patrol the perimeter",
		From: &tgmodels.User{Username: "operator"},
	}

	if err := s.RawToText(t.Context(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block, ok := s.FormattedLatestBuffer()
	if !ok || block == "" {
		t.Fatal("expected a formatted block")
	}
}

func TestHandleUpdateIgnoresNonMessageUpdates(t *testing.T) {
	s := New("token")
	s.handleUpdate(t.Context(), nil, &tgmodels.Update{})

	select {
	case <-s.push.Listen(t.Context()):
		t.Fatal("expected no event for an update with no message")
	default:
	}
}

func TestRawToTextRejectsWrongType(t *testing.T) {
	s := New("token")
	if err := s.RawToText(t.Context(), 7); err == nil {
		t.Fatal("expected an error for the wrong raw event type")
	}
}
