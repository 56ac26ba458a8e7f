package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestRawToTextFormatsAuthorAndContent(t *testing.T) {
	s := New("token", []string{"chan-1"})
	evt := &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "chan-1",
		Content:   "status update",
		Author:    &discordgo.User{Username: "scout"},
	}}

	if err := s.RawToText(t.Context(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	block, ok := s.FormattedLatestBuffer()
	if !ok || block == "" {
		t.Fatal("expected a formatted block")
	}
}

func TestRawToTextRejectsWrongType(t *testing.T) {
	s := New("token", nil)
	if err := s.RawToText(t.Context(), "not an event"); err == nil {
		t.Fatal("expected an error for the wrong raw event type")
	}
}
