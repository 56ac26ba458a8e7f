// Package discord implements a social-feed Sensor that watches configured
// Discord channels, grounded in the teacher's
// internal/channels/discord/adapter.go session + AddHandler pattern.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

// Sensor watches a set of Discord channels for new messages and surfaces
// each as a Message.
type Sensor struct {
	sensors.Buffer
	push *sensors.PushSource

	token      string
	channelIDs map[string]bool
	session    *discordgo.Session
}

// New builds a Discord social-feed sensor watching the given channel IDs.
func New(token string, channelIDs []string) *Sensor {
	watched := make(map[string]bool, len(channelIDs))
	for _, id := range channelIDs {
		watched[id] = true
	}
	return &Sensor{
		Buffer:     *sensors.NewBuffer("DiscordFeedInput", 50),
		push:       sensors.NewPushSource(64),
		token:      token,
		channelIDs: watched,
	}
}

// Listen opens a Discord session and forwards messages from watched
// channels into the sensor's push queue until ctx is done.
func (s *Sensor) Listen(ctx context.Context) <-chan sensors.RawEvent {
	session, err := discordgo.New("Bot " + s.token)
	if err == nil {
		s.session = session
		session.AddHandler(s.handleMessageCreate)
		if err := session.Open(); err == nil {
			go func() {
				<-ctx.Done()
				session.Close()
			}()
		}
	}
	return s.push.Listen(ctx)
}

func (s *Sensor) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author != nil && m.Author.Bot {
		return
	}
	if len(s.channelIDs) > 0 && !s.channelIDs[m.ChannelID] {
		return
	}
	s.push.Enqueue(m)
}

// RawToText converts one Discord message-create event into a Message.
func (s *Sensor) RawToText(ctx context.Context, raw sensors.RawEvent) error {
	m, ok := raw.(*discordgo.MessageCreate)
	if !ok {
		return fmt.Errorf("discord: unexpected event type %T", raw)
	}
	author := "unknown"
	if m.Author != nil {
		author = m.Author.Username
	}
	s.Push(models.NewMessage(fmt.Sprintf("%s: %s", author, m.Content)))
	return nil
}
