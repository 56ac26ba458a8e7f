// Package telegram implements a social-feed Sensor fed by a long-polling
// Telegram bot, grounded in the teacher's
// internal/channels/telegram/adapter.go runLongPolling/handleMessage
// pair.
package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

// Sensor watches incoming Telegram messages across every chat the bot is
// a member of and surfaces each as a Message.
type Sensor struct {
	sensors.Buffer
	push *sensors.PushSource

	token string
}

// New builds a Telegram social-feed sensor.
func New(token string) *Sensor {
	return &Sensor{
		Buffer: *sensors.NewBuffer("TelegramFeedInput", 50),
		push:   sensors.NewPushSource(64),
		token:  token,
	}
}

// Listen starts a long-polling bot session and forwards every text
// message update into the sensor's push queue until ctx is done.
func (s *Sensor) Listen(ctx context.Context) <-chan sensors.RawEvent {
	opts := []tgbot.Option{tgbot.WithDefaultHandler(s.handleUpdate)}
	b, err := tgbot.New(s.token, opts...)
	if err == nil {
		go b.Start(ctx)
	}
	return s.push.Listen(ctx)
}

func (s *Sensor) handleUpdate(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	s.push.Enqueue(update.Message)
}

// RawToText converts one Telegram message into a Message.
func (s *Sensor) RawToText(ctx context.Context, raw sensors.RawEvent) error {
	msg, ok := raw.(*tgmodels.Message)
	if !ok {
		return fmt.Errorf("telegram: unexpected event type %T", raw)
	}
	from := "unknown"
	if msg.From != nil {
		from = msg.From.Username
	}
	s.Push(models.NewMessage(fmt.Sprintf("%s: %s", from, msg.Text)))
	return nil
}
