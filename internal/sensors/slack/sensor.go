// Package slack implements a social-feed Sensor that polls a Slack
// channel's recent history, grounded in the teacher's
// internal/channels/slack/adapter.go client construction
// (slack.New(token, ...)) but simplified from the teacher's socketmode
// event loop to a polling read, since this sensor only needs to observe
// a feed rather than operate a two-way messaging channel.
package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

// DefaultPollInterval is how often the sensor re-reads channel history.
const DefaultPollInterval = 15 * time.Second

// historyClient narrows *slack.Client to the one call this sensor needs.
type historyClient interface {
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// Sensor polls a Slack channel's recent messages and surfaces each new
// one as a Message.
type Sensor struct {
	sensors.Buffer
	*sensors.PollingSource

	client    historyClient
	channelID string
	lastSeen  string
}

// New builds a Slack social-feed sensor for one channel.
func New(token, channelID string) *Sensor {
	s := &Sensor{
		Buffer:    *sensors.NewBuffer("SlackFeedInput", 50),
		client:    slack.New(token),
		channelID: channelID,
	}
	s.PollingSource = &sensors.PollingSource{Interval: DefaultPollInterval, Poll: s.poll}
	return s
}

func (s *Sensor) poll(ctx context.Context) (sensors.RawEvent, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: s.channelID,
		Oldest:    s.lastSeen,
		Limit:     50,
	}
	resp, err := s.client.GetConversationHistoryContext(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) > 0 {
		s.lastSeen = resp.Messages[0].Timestamp
	}
	return resp.Messages, nil
}

// RawToText converts a batch of Slack messages into Messages, newest
// last so FormattedLatestBuffer renders them in arrival order.
func (s *Sensor) RawToText(ctx context.Context, raw sensors.RawEvent) error {
	if pe, ok := raw.(sensors.PollError); ok {
		return pe.Err
	}
	msgs, ok := raw.([]slack.Message)
	if !ok {
		return fmt.Errorf("slack: unexpected event type %T", raw)
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		s.Push(models.NewMessage(fmt.Sprintf("%s: %s", m.User, m.Text)))
	}
	return nil
}
