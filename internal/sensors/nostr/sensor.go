// Package nostr implements a social-feed Sensor that subscribes to public
// notes on a set of Nostr relays, grounded in the teacher's
// internal/channels/nostr/adapter.go (RelayConnect + Subscribe loop),
// narrowed here from the teacher's encrypted-DM filter to a public
// Kind-1 text-note filter since this sensor watches a feed rather than
// operating a messaging channel.
package nostr

import (
	"context"
	"fmt"
	"time"

	gonostr "github.com/nbd-wtf/go-nostr"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

// Sensor watches one or more relays for notes from a set of followed
// pubkeys and surfaces each as a Message.
type Sensor struct {
	sensors.Buffer
	push *sensors.PushSource

	relayURLs []string
	authors   []string
}

// New builds a Nostr social-feed sensor. relayURLs and authors mirror the
// teacher's Config.Relays / filter-by-pubkey shape.
func New(relayURLs, authors []string) *Sensor {
	return &Sensor{
		Buffer:    *sensors.NewBuffer("NostrFeedInput", 50),
		push:      sensors.NewPushSource(64),
		relayURLs: relayURLs,
		authors:   authors,
	}
}

// Listen connects to every configured relay and forwards Kind-1 notes
// from the watched authors into the sensor's push queue. Each relay is
// watched in its own goroutine; a relay that fails to connect or
// subscribe is dropped without a log or error, and listening on the
// others goes on.
func (s *Sensor) Listen(ctx context.Context) <-chan sensors.RawEvent {
	for _, url := range s.relayURLs {
		go s.watchRelay(ctx, url)
	}
	return s.push.Listen(ctx)
}

func (s *Sensor) watchRelay(ctx context.Context, url string) {
	relay, err := gonostr.RelayConnect(ctx, url)
	if err != nil {
		return
	}
	since := gonostr.Timestamp(time.Now().Add(-2 * time.Minute).Unix())
	filters := gonostr.Filters{{
		Kinds:   []int{1}, // Kind 1: public text note
		Authors: s.authors,
		Since:   &since,
	}}
	sub, err := relay.Subscribe(ctx, filters)
	if err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			sub.Unsub()
			return
		case event := <-sub.Events:
			if event == nil {
				continue
			}
			s.push.Enqueue(event)
		}
	}
}

// RawToText converts one Nostr event into a Message.
func (s *Sensor) RawToText(ctx context.Context, raw sensors.RawEvent) error {
	event, ok := raw.(*gonostr.Event)
	if !ok {
		return fmt.Errorf("nostr: unexpected event type %T", raw)
	}
	s.Push(models.NewMessage(fmt.Sprintf("%s: %s", event.PubKey, event.Content)))
	return nil
}
