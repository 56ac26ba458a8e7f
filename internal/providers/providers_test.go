package providers

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPushProviderDropsOldestPastCapacity(t *testing.T) {
	p := NewPushProvider[int](2)
	p.Enqueue(1)
	p.Enqueue(2)
	p.Enqueue(3)

	var got []int
	var mu sync.Mutex
	ctx, cancel := context.WithCancel(context.Background())
	go p.Start(ctx, func(_ context.Context, v int) error {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("expected [2 3] after dropping the oldest, got %v", got)
	}
}

func TestIngestProviderReturnsLatestSnapshot(t *testing.T) {
	p := NewIngestProvider[int]()
	if _, ok := p.Latest(); ok {
		t.Fatal("expected no snapshot before any Update")
	}
	p.Update(1)
	p.Update(2)
	v, ok := p.Latest()
	if !ok || v != 2 {
		t.Fatalf("expected latest snapshot 2, got %v, %v", v, ok)
	}
}

func TestTTSProviderQueuesMessages(t *testing.T) {
	tts := NewTTSProvider()
	tts.AddPendingMessage("hello")
	tts.AddPendingMessage("world")

	var got []string
	var mu sync.Mutex
	ctx, cancel := context.WithCancel(context.Background())
	go tts.Start(ctx, func(_ context.Context, v string) error {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		return nil
	})
	time.Sleep(50 * time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected both messages forwarded, got %v", got)
	}
}

func TestLocationsProviderRememberAndLookup(t *testing.T) {
	locs := NewLocationsProvider()
	locs.Remember(NamedLocation{Name: "kitchen", X: 1, Y: 2})

	loc, ok := locs.Lookup("kitchen")
	if !ok || loc.X != 1 || loc.Y != 2 {
		t.Fatalf("unexpected lookup result: %+v, %v", loc, ok)
	}
	if _, ok := locs.Lookup("garage"); ok {
		t.Fatal("expected no location for an unremembered name")
	}
}

func TestContextProviderSetGetFlagClear(t *testing.T) {
	ctx := NewContextProvider()
	if ctx.Flag("greeting_conversation_finished") {
		t.Fatal("expected no flag before Set")
	}

	ctx.Set("greeting_conversation_finished", true)
	if !ctx.Flag("greeting_conversation_finished") {
		t.Fatal("expected the flag set")
	}

	ctx.Set("label", "hello")
	v, ok := ctx.Get("label")
	if !ok || v != "hello" {
		t.Fatalf("unexpected Get result: %v, %v", v, ok)
	}

	ctx.Clear("greeting_conversation_finished")
	if ctx.Flag("greeting_conversation_finished") {
		t.Fatal("expected the flag cleared")
	}
}

func TestTeleopsStatusShareStatusForwards(t *testing.T) {
	teleops := NewTeleopsStatus()
	teleops.ShareStatus("idle")

	done := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go teleops.Start(ctx, func(_ context.Context, status string) error {
		done <- status
		return nil
	})

	select {
	case status := <-done:
		if status != "idle" {
			t.Fatalf("unexpected status: %s", status)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the status report to be forwarded")
	}
}
