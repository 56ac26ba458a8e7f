package sensors

import (
	"context"
	"testing"
	"time"

	"github.com/windlgrass/om1agent/pkg/models"
)

func TestBufferEmptyReturnsNoBlock(t *testing.T) {
	b := NewBuffer("Vision", 10)
	if _, ok := b.FormattedLatestBuffer(); ok {
		t.Fatal("expected no block for empty buffer")
	}
}

func TestBufferFormatsAndClears(t *testing.T) {
	b := NewBuffer("Vision", 10)
	b.Push(models.Message{Text: "hello"})
	block, ok := b.FormattedLatestBuffer()
	if !ok {
		t.Fatal("expected a block")
	}
	if block == "" {
		t.Fatal("expected non-empty block")
	}
	if _, ok := b.FormattedLatestBuffer(); ok {
		t.Fatal("expected buffer to be empty after read (one-shot contract)")
	}
}

func TestBufferDropsOldestOnOverflow(t *testing.T) {
	b := NewBuffer("Vision", 2)
	b.Push(models.Message{Text: "first"})
	b.Push(models.Message{Text: "second"})
	b.Push(models.Message{Text: "third"})
	if b.Len() != 2 {
		t.Fatalf("expected capacity-bounded length 2, got %d", b.Len())
	}
	block, _ := b.FormattedLatestBuffer()
	if contains(block, "first") {
		t.Fatal("expected oldest message to have been dropped")
	}
	if !contains(block, "second") || !contains(block, "third") {
		t.Fatal("expected remaining messages to be present")
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestPollingSourceEmitsOnTicker(t *testing.T) {
	calls := 0
	src := &PollingSource{
		Interval: 10 * time.Millisecond,
		Poll: func(ctx context.Context) (RawEvent, error) {
			calls++
			return calls, nil
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	count := 0
	for range src.Listen(ctx) {
		count++
	}
	if count < 2 {
		t.Fatalf("expected at least 2 polls, got %d", count)
	}
}

func TestPushSourceDropsOldestWhenFull(t *testing.T) {
	p := NewPushSource(1)
	p.Enqueue("a")
	p.Enqueue("b")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ch := p.Listen(ctx)
	select {
	case ev := <-ch:
		if ev != "b" {
			t.Fatalf("expected oldest event dropped, got %v", ev)
		}
	case <-ctx.Done():
		t.Fatal("expected an event before context deadline")
	}
}
