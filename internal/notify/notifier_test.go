package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/domain"
	"github.com/Adda-Baaj/link-meta/pkg/publishers"
)

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeDeduper tracks seen keys.
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeDeduper) Seen(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[key], nil
}

func (f *fakeDeduper) Mark(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[key] = true
	return nil
}

func TestNotifierPublishesOncePerURL(t *testing.T) {
	pub := &fakePublisher{}
	n := New(pub, &fakeDeduper{}, nil, nil, 4)

	res := domain.ExtractionResult{Title: "t"}
	n.handle(context.Background(), publishers.NewEvent("https://example.com", res))
	n.handle(context.Background(), publishers.NewEvent("https://example.com", res))
	n.handle(context.Background(), publishers.NewEvent("https://example.com/other", res))

	if got := pub.count(); got != 2 {
		t.Fatalf("expected 2 published events, got %d", got)
	}
}

func TestNotifierDoesNotMarkFailedEvents(t *testing.T) {
	pub := &fakePublisher{err: errors.New("down")}
	dedup := &fakeDeduper{}
	n := New(pub, dedup, nil, nil, 4)

	evt := publishers.NewEvent("https://example.com", domain.ExtractionResult{})
	n.handle(context.Background(), evt)

	if seen, _ := dedup.Seen(evt.URLHash); seen {
		t.Fatalf("failed event should not be marked as published")
	}
}

func TestNotifierDropsWhenQueueFull(t *testing.T) {
	n := New(&fakePublisher{}, nil, nil, nil, 1)

	if !n.Notify("https://a.example", domain.ExtractionResult{}) {
		t.Fatalf("expected first event queued")
	}
	if n.Notify("https://b.example", domain.ExtractionResult{}) {
		t.Fatalf("expected second event dropped")
	}
}

func TestDisabledNotifier(t *testing.T) {
	var n *Notifier
	if n.Notify("https://a.example", domain.ExtractionResult{}) {
		t.Fatalf("nil notifier should not accept events")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(nil, nil, nil, nil, 1).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNotifierRunDrainsQueue(t *testing.T) {
	pub := &fakePublisher{}
	n := New(pub, nil, nil, nil, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = n.Run(ctx)
		close(done)
	}()

	n.Notify("https://a.example", domain.ExtractionResult{Title: "a"})

	deadline := time.Now().Add(2 * time.Second)
	for pub.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if pub.count() != 1 {
		t.Fatalf("expected event published by Run, got %d", pub.count())
	}
}
