package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	got := map[string][]Type{}
	record := func(name string) Handler {
		return func(_ context.Context, ev Event) error {
			mu.Lock()
			got[name] = append(got[name], ev.Type)
			mu.Unlock()
			return nil
		}
	}
	bus.Subscribe("a", 8, record("a"))
	bus.Subscribe("b", 8, record("b"))

	bus.Publish(Event{Type: VideoViewed, VideoID: "v1"})
	bus.Publish(Event{Type: VideoLiked, VideoID: "v1"})
	bus.Close(time.Second)

	for _, name := range []string{"a", "b"} {
		if len(got[name]) != 2 || got[name][0] != VideoViewed || got[name][1] != VideoLiked {
			t.Fatalf("subscriber %s got %v", name, got[name])
		}
	}
}

func TestBusPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := NewBus()
	release := make(chan struct{})
	bus.Subscribe("slow", 1, func(context.Context, Event) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			bus.Publish(Event{Type: VideoViewed})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber queue")
	}
	close(release)
	bus.Close(time.Second)
}

func TestBusHandlerErrorIsSwallowed(t *testing.T) {
	bus := NewBus()
	calls := make(chan struct{}, 2)
	bus.Subscribe("failing", 4, func(context.Context, Event) error {
		calls <- struct{}{}
		return errors.New("boom")
	})
	bus.Publish(Event{Type: CommentAdded})
	bus.Publish(Event{Type: CommentAdded})
	bus.Close(time.Second)
	if len(calls) != 2 {
		t.Fatalf("handler called %d times, want 2", len(calls))
	}
}

func TestPublishAfterCloseIsIgnored(t *testing.T) {
	bus := NewBus()
	bus.Close(time.Second)
	bus.Publish(Event{Type: VideoViewed})
	bus.Subscribe("late", 1, func(context.Context, Event) error { return nil })
}

func TestPublishStampsOccurredAt(t *testing.T) {
	bus := NewBus()
	ch := make(chan Event, 1)
	bus.Subscribe("stamp", 1, func(_ context.Context, ev Event) error {
		ch <- ev
		return nil
	})
	bus.Publish(Event{Type: VideoCreated})
	bus.Close(time.Second)
	if ev := <-ch; ev.OccurredAt.IsZero() {
		t.Fatal("OccurredAt not set")
	}
}
