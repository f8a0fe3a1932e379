package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.Key)
	}
	return keys
}

func TestCollectorPublishesOnClose(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 10)
	c.Start(context.Background())
	c.Track(SearchEvent{Type: EventSearch, Keyword1: "a", Keyword2: "b", Timestamp: time.Now()})
	c.Track(IndexEvent{Type: EventIndexBuilt, BuildID: "b1"})
	c.Track("raw")
	c.Close()

	keys := pub.keys()
	want := []string{"search", "index_built", "analytics"}
	if len(keys) != len(want) {
		t.Fatalf("published %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 1)
	// not started: the second event has nowhere to go
	c.Track(SearchEvent{Type: EventSearch})
	c.Track(SearchEvent{Type: EventNoMatch})
	c.Start(context.Background())
	c.Close()
	if n := len(pub.keys()); n != 1 {
		t.Errorf("published %d events, want 1", n)
	}
}

func TestCollectorSurvivesPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 4)
	c.Start(context.Background())
	c.Track(SearchEvent{Type: EventSearch})
	c.Track(SearchEvent{Type: EventSearch})
	c.Close()
	if n := len(pub.keys()); n != 2 {
		t.Errorf("attempted %d publishes, want 2", n)
	}
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 4)
	c.Track(SearchEvent{Type: EventSearch})
	c.Track(SearchEvent{Type: EventSearch})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)
	<-c.done
	if n := len(pub.keys()); n != 2 {
		t.Errorf("published %d events, want 2", n)
	}
}

func TestCollectorTrackAfterClose(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 4)
	c.Start(context.Background())
	c.Close()
	c.Track(SearchEvent{Type: EventSearch})
	c.Close()
	if n := len(pub.keys()); n != 0 {
		t.Errorf("published %d events after close", n)
	}
}
