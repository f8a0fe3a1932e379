// Package analytics publishes search and index-build events to Kafka without
// blocking the request path.
package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
)

// Publisher is the subset of the Kafka producer the collector uses.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Collector struct {
	producer Publisher
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool
}

func NewCollector(producer Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track queues event for publishing. It never blocks; events are dropped
// when the buffer is full.
func (c *Collector) Track(event any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for queued ones to be published.
// Events tracked after Close are discarded.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (c *Collector) publish(ctx context.Context, event any) {
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   eventKey(event),
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func eventKey(event any) string {
	switch e := event.(type) {
	case SearchEvent:
		return string(e.Type)
	case IndexEvent:
		return string(e.Type)
	default:
		return "analytics"
	}
}
