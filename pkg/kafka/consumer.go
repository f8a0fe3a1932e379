// Package kafka carries rebuild requests and analytics events over
// segmentio/kafka-go. Payloads are JSON.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
)

// Fetch failures back off between these bounds until a fetch succeeds.
const (
	minFetchBackoff = 100 * time.Millisecond
	maxFetchBackoff = 10 * time.Second
)

// MessageHandler processes one message. A non-nil error leaves the offset
// uncommitted.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler
}

// NewConsumer creates a Consumer for topic in consumer group groupID. Every
// group receives every message, so instances that must all react to a
// message use distinct group ids. Only messages produced after the group
// first joins are seen.
func NewConsumer(cfg config.KafkaConfig, topic, groupID string, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    1e6,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:  r,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic, "group", groupID),
		handler: handler,
	}
}

// Start consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()

	backoff := minFetchBackoff
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxFetchBackoff)
			continue
		}
		backoff = minFetchBackoff
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)
	log.Debug("message received", "key", string(msg.Key))
	if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
		log.Error("failed to process message", "error", err)
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("failed to commit message", "error", err)
	}
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
