// Package consumer listens for rebuild requests on Kafka and rebuilds the
// index in response.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
)

// RebuildRequest is the message payload on the rebuild topic.
type RebuildRequest struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// Rebuilder performs a full index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context, reason string) (indexer.BuildStats, error)
}

// IndexConsumer wraps a Kafka consumer to drive index rebuilds.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "rebuild-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("rebuild consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleRebuild returns a MessageHandler that rebuilds the index for every
// rebuild request. Undecodable messages are logged and skipped; a request
// that arrives while a build is running is absorbed by that build.
func HandleRebuild(r Rebuilder) kafka.MessageHandler {
	logger := slog.Default().With("component", "rebuild-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		req, err := kafka.DecodeJSON[RebuildRequest](value)
		if err != nil {
			logger.Error("failed to decode rebuild request",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		stats, err := r.Rebuild(ctx, req.Reason)
		if errors.Is(err, apperrors.ErrBuildInProgress) {
			logger.Info("rebuild already running, request absorbed", "reason", req.Reason)
			return nil
		}
		if err != nil {
			return fmt.Errorf("rebuilding index (%s): %w", req.Reason, err)
		}
		logger.Info("index rebuilt from request",
			"reason", req.Reason,
			"build_id", stats.BuildID,
			"documents", stats.Documents,
			"keywords", stats.Keywords,
		)
		return nil
	}
}
