// Command indexer loads a document corpus from disk into PostgreSQL and asks
// running search services to rebuild their index from it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	docs := flag.String("docs", "", "document manifest (overrides config)")
	dir := flag.String("dir", "", "directory documents are read from (overrides config)")
	notify := flag.Bool("notify", true, "publish a rebuild request when kafka is enabled")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *docs != "" {
		cfg.Indexer.Manifest = *docs
	}
	if *dir != "" {
		cfg.Indexer.DocumentDir = *dir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpus, err := loadCorpus(ctx, cfg.Indexer.Manifest, source.NewFileSource(cfg.Indexer.DocumentDir))
	if err != nil {
		slog.Error("failed to read corpus", "error", err)
		os.Exit(1)
	}

	var pg *postgres.Client
	err = resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{MaxAttempts: 5, InitialDelay: time.Second},
		func(ctx context.Context) error {
			pg, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	store := source.NewPostgresSource(pg)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to prepare document table", "error", err)
		os.Exit(1)
	}
	if err := store.ReplaceAll(ctx, corpus); err != nil {
		slog.Error("failed to store corpus", "error", err)
		os.Exit(1)
	}
	slog.Info("corpus stored", "documents", len(corpus), "database", cfg.Postgres.Database)

	if !cfg.Kafka.Enabled || !*notify {
		return
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexRebuild)
	defer producer.Close()
	req := consumer.RebuildRequest{
		Reason:      fmt.Sprintf("corpus load of %d documents", len(corpus)),
		RequestedAt: time.Now().UTC(),
	}
	if err := producer.Publish(ctx, kafka.Event{Key: "rebuild", Value: req}); err != nil {
		slog.Error("failed to request rebuild", "error", err)
		os.Exit(1)
	}
	slog.Info("rebuild requested", "topic", cfg.Kafka.Topics.IndexRebuild)
}

// loadCorpus reads every document named in manifest, keeping manifest order.
func loadCorpus(ctx context.Context, manifest string, docs source.Documents) ([]source.Document, error) {
	names, err := source.LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	corpus := make([]source.Document, 0, len(names))
	for _, name := range names {
		body, err := readAll(ctx, docs, name)
		if err != nil {
			return nil, err
		}
		corpus = append(corpus, source.Document{Name: name, Body: body})
	}
	return corpus, nil
}

func readAll(ctx context.Context, docs source.Documents, name string) (string, error) {
	rc, err := docs.Open(ctx, name)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", name, err)
	}
	return string(body), nil
}
