package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"source", cfg.Indexer.Source,
		"max_results", cfg.Search.MaxResults,
		"dedupe", cfg.Search.Dedupe,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics, err := metrics.StartServer(cfg.Metrics.Port)
		if err != nil {
			slog.Warn("metrics endpoint disabled", "error", err)
		} else {
			defer shutdownMetrics(context.Background())
		}
	}

	checker := health.NewChecker()

	var docs source.Documents
	switch cfg.Indexer.Source {
	case config.SourcePostgres:
		var pg *postgres.Client
		err := resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{MaxAttempts: 5, InitialDelay: time.Second},
			func(ctx context.Context) error {
				var err error
				pg, err = postgres.New(ctx, cfg.Postgres)
				return err
			})
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		pgSource := source.NewPostgresSource(pg)
		if err := pgSource.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare document table", "error", err)
			os.Exit(1)
		}
		checker.Register("postgres", health.PingCheck(pg.Ping))
		docs = pgSource
		slog.Info("reading documents from postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	default:
		docs = source.NewFileSource(cfg.Indexer.DocumentDir)
		slog.Info("reading documents from filesystem", "dir", cfg.Indexer.DocumentDir, "manifest", cfg.Indexer.Manifest)
	}

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewBreaker("redis", resilience.BreakerConfig{
				IsFailure: func(err error) bool { return err != nil && !pkgredis.IsNilError(err) },
			})
			queryCache = cache.New(cache.Guard(redisClient, breaker), pkgredis.IsNilError, cfg.Redis.CacheTTL, m)
			checker.RegisterOptional("redis", health.PingCheck(redisClient.Ping))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
	}

	onBuild := func(stats indexer.BuildStats) {
		if queryCache != nil {
			if _, err := queryCache.Invalidate(context.Background()); err != nil {
				slog.Warn("stale cache after rebuild", "error", err)
			}
		}
		if collector != nil {
			collector.Track(analytics.IndexEvent{
				Type:       analytics.EventIndexBuilt,
				BuildID:    stats.BuildID,
				Documents:  stats.Documents,
				Keywords:   stats.Keywords,
				DurationMs: stats.Duration.Milliseconds(),
				Timestamp:  time.Now().UTC(),
			})
		}
	}
	engine := indexer.NewEngine(cfg.Indexer, docs, indexer.WithMetrics(m), indexer.WithBuildHook(onBuild))
	checker.Register("index", health.ReadyCheck(func() bool { return engine.Index() != nil }, "index not built"))

	if _, _, err := engine.Build(ctx); err != nil {
		slog.Error("initial index build failed", "error", err)
		os.Exit(1)
	}

	var aggregator *analytics.Aggregator
	if cfg.Kafka.Enabled {
		// Every replica must rebuild, so each one consumes in its own group.
		hostname, _ := os.Hostname()
		group := cfg.Kafka.ConsumerGroup + "-" + hostname
		rebuildConsumer := consumer.New(kafka.NewConsumer(
			cfg.Kafka,
			cfg.Kafka.Topics.IndexRebuild,
			group,
			consumer.HandleRebuild(engine),
		))
		go func() {
			if err := rebuildConsumer.Start(ctx); err != nil {
				slog.Error("rebuild consumer error", "error", err)
			}
		}()
		slog.Info("listening for rebuild requests", "topic", cfg.Kafka.Topics.IndexRebuild, "group", group)

		aggregator = analytics.NewAggregator()
		analyticsConsumer := kafka.NewConsumer(
			cfg.Kafka,
			cfg.Kafka.Topics.AnalyticsEvents,
			group+"-analytics",
			analytics.HandleEvent(aggregator),
		)
		go func() {
			if err := analyticsConsumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
	}

	var tracker handler.Tracker
	if collector != nil {
		tracker = collector
	}
	exec := executor.New(engine, executor.Options{Limit: cfg.Search.MaxResults, Dedupe: cfg.Search.Dedupe})
	h := handler.New(exec, engine, queryCache, tracker, m)

	mux := http.NewServeMux()
	h.Register(mux)
	if aggregator != nil {
		mux.HandleFunc("GET /api/v1/analytics", aggregator.StatsHandler())
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "checks", checker.Names())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-drained

	slog.Info("search service stopped")
}
