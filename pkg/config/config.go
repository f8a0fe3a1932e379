// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Indexer, Search, Postgres, Kafka, Redis, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Search   SearchConfig   `yaml:"search"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Document source kinds accepted by IndexerConfig.Source.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// IndexerConfig describes where the corpus comes from and how keywords are
// screened while the index is built.
type IndexerConfig struct {
	Manifest       string `yaml:"manifest"`
	NoiseWords     string `yaml:"noiseWords"`
	DocumentDir    string `yaml:"documentDir"`
	Source         string `yaml:"source"`
	StrictKeywords bool   `yaml:"strictKeywords"`
	ScanWorkers    int    `yaml:"scanWorkers"`
}

// SearchConfig controls the size and shape of two-keyword results.
type SearchConfig struct {
	MaxResults int  `yaml:"maxResults"`
	Dedupe     bool `yaml:"dedupe"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyticsEvents string `yaml:"analyticsEvents"`
	IndexRebuild    string `yaml:"indexRebuild"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Indexer.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("indexer.source must be %q or %q, got %q", SourceFile, SourcePostgres, c.Indexer.Source)
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.maxResults must be positive, got %d", c.Search.MaxResults)
	}
	if c.Indexer.ScanWorkers < 1 {
		return fmt.Errorf("indexer.scanWorkers must be positive, got %d", c.Indexer.ScanWorkers)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Indexer: IndexerConfig{
			Manifest:       "docs.txt",
			NoiseWords:     "noisewords.txt",
			Source:         SourceFile,
			StrictKeywords: true,
			ScanWorkers:    1,
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "littlesearch",
			User:            "littlesearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "littlesearch-group",
			Topics: KafkaTopics{
				AnalyticsEvents: "analytics-events",
				IndexRebuild:    "index-rebuild",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads LS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LS_INDEXER_MANIFEST"); v != "" {
		cfg.Indexer.Manifest = v
	}
	if v := os.Getenv("LS_INDEXER_NOISE_WORDS"); v != "" {
		cfg.Indexer.NoiseWords = v
	}
	if v := os.Getenv("LS_INDEXER_DOCUMENT_DIR"); v != "" {
		cfg.Indexer.DocumentDir = v
	}
	if v := os.Getenv("LS_INDEXER_SOURCE"); v != "" {
		cfg.Indexer.Source = v
	}
	if v := os.Getenv("LS_INDEXER_STRICT_KEYWORDS"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Indexer.StrictKeywords = strict
		}
	}
	if v := os.Getenv("LS_INDEXER_SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.ScanWorkers = n
		}
	}
	if v := os.Getenv("LS_SEARCH_DEDUPE"); v != "" {
		if dedupe, err := strconv.ParseBool(v); err == nil {
			cfg.Search.Dedupe = dedupe
		}
	}
	if v := os.Getenv("LS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("LS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("LS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("LS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("LS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("LS_KAFKA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = enabled
		}
	}
	if v := os.Getenv("LS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LS_REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("LS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
