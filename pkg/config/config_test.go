package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want 5", cfg.Search.MaxResults)
	}
	if !cfg.Indexer.StrictKeywords {
		t.Error("strict keyword screening should be on by default")
	}
	if cfg.Search.Dedupe {
		t.Error("dedupe should be off by default")
	}
	if cfg.Indexer.Source != SourceFile {
		t.Errorf("Source = %q, want %q", cfg.Indexer.Source, SourceFile)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
indexer:
  manifest: corpus/docs.txt
  strictKeywords: false
  scanWorkers: 4
search:
  dedupe: true
redis:
  enabled: true
  cacheTTL: 5m
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Indexer.Manifest != "corpus/docs.txt" {
		t.Errorf("Manifest = %q", cfg.Indexer.Manifest)
	}
	if cfg.Indexer.StrictKeywords {
		t.Error("StrictKeywords should be false")
	}
	if cfg.Indexer.ScanWorkers != 4 {
		t.Errorf("ScanWorkers = %d, want 4", cfg.Indexer.ScanWorkers)
	}
	if !cfg.Search.Dedupe || !cfg.Redis.Enabled {
		t.Error("expected dedupe and redis enabled")
	}
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if cfg.Indexer.NoiseWords != "noisewords.txt" {
		t.Errorf("unset fields should keep defaults, NoiseWords = %q", cfg.Indexer.NoiseWords)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LS_INDEXER_SOURCE", SourcePostgres)
	t.Setenv("LS_SEARCH_DEDUPE", "true")
	t.Setenv("LS_KAFKA_BROKERS", "a:9092,b:9092")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Indexer.Source != SourcePostgres {
		t.Errorf("Source = %q", cfg.Indexer.Source)
	}
	if !cfg.Search.Dedupe {
		t.Error("Dedupe should be overridden")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Indexer.Source = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown source to be rejected")
	}
	cfg = Default()
	cfg.Search.MaxResults = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero maxResults to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadDevelopmentConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "development.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Indexer.Source != SourceFile || cfg.Indexer.ScanWorkers != 4 {
		t.Errorf("indexer = %+v", cfg.Indexer)
	}
	if cfg.Redis.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if cfg.Kafka.Enabled || cfg.Redis.Enabled {
		t.Error("development config should not require kafka or redis")
	}
}
