package source

import (
	"context"
	"errors"
	"io"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/postgres"
)

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	port, _ := strconv.Atoi(envOrDefault("TEST_POSTGRES_PORT", "5432"))
	client, err := postgres.New(context.Background(), config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            port,
		Database:        envOrDefault("TEST_POSTGRES_DB", "littlesearch_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "littlesearch"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPostgresSource(t *testing.T) {
	client := skipIfNoPostgres(t)
	ctx := context.Background()
	src := NewPostgresSource(client)
	if err := src.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := client.DB.ExecContext(ctx, `TRUNCATE documents RESTART IDENTITY`); err != nil {
		t.Fatal(err)
	}
	docs := []Document{
		{Name: "alice.txt", Body: "Alice was beginning"},
		{Name: "wow.txt", Body: "wow wow"},
	}
	if err := src.ReplaceAll(ctx, docs); err != nil {
		t.Fatal(err)
	}

	names, err := src.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"alice.txt", "wow.txt"}) {
		t.Errorf("List = %v", names)
	}

	rc, err := src.Open(ctx, "wow.txt")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "wow wow" {
		t.Errorf("body = %q", body)
	}

	if _, err := src.Open(ctx, "missing.txt"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("Open(missing) error = %v", err)
	}
}

func TestPostgresSourceReplaceAllReorders(t *testing.T) {
	client := skipIfNoPostgres(t)
	ctx := context.Background()
	src := NewPostgresSource(client)
	if err := src.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	first := []Document{{Name: "a.txt", Body: "a"}, {Name: "b.txt", Body: "b"}, {Name: "c.txt", Body: "c"}}
	if err := src.ReplaceAll(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := []Document{{Name: "c.txt", Body: "c2"}, {Name: "a.txt", Body: "a2"}}
	if err := src.ReplaceAll(ctx, second); err != nil {
		t.Fatal(err)
	}

	names, err := src.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"c.txt", "a.txt"}) {
		t.Errorf("List after reload = %v, want [c.txt a.txt]", names)
	}
	if _, err := src.Open(ctx, "b.txt"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("dropped document still readable: %v", err)
	}
	rc, err := src.Open(ctx, "c.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	if body, _ := io.ReadAll(rc); string(body) != "c2" {
		t.Errorf("c.txt body = %q, want c2", body)
	}
}
