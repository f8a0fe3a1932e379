package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	position SERIAL,
	name     TEXT PRIMARY KEY,
	body     TEXT NOT NULL
)`

// PostgresSource reads document bodies from the documents table.
type PostgresSource struct {
	client *postgres.Client
	db     *sql.DB
}

func NewPostgresSource(client *postgres.Client) *PostgresSource {
	return &PostgresSource{client: client, db: client.DB}
}

func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if err := s.client.Migrate(ctx, schema); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// Document is a named body stored by ReplaceAll.
type Document struct {
	Name string
	Body string
}

// ReplaceAll makes docs the whole table in one transaction, so List returns
// exactly their names in order. A name repeated in docs keeps its first
// position and its last body.
func (s *PostgresSource) ReplaceAll(ctx context.Context, docs []Document) error {
	return s.client.InTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE documents RESTART IDENTITY`); err != nil {
			return fmt.Errorf("clearing documents: %w", err)
		}
		for _, d := range docs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO documents (name, body) VALUES ($1, $2)
				 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body`,
				d.Name, d.Body,
			)
			if err != nil {
				return fmt.Errorf("storing document %s: %w", d.Name, err)
			}
		}
		return nil
	})
}

func (s *PostgresSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE name = $1`, name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("document "+name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", name, err)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

// List returns every document name in insertion order.
func (s *PostgresSource) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning document name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return names, nil
}
