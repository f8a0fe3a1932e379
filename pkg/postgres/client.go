// Package postgres wraps database/sql with the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// Client owns the connection pool for the document store.
type Client struct {
	DB   *sql.DB
	addr string
}

// New opens a pool and pings it. The ping is bounded by ctx and by
// pingTimeout, whichever ends first, so a retry loop can cancel it.
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	c := &Client{DB: db, addr: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Ping checks that the database answers.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging postgres %s: %w", c.addr, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// Migrate runs each statement in order inside one transaction.
func (c *Client) Migrate(ctx context.Context, stmts ...string) error {
	return c.InTx(ctx, nil, func(tx *sql.Tx) error {
		for i, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration step %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// InTx runs fn in a transaction, committing on nil and rolling back
// otherwise. opts may be nil.
func (c *Client) InTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
