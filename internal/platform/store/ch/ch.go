// Package ch provides a clickhouse client over the native protocol
package ch

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config is everything Open needs, bootstrapped from the CH_* env block
type Config struct {
	URL string

	// ClientName and ClientTag identify this process in system.query_log
	ClientName string
	ClientTag  string
}

// Rows is the driver result set. Close returns an error, the store adapter
// flattens that for callers that do not care
type Rows = driver.Rows

// CH wraps a native clickhouse connection pool
type CH struct {
	conn driver.Conn
}

// Open parses the DSN and builds the connection pool. The pool dials lazily,
// readiness is the caller's problem via Ping
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(cfg.ClientName, cfg.ClientTag)

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	return &CH{conn: conn}, nil
}

// Insert appends rows to table via a prepared batch. Each row must carry a
// value for every column in table declaration order
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch: prepare batch for %s: %w", table, err)
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("ch: append to %s: %w", table, err)
		}
	}
	return batch.Send()
}

// Query runs a query and returns driver rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

// Exec runs a statement that returns no rows
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	return c.conn.Exec(ctx, sql, args...)
}

// Ping round-trips the server, forcing the lazy pool to actually dial
func (c *CH) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close tears down the pool. Safe on a nil receiver so shutdown paths
// need no guard
func (c *CH) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
