// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

const (
	dbDriver       = "duckdb"
	defaultTimeout = 30 * time.Second
)

// Client wraps the in-memory DuckDB connection used by the SQL pivot engine.
// The database lives only for the duration of one run.
type Client struct {
	db      *sql.DB
	timeout time.Duration
}

// NewClient opens an in-memory DuckDB database. timeout bounds each query;
// zero or negative selects the default.
func NewClient(timeout time.Duration) (*Client, error) {
	db, err := sql.Open(dbDriver, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{db: db, timeout: timeout}
	if err := c.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	return c, nil
}

func (c *Client) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Ping validates the connection.
func (c *Client) Ping() error {
	ctx, cancel := c.context()
	defer cancel()
	return c.db.PingContext(ctx)
}

// Close closes the database.
func (c *Client) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// Exec runs a statement that returns no rows.
func (c *Client) Exec(query string) error {
	ctx, cancel := c.context()
	defer cancel()
	_, err := c.db.ExecContext(ctx, query)
	return err
}

// QueryStrings runs a query and returns every cell rendered as a string,
// with NULL cells rendered empty. Column names come back in select order.
func (c *Client) QueryStrings(query string) ([]string, [][]string, error) {
	ctx, cancel := c.context()
	defer cancel()

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var result [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]interface{}, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make([]string, len(cols))
		for i, cell := range cells {
			if cell.Valid {
				row[i] = cell.String
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration error: %w", err)
	}

	return cols, result, nil
}
