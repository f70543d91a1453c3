package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/ddlschema/internal/schema"
)

var postgresDialect = dialect{
	types: map[columnKind]string{
		kindID:   "VARCHAR(36)",
		kindText: "TEXT",
		kindInt:  "BIGINT",
		kindBool: "BOOLEAN",
		kindTime: "TIMESTAMPTZ",
	},
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// PostgresCatalog stores models in PostgreSQL
type PostgresCatalog struct {
	conn *pgx.Conn
}

// NewPostgresCatalog connects to PostgreSQL
func NewPostgresCatalog(ctx context.Context, connString string) (*PostgresCatalog, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCatalog{conn: conn}, nil
}

// Export writes s as one run inside a single transaction
func (c *PostgresCatalog) Export(ctx context.Context, s *schema.Schema) (string, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range catalogTables {
		if _, err := tx.Exec(ctx, postgresDialect.createTable(t)); err != nil {
			return "", fmt.Errorf("failed to create catalog table %s: %w", t.name, err)
		}
	}

	runID := newRunID()
	batch := &pgx.Batch{}
	for _, t := range catalogTables {
		query := postgresDialect.insert(t)
		for _, row := range t.rows(runID, s) {
			batch.Queue(query, row...)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("failed to write catalog rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit catalog run: %w", err)
	}
	return runID, nil
}

// Close closes the database connection
func (c *PostgresCatalog) Close() error {
	return c.conn.Close(context.Background())
}
