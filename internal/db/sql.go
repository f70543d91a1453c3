package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/ddlschema/internal/schema"
)

// sqlCatalog stores models through database/sql
type sqlCatalog struct {
	db      *sql.DB
	dialect dialect
}

func openSQLCatalog(ctx context.Context, driver, dsn string, d dialect) (*sqlCatalog, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &sqlCatalog{db: db, dialect: d}, nil
}

// Export writes s as one run inside a single transaction
func (c *sqlCatalog) Export(ctx context.Context, s *schema.Schema) (string, error) {
	// MySQL commits DDL implicitly, so the catalog tables are created first
	for _, t := range catalogTables {
		if _, err := c.db.ExecContext(ctx, c.dialect.createTable(t)); err != nil {
			return "", fmt.Errorf("failed to create catalog table %s: %w", t.name, err)
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runID := newRunID()
	for _, t := range catalogTables {
		stmt, err := tx.PrepareContext(ctx, c.dialect.insert(t))
		if err != nil {
			return "", fmt.Errorf("failed to prepare insert into %s: %w", t.name, err)
		}
		for _, row := range t.rows(runID, s) {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				_ = stmt.Close()
				return "", fmt.Errorf("failed to insert into %s: %w", t.name, err)
			}
		}
		_ = stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit catalog run: %w", err)
	}
	return runID, nil
}

// Close closes the database connection
func (c *sqlCatalog) Close() error {
	return c.db.Close()
}
