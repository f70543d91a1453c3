//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"

	"github.com/tordrt/ddlschema"
	"github.com/tordrt/ddlschema/internal/schema"
)

// shopDDL mixes PostgreSQL and portable DDL the way a migrations folder does
const shopDDL = `
CREATE TYPE user_status AS ENUM ('active', 'inactive', 'banned');

CREATE TABLE users (
	id SERIAL PRIMARY KEY,
	username VARCHAR(50) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL,
	status VARCHAR(20) DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE products (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	category VARCHAR(50),
	price NUMERIC(10, 2) CHECK (price >= 0)
);

CREATE INDEX idx_category ON products (category);

CREATE TABLE orders (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL,
	total NUMERIC(10, 2),
	CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);

CREATE TABLE order_items (
	order_id INTEGER REFERENCES orders (id),
	product_id INTEGER,
	quantity INTEGER NOT NULL,
	PRIMARY KEY (order_id, product_id)
);

ALTER TABLE users ADD COLUMN last_login TIMESTAMP;
`

// countFunc runs a single-value COUNT query against a catalog database
type countFunc func(ctx context.Context, query string, args ...any) (int, error)

// buildShopSchema builds the shared fixture model
func buildShopSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s, err := ddlschema.ParseSchema(context.Background(), shopDDL, nil)
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}
	verifyTablesExist(t, s, []string{"users", "products", "orders", "order_items"})
	verifyColumns(t, s, "users", []string{"id", "username", "email", "status", "created_at", "last_login"})
	verifyPrimaryKey(t, s, "users", []string{"id"})
	verifyPrimaryKey(t, s, "order_items", []string{"order_id", "product_id"})
	verifyUniqueConstraint(t, s, "users", "username")
	verifyForeignKey(t, s, "orders", "user_id", "users")
	verifyForeignKey(t, s, "order_items", "product_id", "products")
	verifyIndex(t, s, "products", "idx_category", []string{"category"})
	return s
}

// verifyCatalogRun checks that a run stored one row per model element
func verifyCatalogRun(t *testing.T, count countFunc, placeholder, runID string, s *schema.Schema) {
	t.Helper()
	ctx := context.Background()

	columns := 0
	for _, cols := range s.Columns {
		columns += len(cols)
	}

	want := map[string]int{
		"ddl_tables":        len(s.Tables),
		"ddl_columns":       columns,
		"ddl_relationships": len(s.Relationships),
		"ddl_indexes":       len(s.Indexes),
		"ddl_constraints":   len(s.Constraints),
	}
	for table, n := range want {
		got, err := count(ctx, "SELECT COUNT(*) FROM "+table+" WHERE run_id = "+placeholder, runID)
		if err != nil {
			t.Fatalf("Failed to count %s: %v", table, err)
		}
		if got != n {
			t.Errorf("Expected %d rows in %s for run %s, got %d", n, table, runID, got)
		}
	}

	got, err := count(ctx, "SELECT COUNT(*) FROM ddl_runs WHERE id = "+placeholder, runID)
	if err != nil {
		t.Fatalf("Failed to count ddl_runs: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected run %s in ddl_runs, got %d rows", runID, got)
	}
}

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, s *schema.Schema, expectedTables []string) {
	t.Helper()

	if len(s.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(s.Tables))
	}

	for _, tableName := range expectedTables {
		if s.Table(tableName) == nil {
			t.Errorf("Expected table %s not found in schema", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, s *schema.Schema, tableName string, expectedColumns []string) {
	t.Helper()

	for _, colName := range expectedColumns {
		if s.Column(tableName, colName) == nil {
			t.Errorf("Expected column %s not found in %s table", colName, tableName)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, s *schema.Schema, tableName string, expectedPK []string) {
	t.Helper()

	pk := s.PrimaryKey(tableName)
	if len(pk) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, pk)
		return
	}

	for i, col := range expectedPK {
		if pk[i] != col {
			t.Errorf("Expected primary key %v, got %v", expectedPK, pk)
			return
		}
	}
}

// verifyUniqueConstraint checks that a column has a unique constraint
func verifyUniqueConstraint(t *testing.T, s *schema.Schema, tableName, columnName string) {
	t.Helper()

	for _, c := range s.TableConstraints(tableName) {
		if c.ConstraintType == schema.ConstraintUnique && c.HasColumn(columnName) {
			return
		}
	}

	t.Errorf("Expected %s column to have unique constraint", columnName)
}

// verifyForeignKey checks that an explicit or inferred relationship exists
func verifyForeignKey(t *testing.T, s *schema.Schema, tableName, sourceColumn, targetTable string) {
	t.Helper()

	for _, rel := range s.Relationships {
		if rel.FromTable == tableName && rel.FromColumn == sourceColumn && rel.ToTable == targetTable {
			return
		}
	}

	t.Errorf("Expected relationship from %s.%s to %s not found", tableName, sourceColumn, targetTable)
}

// verifyIndex checks that an index exists with the expected columns
func verifyIndex(t *testing.T, s *schema.Schema, tableName, indexName string, expectedColumns []string) {
	t.Helper()

	for _, idx := range s.Indexes {
		if idx.Table != tableName || idx.Name != indexName {
			continue
		}
		if len(idx.Columns) != len(expectedColumns) {
			t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
			return
		}
		for i, col := range expectedColumns {
			if idx.Columns[i] != col {
				t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
				return
			}
		}
		return
	}

	t.Errorf("Expected index %s on %s table not found", indexName, tableName)
}
