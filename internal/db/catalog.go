// Package db persists schema models into catalog tables of a PostgreSQL,
// MySQL or SQLite database. It stores the model only; the DDL the model was
// built from is never executed.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tordrt/ddlschema/internal/schema"
)

// Catalog stores schema models, one run per Export call
type Catalog interface {
	// Export writes s as a new run and returns the run id
	Export(ctx context.Context, s *schema.Schema) (string, error)
	Close() error
}

// Open connects to the catalog database named by url. Supported schemes are
// postgres://, postgresql://, mysql:// and sqlite://.
func Open(ctx context.Context, url string) (Catalog, error) {
	dbType, connStr, err := parseDatabaseURL(url)
	if err != nil {
		return nil, err
	}

	switch dbType {
	case "postgres":
		return NewPostgresCatalog(ctx, connStr)
	case "mysql":
		return NewMySQLCatalog(ctx, connStr)
	case "sqlite":
		return NewSQLiteCatalog(ctx, connStr)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// parseDatabaseURL detects database type and returns connection string
func parseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		// Strip sqlite:// prefix to get file path
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}

// columnKind is the portable type of a catalog column
type columnKind int

const (
	kindID columnKind = iota
	kindText
	kindInt
	kindBool
	kindTime
)

type catalogColumn struct {
	name     string
	kind     columnKind
	nullable bool
}

// catalogTable describes one catalog table; rows are built per export
type catalogTable struct {
	name    string
	columns []catalogColumn
	rows    func(runID string, s *schema.Schema) [][]any
}

func runIDColumn() catalogColumn {
	return catalogColumn{name: "run_id", kind: kindID}
}

func positionColumn() catalogColumn {
	return catalogColumn{name: "position", kind: kindInt}
}

// catalogTables lists the catalog in creation and insertion order
var catalogTables = []catalogTable{
	{
		name: "ddl_runs",
		columns: []catalogColumn{
			{name: "id", kind: kindID},
			{name: "created_at", kind: kindTime},
			{name: "table_count", kind: kindInt},
			{name: "relationship_count", kind: kindInt},
			{name: "index_count", kind: kindInt},
			{name: "constraint_count", kind: kindInt},
		},
		rows: func(runID string, s *schema.Schema) [][]any {
			return [][]any{{runID, time.Now().UTC(), len(s.Tables), len(s.Relationships), len(s.Indexes), len(s.Constraints)}}
		},
	},
	{
		name: "ddl_tables",
		columns: []catalogColumn{
			runIDColumn(),
			positionColumn(),
			{name: "name", kind: kindText},
			{name: "schema_name", kind: kindText, nullable: true},
			{name: "table_type", kind: kindText},
			{name: "estimated_rows", kind: kindInt, nullable: true},
		},
		rows: func(runID string, s *schema.Schema) [][]any {
			rows := make([][]any, 0, len(s.Tables))
			for i, t := range s.Tables {
				rows = append(rows, []any{runID, i, t.Name, t.Schema, t.TableType, t.EstimatedRows})
			}
			return rows
		},
	},
	{
		name: "ddl_columns",
		columns: []catalogColumn{
			runIDColumn(),
			{name: "table_name", kind: kindText},
			positionColumn(),
			{name: "name", kind: kindText},
			{name: "data_type", kind: kindText},
			{name: "nullable", kind: kindBool},
			{name: "default_value", kind: kindText, nullable: true},
			{name: "is_primary_key", kind: kindBool},
			{name: "is_foreign_key", kind: kindBool},
			{name: "references_column", kind: kindText, nullable: true},
		},
		rows: func(runID string, s *schema.Schema) [][]any {
			var rows [][]any
			// Follow table order so positions are reproducible
			for _, t := range s.Tables {
				for i, c := range s.Columns[t.Name] {
					rows = append(rows, []any{runID, t.Name, i, c.Name, c.DataType, c.Nullable, c.DefaultValue, c.IsPrimaryKey, c.IsForeignKey, c.References})
				}
			}
			return rows
		},
	},
	{
		name: "ddl_relationships",
		columns: []catalogColumn{
			runIDColumn(),
			positionColumn(),
			{name: "from_table", kind: kindText},
			{name: "from_column", kind: kindText},
			{name: "to_table", kind: kindText},
			{name: "to_column", kind: kindText},
			{name: "relationship_type", kind: kindText},
		},
		rows: func(runID string, s *schema.Schema) [][]any {
			rows := make([][]any, 0, len(s.Relationships))
			for i, r := range s.Relationships {
				rows = append(rows, []any{runID, i, r.FromTable, r.FromColumn, r.ToTable, r.ToColumn, r.RelationshipType})
			}
			return rows
		},
	},
	{
		name: "ddl_indexes",
		columns: []catalogColumn{
			runIDColumn(),
			positionColumn(),
			{name: "name", kind: kindText},
			{name: "table_name", kind: kindText},
			{name: "columns", kind: kindText},
			{name: "is_unique", kind: kindBool},
			{name: "index_type", kind: kindText},
		},
		rows: func(runID string, s *schema.Schema) [][]any {
			rows := make([][]any, 0, len(s.Indexes))
			for i, idx := range s.Indexes {
				rows = append(rows, []any{runID, i, idx.Name, idx.Table, joinList(idx.Columns), idx.Unique, idx.IndexType})
			}
			return rows
		},
	},
	{
		name: "ddl_constraints",
		columns: []catalogColumn{
			runIDColumn(),
			positionColumn(),
			{name: "name", kind: kindText},
			{name: "table_name", kind: kindText},
			{name: "constraint_type", kind: kindText},
			{name: "columns", kind: kindText},
			{name: "reference_table", kind: kindText, nullable: true},
			{name: "reference_columns", kind: kindText, nullable: true},
		},
		rows: func(runID string, s *schema.Schema) [][]any {
			rows := make([][]any, 0, len(s.Constraints))
			for i, c := range s.Constraints {
				var refColumns *string
				if c.ReferenceTable != nil {
					joined := joinList(c.ReferenceColumns)
					refColumns = &joined
				}
				rows = append(rows, []any{runID, i, c.Name, c.Table, c.ConstraintType, joinList(c.Columns), c.ReferenceTable, refColumns})
			}
			return rows
		},
	},
}

// joinList stores ordered name lists as comma-separated text
func joinList(names []string) string {
	return strings.Join(names, ",")
}

func newRunID() string {
	return uuid.NewString()
}

// dialect renders the catalog DDL and placeholders for one database
type dialect struct {
	types       map[columnKind]string
	placeholder func(n int) string
}

func (d dialect) createTable(t catalogTable) string {
	defs := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		def := c.name + " " + d.types[c.kind]
		if !c.nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if t.columns[0].name == "id" {
		defs = append(defs, "PRIMARY KEY (id)")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(defs, ", "))
}

func (d dialect) insert(t catalogTable) string {
	names := make([]string, 0, len(t.columns))
	params := make([]string, 0, len(t.columns))
	for i, c := range t.columns {
		names = append(names, c.name)
		params = append(params, d.placeholder(i+1))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(names, ", "), strings.Join(params, ", "))
}
