package schema

import (
	"slices"
	"strings"
)

// Table types
const (
	TableTypeTable            = "TABLE"
	TableTypeView             = "VIEW"
	TableTypeMaterializedView = "MATERIALIZED VIEW"
)

// Relationship types
const (
	RelationshipForeignKey = "FOREIGN_KEY"
	RelationshipInferred   = "INFERRED_FK"
)

// Constraint types. Foreign key constraints may carry " ON DELETE x" and
// " ON UPDATE x" suffixes after ConstraintForeignKey.
const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintUnique     = "UNIQUE"
	ConstraintForeignKey = "FOREIGN KEY"
	ConstraintCheck      = "CHECK"
)

// Placeholder names for unnamed objects
const (
	UnnamedIndex      = "unnamed_index"
	UnnamedForeignKey = "unnamed_fk"
	UnnamedPrimaryKey = "unnamed_pk"
	UnnamedUnique     = "unnamed_unique"
	UnnamedCheck      = "unnamed_check"
)

const (
	// DefaultIndexType is used when no index method is known.
	DefaultIndexType = "BTREE"
	// UnknownDataType is the data type of anything the normalizer does not model.
	UnknownDataType = "UNKNOWN"
)

// Schema is the model built from a DDL document
type Schema struct {
	Tables        []Table             `json:"tables" yaml:"tables"`
	Columns       map[string][]Column `json:"columns" yaml:"columns"`
	Relationships []Relationship      `json:"relationships" yaml:"relationships"`
	Indexes       []Index             `json:"indexes" yaml:"indexes"`
	Constraints   []Constraint        `json:"constraints" yaml:"constraints"`
}

// Table represents a table, view or materialized view
type Table struct {
	Name          string  `json:"name" yaml:"name"`
	Schema        *string `json:"schema" yaml:"schema"`
	TableType     string  `json:"table_type" yaml:"table_type"`
	EstimatedRows *int64  `json:"estimated_rows" yaml:"estimated_rows"`
}

// Column represents a table column
type Column struct {
	Name         string  `json:"name" yaml:"name"`
	DataType     string  `json:"data_type" yaml:"data_type"`
	Nullable     bool    `json:"nullable" yaml:"nullable"`
	DefaultValue *string `json:"default_value" yaml:"default_value"`
	IsPrimaryKey bool    `json:"is_primary_key" yaml:"is_primary_key"`
	IsForeignKey bool    `json:"is_foreign_key" yaml:"is_foreign_key"`
	// References is "<table>.<column>" of the first referenced column.
	References *string `json:"references" yaml:"references"`
}

// Relationship is a directed edge between two columns
type Relationship struct {
	FromTable        string `json:"from_table" yaml:"from_table"`
	FromColumn       string `json:"from_column" yaml:"from_column"`
	ToTable          string `json:"to_table" yaml:"to_table"`
	ToColumn         string `json:"to_column" yaml:"to_column"`
	RelationshipType string `json:"relationship_type" yaml:"relationship_type"`
}

// Index represents a table index
type Index struct {
	Name      string   `json:"name" yaml:"name"`
	Table     string   `json:"table" yaml:"table"`
	Columns   []string `json:"columns" yaml:"columns"`
	Unique    bool     `json:"unique" yaml:"unique"`
	IndexType string   `json:"index_type" yaml:"index_type"`
}

// Constraint represents a table constraint
type Constraint struct {
	Name             string   `json:"name" yaml:"name"`
	Table            string   `json:"table" yaml:"table"`
	ConstraintType   string   `json:"constraint_type" yaml:"constraint_type"`
	Columns          []string `json:"columns" yaml:"columns"`
	ReferenceTable   *string  `json:"reference_table" yaml:"reference_table"`
	ReferenceColumns []string `json:"reference_columns" yaml:"reference_columns"`
}

// IsForeignKey reports whether the constraint is a foreign key, with or
// without referential action suffixes.
func (c Constraint) IsForeignKey() bool {
	return strings.HasPrefix(c.ConstraintType, ConstraintForeignKey)
}

// IsPrimaryKey reports whether the constraint is a primary key.
func (c Constraint) IsPrimaryKey() bool {
	return c.ConstraintType == ConstraintPrimaryKey
}

// HasColumn reports whether the constraint names the column.
func (c Constraint) HasColumn(name string) bool {
	return slices.Contains(c.Columns, name)
}

// HasColumn reports whether the index covers the column.
func (i Index) HasColumn(name string) bool {
	return slices.Contains(i.Columns, name)
}
