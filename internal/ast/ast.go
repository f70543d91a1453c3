// Package ast defines the statement representation consumed by the schema
// builder. Every node is a closed tagged union: a Kind field selects which
// of the payload fields is meaningful, and every consumer switches on Kind
// with an explicit default arm.
package ast

// StatementKind selects the payload of a Statement
type StatementKind int

const (
	StatementOther StatementKind = iota
	StatementCreateTable
	StatementCreateIndex
	StatementAlterTable
	StatementCreateView
	StatementDrop
	StatementTruncate
	StatementCreateSchema
)

var statementKindNames = map[StatementKind]string{
	StatementOther:        "other",
	StatementCreateTable:  "create table",
	StatementCreateIndex:  "create index",
	StatementAlterTable:   "alter table",
	StatementCreateView:   "create view",
	StatementDrop:         "drop",
	StatementTruncate:     "truncate",
	StatementCreateSchema: "create schema",
}

func (k StatementKind) String() string {
	if name, ok := statementKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Statement is one parsed DDL statement
type Statement struct {
	Kind         StatementKind
	CreateTable  *CreateTable
	CreateIndex  *CreateIndex
	AlterTable   *AlterTable
	CreateView   *CreateView
	Drop         *Drop
	Truncate     *Truncate
	CreateSchema *CreateSchema
}

// CreateTable is CREATE TABLE
type CreateTable struct {
	Name        string
	IfNotExists bool
	Columns     []ColumnDef
	Constraints []TableConstraint
}

// CreateIndex is CREATE [UNIQUE] INDEX
type CreateIndex struct {
	// Name is empty for unnamed indexes
	Name        string
	Table       string
	Columns     []string
	Unique      bool
	IfNotExists bool
}

// AlterTable is ALTER TABLE with one or more operations
type AlterTable struct {
	Name       string
	Operations []AlterOperation
}

// CreateView is CREATE [MATERIALIZED] VIEW
type CreateView struct {
	Name         string
	Columns      []string
	Materialized bool
}

// ObjectType is the object kind named by DROP
type ObjectType int

const (
	ObjectOther ObjectType = iota
	ObjectTable
	ObjectView
)

// Drop is DROP TABLE / DROP VIEW / DROP of anything else
type Drop struct {
	ObjectType ObjectType
	Names      []string
}

// Truncate is TRUNCATE [TABLE]
type Truncate struct {
	Tables []string
}

// CreateSchema is CREATE SCHEMA
type CreateSchema struct {
	Name string
}

// ColumnDef is one column definition
type ColumnDef struct {
	Name    string
	Type    DataType
	Options []ColumnOption
}

// ColumnOptionKind selects the meaning of a ColumnOption
type ColumnOptionKind int

const (
	OptionOther ColumnOptionKind = iota
	OptionNull
	OptionNotNull
	OptionDefault
	// OptionUnique covers both UNIQUE and PRIMARY KEY, see IsPrimary
	OptionUnique
	OptionReferences
	OptionCheck
)

// ColumnOption is an inline column option
type ColumnOption struct {
	Kind ColumnOptionKind
	// Name is the constraint name given with CONSTRAINT, if any
	Name string
	// Expr is the default or check expression
	Expr *Expr

	IsPrimary bool
	// HasCharacteristics is set when DEFERRABLE or INITIALLY clauses follow
	HasCharacteristics bool

	ForeignTable    string
	ReferredColumns []string
	OnDelete        string
	OnUpdate        string
}

// ConstraintKind selects the meaning of a TableConstraint
type ConstraintKind int

const (
	ConstraintOther ConstraintKind = iota
	ConstraintForeignKey
	// ConstraintUnique covers both UNIQUE and PRIMARY KEY, see IsPrimary
	ConstraintUnique
	ConstraintCheck
)

// TableConstraint is a table-level constraint
type TableConstraint struct {
	Kind ConstraintKind
	// Name is empty for unnamed constraints
	Name    string
	Columns []string

	IsPrimary bool

	ForeignTable    string
	ReferredColumns []string
	// OnDelete and OnUpdate hold the referential action text, empty when absent
	OnDelete string
	OnUpdate string

	Check *Expr
}

// AlterKind selects the meaning of an AlterOperation
type AlterKind int

const (
	AlterOther AlterKind = iota
	AlterAddConstraint
	AlterDropConstraint
	AlterAddColumn
	AlterDropColumn
	AlterRenameColumn
	AlterColumn
)

// AlterColumnKind selects the sub-operation of AlterColumn
type AlterColumnKind int

const (
	AlterColumnOther AlterColumnKind = iota
	AlterColumnSetNotNull
	AlterColumnDropNotNull
	AlterColumnSetDefault
	AlterColumnDropDefault
)

// AlterOperation is one ALTER TABLE operation
type AlterOperation struct {
	Kind AlterKind

	// Constraint is set for AlterAddConstraint
	Constraint *TableConstraint
	// Column is set for AlterAddColumn
	Column *ColumnDef

	// Name is the constraint name for AlterDropConstraint and the column name
	// for AlterDropColumn, AlterRenameColumn and AlterColumn
	Name    string
	NewName string

	ColumnOp AlterColumnKind
	Default  *Expr
}

// TypeKind is the closed set of data types the normalizer understands
type TypeKind int

const (
	TypeOther TypeKind = iota
	TypeChar
	TypeVarchar
	TypeText
	TypeInt
	TypeBigInt
	TypeSmallInt
	TypeFloat
	TypeDouble
	TypeDecimal
	TypeBoolean
	TypeDate
	TypeTime
	TypeTimestamp
	TypeDatetime
	TypeJSON
	TypeUUID
)

// DataType is a column data type with its optional modifiers
type DataType struct {
	Kind      TypeKind
	Length    *int
	Precision *int
	Scale     *int
	TimeZone  bool
	// Name is the type name as the grammar reported it
	Name string
}

// ExprKind selects the meaning of an Expr
type ExprKind int

const (
	ExprOther ExprKind = iota
	ExprIdentifier
	ExprCompoundIdentifier
	ExprBinaryOp
	ExprNested
	ExprFunction
)

// Expr is an expression tree. Text always holds the SQL rendering.
type Expr struct {
	Kind  ExprKind
	Text  string
	Ident string
	Parts []string
	Op    string
	Left  *Expr
	Right *Expr
	Inner *Expr
	Args  []*Expr
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.Text
}
