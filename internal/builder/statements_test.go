package builder

import (
	"reflect"
	"testing"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

func TestApplyCreateTable(t *testing.T) {
	s := apply(createTableStmt("users", []ast.ColumnDef{
		column("id", ast.TypeInt, primaryKeyOption()),
		column("email", ast.TypeVarchar, notNullOption()),
		column("status", ast.TypeText, defaultOption("'active'")),
		column("payload", ast.TypeOther),
	}))

	if len(s.Tables) != 1 {
		t.Fatalf("len(Tables) = %d, want 1", len(s.Tables))
	}
	table := s.Tables[0]
	if table.Name != "users" || table.TableType != schema.TableTypeTable || table.Schema != nil || table.EstimatedRows != nil {
		t.Errorf("Tables[0] = %+v, want users TABLE with no schema and no row estimate", table)
	}

	tests := []struct {
		column       string
		wantType     string
		wantNullable bool
		wantDefault  string
		wantPK       bool
	}{
		{"id", "INT(11)", true, "<nil>", true},
		{"email", "VARCHAR", false, "<nil>", false},
		{"status", "TEXT", true, "'active'", false},
		{"payload", "UNKNOWN", true, "<nil>", false},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col := mustColumn(t, s, "users", tt.column)
			if col.DataType != tt.wantType {
				t.Errorf("DataType = %q, want %q", col.DataType, tt.wantType)
			}
			if col.Nullable != tt.wantNullable {
				t.Errorf("Nullable = %v, want %v", col.Nullable, tt.wantNullable)
			}
			if got := strPtrValue(col.DefaultValue); got != tt.wantDefault {
				t.Errorf("DefaultValue = %q, want %q", got, tt.wantDefault)
			}
			if col.IsPrimaryKey != tt.wantPK {
				t.Errorf("IsPrimaryKey = %v, want %v", col.IsPrimaryKey, tt.wantPK)
			}
		})
	}

	if got := constraintNames(s, "users"); !reflect.DeepEqual(got, []string{schema.UnnamedPrimaryKey}) {
		t.Errorf("constraints = %v, want [%s]", got, schema.UnnamedPrimaryKey)
	}
}

func TestApplyCreateTableDeferrablePrimaryKey(t *testing.T) {
	s := apply(createTableStmt("t", []ast.ColumnDef{
		column("id", ast.TypeInt, ast.ColumnOption{Kind: ast.OptionUnique, IsPrimary: true, HasCharacteristics: true}),
	}))

	if mustColumn(t, s, "t", "id").IsPrimaryKey {
		t.Error("IsPrimaryKey = true for primary key with characteristics, want false")
	}
	if len(s.Constraints) != 0 {
		t.Errorf("len(Constraints) = %d, want 0", len(s.Constraints))
	}
}

func TestApplyCreateTableRedefinition(t *testing.T) {
	stmts := parentChild("fk_a")
	stmts = append(stmts,
		createTableStmt("c", []ast.ColumnDef{column("id", ast.TypeInt)}),
		ast.Statement{Kind: ast.StatementCreateIndex, CreateIndex: &ast.CreateIndex{Name: "idx_b", Table: "b", Columns: []string{"a_id"}}},
		createTableStmt("b", []ast.ColumnDef{column("name", ast.TypeText)}),
	)
	s := apply(stmts...)

	names := make([]string, 0, len(s.Tables))
	for _, table := range s.Tables {
		names = append(names, table.Name)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(names, want) {
		t.Errorf("tables = %v, want %v", names, want)
	}
	if got := len(s.Columns["b"]); got != 1 {
		t.Errorf("len(Columns[b]) = %d, want 1", got)
	}
	if got := len(s.TableConstraints("b")); got != 0 {
		t.Errorf("constraints on b = %d, want 0", got)
	}
	if got := len(s.TableIndexes("b")); got != 0 {
		t.Errorf("indexes on b = %d, want 0", got)
	}
	if got := len(s.OutgoingRelationships("b")); got != 0 {
		t.Errorf("relationships from b = %d, want 0", got)
	}
}

func TestApplyCreateTableIfNotExists(t *testing.T) {
	first := createTableStmt("t", []ast.ColumnDef{column("id", ast.TypeInt)})
	second := createTableStmt("t", []ast.ColumnDef{column("other", ast.TypeText)})
	second.CreateTable.IfNotExists = true

	s := apply(first, second)
	if len(s.Tables) != 1 {
		t.Errorf("len(Tables) = %d, want 1", len(s.Tables))
	}
	if s.Column("t", "id") == nil {
		t.Error("original column t.id replaced by CREATE TABLE IF NOT EXISTS")
	}
}

func TestApplyCreateIndex(t *testing.T) {
	tests := []struct {
		name string
		ci   ast.CreateIndex
		want schema.Index
	}{
		{
			name: "named unique index",
			ci:   ast.CreateIndex{Name: "idx_email", Table: "users", Columns: []string{"email"}, Unique: true},
			want: schema.Index{Name: "idx_email", Table: "users", Columns: []string{"email"}, Unique: true, IndexType: "BTREE"},
		},
		{
			name: "unnamed index",
			ci:   ast.CreateIndex{Table: "users", Columns: []string{"a", "b"}},
			want: schema.Index{Name: "unnamed_index", Table: "users", Columns: []string{"a", "b"}, IndexType: "BTREE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci := tt.ci
			s := apply(ast.Statement{Kind: ast.StatementCreateIndex, CreateIndex: &ci})
			if len(s.Indexes) != 1 {
				t.Fatalf("len(Indexes) = %d, want 1", len(s.Indexes))
			}
			if !reflect.DeepEqual(s.Indexes[0], tt.want) {
				t.Errorf("Indexes[0] = %+v, want %+v", s.Indexes[0], tt.want)
			}
		})
	}
}

func TestApplyCreateView(t *testing.T) {
	tests := []struct {
		name         string
		materialized bool
		wantType     string
	}{
		{"view", false, schema.TableTypeView},
		{"materialized view", true, schema.TableTypeMaterializedView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apply(ast.Statement{
				Kind:       ast.StatementCreateView,
				CreateView: &ast.CreateView{Name: "v", Columns: []string{"x", "y"}, Materialized: tt.materialized},
			})
			if len(s.Tables) != 1 || s.Tables[0].TableType != tt.wantType {
				t.Fatalf("Tables = %+v, want one %s", s.Tables, tt.wantType)
			}
			want := []schema.Column{
				{Name: "x", DataType: "UNKNOWN", Nullable: true},
				{Name: "y", DataType: "UNKNOWN", Nullable: true},
			}
			if !reflect.DeepEqual(s.Columns["v"], want) {
				t.Errorf("Columns[v] = %+v, want %+v", s.Columns["v"], want)
			}
		})
	}
}

func TestApplyCreateOrReplaceView(t *testing.T) {
	view := func(cols ...string) ast.Statement {
		return ast.Statement{Kind: ast.StatementCreateView, CreateView: &ast.CreateView{Name: "v", Columns: cols}}
	}
	s := apply(view("a"), view("a", "b"))

	if len(s.Tables) != 1 {
		t.Errorf("len(Tables) = %d, want 1", len(s.Tables))
	}
	if got := len(s.Columns["v"]); got != 2 {
		t.Errorf("len(Columns[v]) = %d, want 2", got)
	}
}

func TestApplyDropTable(t *testing.T) {
	stmts := parentChild("fk_a")
	stmts = append(stmts,
		ast.Statement{Kind: ast.StatementCreateIndex, CreateIndex: &ast.CreateIndex{Name: "idx_a", Table: "a", Columns: []string{"id"}}},
		ast.Statement{Kind: ast.StatementDrop, Drop: &ast.Drop{ObjectType: ast.ObjectTable, Names: []string{"a"}}},
		alterTable("a", ast.AlterOperation{Kind: ast.AlterAddColumn, Column: &ast.ColumnDef{Name: "late", Type: ast.DataType{Kind: ast.TypeInt}}}),
	)
	s := apply(stmts...)

	if s.HasTable("a") {
		t.Error("table a still present after DROP TABLE")
	}
	if _, ok := s.Columns["a"]; ok {
		t.Error("Columns[a] present after DROP TABLE or recreated by ALTER")
	}
	for _, r := range s.Relationships {
		if r.FromTable == "a" || r.ToTable == "a" {
			t.Errorf("relationship %+v still touches a", r)
		}
	}
	if got := len(s.TableIndexes("a")); got != 0 {
		t.Errorf("indexes on a = %d, want 0", got)
	}
	if got := len(s.TableConstraints("a")); got != 0 {
		t.Errorf("constraints on a = %d, want 0", got)
	}
	if got := len(s.TableConstraints("b")); got != 2 {
		t.Errorf("constraints on b = %d, want 2", got)
	}
}

func TestApplyDropView(t *testing.T) {
	s := apply(
		createTableStmt("v", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
		ast.Statement{Kind: ast.StatementCreateIndex, CreateIndex: &ast.CreateIndex{Name: "idx_v", Table: "v", Columns: []string{"id"}}},
		ast.Statement{Kind: ast.StatementDrop, Drop: &ast.Drop{ObjectType: ast.ObjectView, Names: []string{"v"}}},
	)

	if s.HasTable("v") {
		t.Error("v still present after DROP VIEW")
	}
	if len(s.Indexes) != 1 || len(s.Constraints) != 1 {
		t.Errorf("DROP VIEW removed indexes or constraints: %d indexes, %d constraints", len(s.Indexes), len(s.Constraints))
	}
}

func TestApplyDropOtherObject(t *testing.T) {
	s := apply(
		createTableStmt("t", []ast.ColumnDef{column("id", ast.TypeInt)}),
		ast.Statement{Kind: ast.StatementDrop, Drop: &ast.Drop{ObjectType: ast.ObjectOther, Names: []string{"t"}}},
	)
	if !s.HasTable("t") {
		t.Error("DROP of another object type removed table t")
	}
}

func TestApplyTruncate(t *testing.T) {
	s := apply(
		createTableStmt("t", []ast.ColumnDef{column("id", ast.TypeInt)}),
		createTableStmt("u", []ast.ColumnDef{column("id", ast.TypeInt)}),
		ast.Statement{Kind: ast.StatementTruncate, Truncate: &ast.Truncate{Tables: []string{"t", "missing"}}},
	)

	if rows := s.Table("t").EstimatedRows; rows == nil || *rows != 0 {
		t.Errorf("t.EstimatedRows = %v, want 0", rows)
	}
	if rows := s.Table("u").EstimatedRows; rows != nil {
		t.Errorf("u.EstimatedRows = %v, want nil", *rows)
	}
	if len(s.Tables) != 2 {
		t.Errorf("len(Tables) = %d, want 2", len(s.Tables))
	}
}

func TestApplyCreateSchemaBackfill(t *testing.T) {
	s := apply(
		createTableStmt("a", nil),
		ast.Statement{Kind: ast.StatementCreateSchema, CreateSchema: &ast.CreateSchema{Name: "app"}},
		createTableStmt("b", nil),
		ast.Statement{Kind: ast.StatementCreateSchema, CreateSchema: &ast.CreateSchema{Name: "later"}},
		createTableStmt("c", nil),
	)

	want := map[string]string{"a": "app", "b": "later", "c": "<nil>"}
	for name, schemaName := range want {
		if got := strPtrValue(s.Table(name).Schema); got != schemaName {
			t.Errorf("%s.Schema = %q, want %q", name, got, schemaName)
		}
	}
}

func TestApplyIgnoresOtherStatements(t *testing.T) {
	s := apply(
		createTableStmt("t", []ast.ColumnDef{column("id", ast.TypeInt)}),
		ast.Statement{Kind: ast.StatementOther},
		ast.Statement{Kind: ast.StatementCreateTable},
	)
	if len(s.Tables) != 1 {
		t.Errorf("len(Tables) = %d, want 1", len(s.Tables))
	}
}
