package builder

import (
	"testing"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

func intPtr(n int) *int {
	return &n
}

func column(name string, kind ast.TypeKind, opts ...ast.ColumnOption) ast.ColumnDef {
	return ast.ColumnDef{Name: name, Type: ast.DataType{Kind: kind}, Options: opts}
}

func primaryKeyOption() ast.ColumnOption {
	return ast.ColumnOption{Kind: ast.OptionUnique, IsPrimary: true}
}

func notNullOption() ast.ColumnOption {
	return ast.ColumnOption{Kind: ast.OptionNotNull}
}

func defaultOption(text string) ast.ColumnOption {
	return ast.ColumnOption{Kind: ast.OptionDefault, Expr: &ast.Expr{Kind: ast.ExprOther, Text: text}}
}

func createTableStmt(name string, cols []ast.ColumnDef, constraints ...ast.TableConstraint) ast.Statement {
	return ast.Statement{
		Kind:        ast.StatementCreateTable,
		CreateTable: &ast.CreateTable{Name: name, Columns: cols, Constraints: constraints},
	}
}

func alterTable(name string, ops ...ast.AlterOperation) ast.Statement {
	return ast.Statement{
		Kind:       ast.StatementAlterTable,
		AlterTable: &ast.AlterTable{Name: name, Operations: ops},
	}
}

func foreignKey(name string, cols []string, table string, referred []string) ast.TableConstraint {
	return ast.TableConstraint{
		Kind:            ast.ConstraintForeignKey,
		Name:            name,
		Columns:         cols,
		ForeignTable:    table,
		ReferredColumns: referred,
	}
}

func primaryKey(name string, cols ...string) ast.TableConstraint {
	return ast.TableConstraint{Kind: ast.ConstraintUnique, Name: name, Columns: cols, IsPrimary: true}
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdentifier, Ident: name, Text: name}
}

func binary(left *ast.Expr, op string, right *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBinaryOp, Op: op, Left: left, Right: right, Text: left.Text + " " + op + " " + right.Text}
}

func literal(text string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprOther, Text: text}
}

// apply builds a model from statements without inference
func apply(stmts ...ast.Statement) *schema.Schema {
	s := schema.New()
	for _, stmt := range stmts {
		Apply(s, stmt)
	}
	return s
}

// parentChild is CREATE TABLE a (id INT PRIMARY KEY); CREATE TABLE b (id INT PRIMARY KEY, a_id INT, FOREIGN KEY (a_id) REFERENCES a(id))
func parentChild(constraintName string) []ast.Statement {
	return []ast.Statement{
		createTableStmt("a", []ast.ColumnDef{column("id", ast.TypeInt, primaryKeyOption())}),
		createTableStmt("b",
			[]ast.ColumnDef{
				column("id", ast.TypeInt, primaryKeyOption()),
				column("a_id", ast.TypeInt),
			},
			foreignKey(constraintName, []string{"a_id"}, "a", []string{"id"}),
		),
	}
}

func mustColumn(t *testing.T, s *schema.Schema, table, name string) schema.Column {
	t.Helper()
	col := s.Column(table, name)
	if col == nil {
		t.Fatalf("column %s.%s not found", table, name)
	}
	return *col
}

func relationshipsOfType(s *schema.Schema, relType string) []schema.Relationship {
	var out []schema.Relationship
	for _, r := range s.Relationships {
		if r.RelationshipType == relType {
			out = append(out, r)
		}
	}
	return out
}

func constraintNames(s *schema.Schema, table string) []string {
	var names []string
	for _, c := range s.TableConstraints(table) {
		names = append(names, c.Name)
	}
	return names
}

func strPtrValue(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}
