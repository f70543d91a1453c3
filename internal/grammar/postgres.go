// Package grammar adapts SQL grammars to the statement representation in
// internal/ast: PostgreSQL through pg_query, with the TiDB MySQL grammar as a
// fallback for generic DDL PostgreSQL rejects. Every parse-tree node the
// builder does not model becomes an "other" variant rather than an error.
package grammar

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/tordrt/ddlschema/internal/ast"
)

// PostgresParser parses DDL with the PostgreSQL grammar
type PostgresParser struct{}

// NewPostgresParser creates a parser backed by pg_query
func NewPostgresParser() *PostgresParser {
	return &PostgresParser{}
}

// Parse parses sql and maps each raw statement to exactly one ast.Statement
func (p *PostgresParser) Parse(sql string) ([]ast.Statement, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL: %w", err)
	}

	stmts := make([]ast.Statement, 0, len(result.Stmts))
	for _, raw := range result.Stmts {
		stmts = append(stmts, convertStatement(raw.GetStmt(), sql))
	}
	return stmts, nil
}

// convertStatement maps one raw statement; src is the text it was parsed
// from, used to recover type spellings the grammar rewrites
func convertStatement(node *pg_query.Node, src string) ast.Statement {
	if node == nil {
		return ast.Statement{Kind: ast.StatementOther}
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_CreateStmt:
		return ast.Statement{Kind: ast.StatementCreateTable, CreateTable: convertCreateTable(n.CreateStmt, src)}
	case *pg_query.Node_IndexStmt:
		return ast.Statement{Kind: ast.StatementCreateIndex, CreateIndex: convertCreateIndex(n.IndexStmt)}
	case *pg_query.Node_AlterTableStmt:
		return convertAlterTable(n.AlterTableStmt, src)
	case *pg_query.Node_RenameStmt:
		return convertRename(n.RenameStmt)
	case *pg_query.Node_ViewStmt:
		return ast.Statement{Kind: ast.StatementCreateView, CreateView: convertView(n.ViewStmt)}
	case *pg_query.Node_CreateTableAsStmt:
		return convertCreateTableAs(n.CreateTableAsStmt)
	case *pg_query.Node_DropStmt:
		return ast.Statement{Kind: ast.StatementDrop, Drop: convertDrop(n.DropStmt)}
	case *pg_query.Node_TruncateStmt:
		return ast.Statement{Kind: ast.StatementTruncate, Truncate: convertTruncate(n.TruncateStmt)}
	case *pg_query.Node_CreateSchemaStmt:
		return ast.Statement{
			Kind:         ast.StatementCreateSchema,
			CreateSchema: &ast.CreateSchema{Name: n.CreateSchemaStmt.GetSchemaname()},
		}
	default:
		return ast.Statement{Kind: ast.StatementOther}
	}
}

func convertCreateTable(stmt *pg_query.CreateStmt, src string) *ast.CreateTable {
	ct := &ast.CreateTable{
		Name:        relationName(stmt.GetRelation()),
		IfNotExists: stmt.GetIfNotExists(),
	}

	for _, elt := range stmt.GetTableElts() {
		if colDef := elt.GetColumnDef(); colDef != nil {
			ct.Columns = append(ct.Columns, convertColumnDef(colDef, src))
			continue
		}
		if cons := elt.GetConstraint(); cons != nil {
			if tc, ok := convertTableConstraint(cons); ok {
				ct.Constraints = append(ct.Constraints, tc)
			}
		}
	}
	return ct
}

func convertColumnDef(colDef *pg_query.ColumnDef, src string) ast.ColumnDef {
	def := ast.ColumnDef{
		Name: colDef.GetColname(),
		Type: convertTypeName(colDef.GetTypeName(), src),
	}

	for _, node := range colDef.GetConstraints() {
		cons := node.GetConstraint()
		if cons == nil {
			continue
		}

		switch cons.GetContype() {
		case pg_query.ConstrType_CONSTR_ATTR_DEFERRABLE,
			pg_query.ConstrType_CONSTR_ATTR_NOT_DEFERRABLE,
			pg_query.ConstrType_CONSTR_ATTR_DEFERRED,
			pg_query.ConstrType_CONSTR_ATTR_IMMEDIATE:
			// Characteristics attach to the constraint written just before them
			if n := len(def.Options); n > 0 {
				def.Options[n-1].HasCharacteristics = true
			}
			continue
		}

		def.Options = append(def.Options, convertColumnOption(cons))
	}
	return def
}

func convertColumnOption(cons *pg_query.Constraint) ast.ColumnOption {
	opt := ast.ColumnOption{
		Name:               cons.GetConname(),
		HasCharacteristics: cons.GetDeferrable() || cons.GetInitdeferred(),
	}

	switch cons.GetContype() {
	case pg_query.ConstrType_CONSTR_NULL:
		opt.Kind = ast.OptionNull
	case pg_query.ConstrType_CONSTR_NOTNULL:
		opt.Kind = ast.OptionNotNull
	case pg_query.ConstrType_CONSTR_DEFAULT:
		opt.Kind = ast.OptionDefault
		opt.Expr = convertExpr(cons.GetRawExpr())
	case pg_query.ConstrType_CONSTR_PRIMARY:
		opt.Kind = ast.OptionUnique
		opt.IsPrimary = true
	case pg_query.ConstrType_CONSTR_UNIQUE:
		opt.Kind = ast.OptionUnique
	case pg_query.ConstrType_CONSTR_FOREIGN:
		opt.Kind = ast.OptionReferences
		opt.ForeignTable = relationName(cons.GetPktable())
		opt.ReferredColumns = stringList(cons.GetPkAttrs())
		opt.OnDelete = referentialAction(cons.GetFkDelAction())
		opt.OnUpdate = referentialAction(cons.GetFkUpdAction())
	case pg_query.ConstrType_CONSTR_CHECK:
		opt.Kind = ast.OptionCheck
		opt.Expr = convertExpr(cons.GetRawExpr())
	default:
		opt.Kind = ast.OptionOther
	}
	return opt
}

// convertTableConstraint maps a table-level constraint; the second result
// is false for constraint kinds the model does not record
func convertTableConstraint(cons *pg_query.Constraint) (ast.TableConstraint, bool) {
	tc := ast.TableConstraint{Name: cons.GetConname()}

	switch cons.GetContype() {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		tc.Kind = ast.ConstraintUnique
		tc.IsPrimary = true
		tc.Columns = stringList(cons.GetKeys())
	case pg_query.ConstrType_CONSTR_UNIQUE:
		tc.Kind = ast.ConstraintUnique
		tc.Columns = stringList(cons.GetKeys())
	case pg_query.ConstrType_CONSTR_FOREIGN:
		tc.Kind = ast.ConstraintForeignKey
		tc.Columns = stringList(cons.GetFkAttrs())
		tc.ForeignTable = relationName(cons.GetPktable())
		tc.ReferredColumns = stringList(cons.GetPkAttrs())
		tc.OnDelete = referentialAction(cons.GetFkDelAction())
		tc.OnUpdate = referentialAction(cons.GetFkUpdAction())
	case pg_query.ConstrType_CONSTR_CHECK:
		tc.Kind = ast.ConstraintCheck
		tc.Check = convertExpr(cons.GetRawExpr())
	default:
		return tc, false
	}
	return tc, true
}

func convertCreateIndex(stmt *pg_query.IndexStmt) *ast.CreateIndex {
	ci := &ast.CreateIndex{
		Name:        stmt.GetIdxname(),
		Table:       relationName(stmt.GetRelation()),
		Unique:      stmt.GetUnique(),
		IfNotExists: stmt.GetIfNotExists(),
	}

	for _, param := range stmt.GetIndexParams() {
		elem := param.GetIndexElem()
		if elem == nil {
			continue
		}
		if elem.GetName() != "" {
			ci.Columns = append(ci.Columns, elem.GetName())
		} else if elem.GetExpr() != nil {
			ci.Columns = append(ci.Columns, deparseExpr(elem.GetExpr()))
		}
	}
	return ci
}

func convertAlterTable(stmt *pg_query.AlterTableStmt, src string) ast.Statement {
	// ALTER INDEX / ALTER SEQUENCE share the node but not the semantics
	if stmt.GetObjtype() != pg_query.ObjectType_OBJECT_TABLE {
		return ast.Statement{Kind: ast.StatementOther}
	}

	at := &ast.AlterTable{Name: relationName(stmt.GetRelation())}
	for _, node := range stmt.GetCmds() {
		cmd := node.GetAlterTableCmd()
		if cmd == nil {
			continue
		}
		at.Operations = append(at.Operations, convertAlterCmd(cmd, src))
	}
	return ast.Statement{Kind: ast.StatementAlterTable, AlterTable: at}
}

func convertAlterCmd(cmd *pg_query.AlterTableCmd, src string) ast.AlterOperation {
	switch cmd.GetSubtype() {
	case pg_query.AlterTableType_AT_AddColumn:
		colDef := cmd.GetDef().GetColumnDef()
		if colDef == nil {
			return ast.AlterOperation{Kind: ast.AlterOther}
		}
		def := convertColumnDef(colDef, src)
		return ast.AlterOperation{Kind: ast.AlterAddColumn, Column: &def}
	case pg_query.AlterTableType_AT_DropColumn:
		return ast.AlterOperation{Kind: ast.AlterDropColumn, Name: cmd.GetName()}
	case pg_query.AlterTableType_AT_AddConstraint:
		cons := cmd.GetDef().GetConstraint()
		if cons == nil {
			return ast.AlterOperation{Kind: ast.AlterOther}
		}
		tc, ok := convertTableConstraint(cons)
		if !ok {
			return ast.AlterOperation{Kind: ast.AlterOther}
		}
		return ast.AlterOperation{Kind: ast.AlterAddConstraint, Constraint: &tc}
	case pg_query.AlterTableType_AT_DropConstraint:
		return ast.AlterOperation{Kind: ast.AlterDropConstraint, Name: cmd.GetName()}
	case pg_query.AlterTableType_AT_SetNotNull:
		return ast.AlterOperation{Kind: ast.AlterColumn, Name: cmd.GetName(), ColumnOp: ast.AlterColumnSetNotNull}
	case pg_query.AlterTableType_AT_DropNotNull:
		return ast.AlterOperation{Kind: ast.AlterColumn, Name: cmd.GetName(), ColumnOp: ast.AlterColumnDropNotNull}
	case pg_query.AlterTableType_AT_ColumnDefault:
		if cmd.GetDef() == nil {
			return ast.AlterOperation{Kind: ast.AlterColumn, Name: cmd.GetName(), ColumnOp: ast.AlterColumnDropDefault}
		}
		return ast.AlterOperation{
			Kind:     ast.AlterColumn,
			Name:     cmd.GetName(),
			ColumnOp: ast.AlterColumnSetDefault,
			Default:  convertExpr(cmd.GetDef()),
		}
	case pg_query.AlterTableType_AT_AlterColumnType:
		return ast.AlterOperation{Kind: ast.AlterColumn, Name: cmd.GetName(), ColumnOp: ast.AlterColumnOther}
	default:
		return ast.AlterOperation{Kind: ast.AlterOther}
	}
}

func convertRename(stmt *pg_query.RenameStmt) ast.Statement {
	if stmt.GetRelation() == nil {
		return ast.Statement{Kind: ast.StatementOther}
	}

	var op ast.AlterOperation
	switch stmt.GetRenameType() {
	case pg_query.ObjectType_OBJECT_COLUMN:
		if stmt.GetRelationType() != pg_query.ObjectType_OBJECT_TABLE {
			return ast.Statement{Kind: ast.StatementOther}
		}
		op = ast.AlterOperation{Kind: ast.AlterRenameColumn, Name: stmt.GetSubname(), NewName: stmt.GetNewname()}
	case pg_query.ObjectType_OBJECT_TABLE, pg_query.ObjectType_OBJECT_TABCONSTRAINT:
		op = ast.AlterOperation{Kind: ast.AlterOther}
	default:
		return ast.Statement{Kind: ast.StatementOther}
	}

	return ast.Statement{
		Kind: ast.StatementAlterTable,
		AlterTable: &ast.AlterTable{
			Name:       relationName(stmt.GetRelation()),
			Operations: []ast.AlterOperation{op},
		},
	}
}

func convertView(stmt *pg_query.ViewStmt) *ast.CreateView {
	return &ast.CreateView{
		Name:    relationName(stmt.GetView()),
		Columns: stringList(stmt.GetAliases()),
	}
}

func convertCreateTableAs(stmt *pg_query.CreateTableAsStmt) ast.Statement {
	if stmt.GetObjtype() != pg_query.ObjectType_OBJECT_MATVIEW || stmt.GetInto() == nil {
		return ast.Statement{Kind: ast.StatementOther}
	}
	return ast.Statement{
		Kind: ast.StatementCreateView,
		CreateView: &ast.CreateView{
			Name:         relationName(stmt.GetInto().GetRel()),
			Columns:      stringList(stmt.GetInto().GetColNames()),
			Materialized: true,
		},
	}
}

func convertDrop(stmt *pg_query.DropStmt) *ast.Drop {
	drop := &ast.Drop{}
	switch stmt.GetRemoveType() {
	case pg_query.ObjectType_OBJECT_TABLE:
		drop.ObjectType = ast.ObjectTable
	case pg_query.ObjectType_OBJECT_VIEW, pg_query.ObjectType_OBJECT_MATVIEW:
		drop.ObjectType = ast.ObjectView
	default:
		drop.ObjectType = ast.ObjectOther
	}

	for _, obj := range stmt.GetObjects() {
		if list := obj.GetList(); list != nil {
			drop.Names = append(drop.Names, strings.Join(stringList(list.GetItems()), "."))
			continue
		}
		if s := obj.GetString_(); s != nil {
			drop.Names = append(drop.Names, s.GetSval())
		}
	}
	return drop
}

func convertTruncate(stmt *pg_query.TruncateStmt) *ast.Truncate {
	tr := &ast.Truncate{}
	for _, rel := range stmt.GetRelations() {
		if rv := rel.GetRangeVar(); rv != nil {
			tr.Tables = append(tr.Tables, relationName(rv))
		}
	}
	return tr
}

// relationName renders a range var as schema.name or name
func relationName(rv *pg_query.RangeVar) string {
	if rv == nil {
		return ""
	}
	if rv.GetSchemaname() != "" {
		return rv.GetSchemaname() + "." + rv.GetRelname()
	}
	return rv.GetRelname()
}

// stringList collects the String nodes of a name list
func stringList(nodes []*pg_query.Node) []string {
	var out []string
	for _, n := range nodes {
		if s := n.GetString_(); s != nil {
			out = append(out, s.GetSval())
		}
	}
	return out
}

// referentialAction maps the grammar's action codes. NO ACTION is the
// grammar default and cannot be told apart from an omitted clause.
func referentialAction(code string) string {
	switch code {
	case "r":
		return "RESTRICT"
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	default:
		return ""
	}
}
