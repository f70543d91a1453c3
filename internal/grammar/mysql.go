package grammar

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	tidbast "github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	"github.com/pingcap/tidb/pkg/parser/mysql"
	"github.com/pingcap/tidb/pkg/parser/types"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/tordrt/ddlschema/internal/ast"
)

const restoreFlags = format.RestoreStringSingleQuotes | format.RestoreKeyWordUppercase

// MySQLParser parses DDL with the MySQL grammar of the TiDB parser. It
// accepts what PostgreSQL rejects in generic DDL: display widths such as
// INT(11), AUTO_INCREMENT, table options and names like user.
type MySQLParser struct {
	mu     sync.Mutex
	parser *parser.Parser
}

// NewMySQLParser creates a parser backed by the TiDB grammar
func NewMySQLParser() *MySQLParser {
	return &MySQLParser{parser: parser.New()}
}

// Parse parses sql and maps each statement to exactly one ast.Statement
func (p *MySQLParser) Parse(sql string) ([]ast.Statement, error) {
	p.mu.Lock()
	nodes, _, err := p.parser.Parse(sql, "", "")
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL: %w", err)
	}

	stmts := make([]ast.Statement, 0, len(nodes))
	for _, node := range nodes {
		stmts = append(stmts, convertMySQLStatement(node, sql))
	}
	return stmts, nil
}

func convertMySQLStatement(node tidbast.StmtNode, src string) ast.Statement {
	switch n := node.(type) {
	case *tidbast.CreateTableStmt:
		return ast.Statement{Kind: ast.StatementCreateTable, CreateTable: convertMySQLCreateTable(n, src)}
	case *tidbast.CreateIndexStmt:
		return ast.Statement{Kind: ast.StatementCreateIndex, CreateIndex: convertMySQLCreateIndex(n)}
	case *tidbast.AlterTableStmt:
		return ast.Statement{Kind: ast.StatementAlterTable, AlterTable: convertMySQLAlterTable(n, src)}
	case *tidbast.CreateViewStmt:
		view := &ast.CreateView{Name: tableName(n.ViewName)}
		for _, col := range n.Cols {
			view.Columns = append(view.Columns, col.O)
		}
		return ast.Statement{Kind: ast.StatementCreateView, CreateView: view}
	case *tidbast.DropTableStmt:
		drop := &ast.Drop{ObjectType: ast.ObjectTable}
		if n.IsView {
			drop.ObjectType = ast.ObjectView
		}
		for _, t := range n.Tables {
			drop.Names = append(drop.Names, tableName(t))
		}
		return ast.Statement{Kind: ast.StatementDrop, Drop: drop}
	case *tidbast.TruncateTableStmt:
		return ast.Statement{Kind: ast.StatementTruncate, Truncate: &ast.Truncate{Tables: []string{tableName(n.Table)}}}
	case *tidbast.CreateDatabaseStmt:
		return ast.Statement{Kind: ast.StatementCreateSchema, CreateSchema: &ast.CreateSchema{Name: n.Name.O}}
	default:
		return ast.Statement{Kind: ast.StatementOther}
	}
}

func convertMySQLCreateTable(stmt *tidbast.CreateTableStmt, src string) *ast.CreateTable {
	ct := &ast.CreateTable{
		Name:        tableName(stmt.Table),
		IfNotExists: stmt.IfNotExists,
	}
	for _, col := range stmt.Cols {
		ct.Columns = append(ct.Columns, convertMySQLColumnDef(col, src))
	}
	for _, cons := range stmt.Constraints {
		if tc, ok := convertMySQLConstraint(cons); ok {
			ct.Constraints = append(ct.Constraints, tc)
		}
	}
	return ct
}

func convertMySQLColumnDef(col *tidbast.ColumnDef, src string) ast.ColumnDef {
	def := ast.ColumnDef{
		Name: col.Name.Name.O,
		Type: convertFieldType(col.Tp, typeText(src, col.Name.Name.O)),
	}

	for _, opt := range col.Options {
		o := ast.ColumnOption{Kind: ast.OptionOther}
		switch opt.Tp {
		case tidbast.ColumnOptionNull:
			o.Kind = ast.OptionNull
		case tidbast.ColumnOptionNotNull:
			o.Kind = ast.OptionNotNull
		case tidbast.ColumnOptionDefaultValue:
			o.Kind = ast.OptionDefault
			o.Expr = convertMySQLExpr(opt.Expr)
		case tidbast.ColumnOptionPrimaryKey:
			o.Kind = ast.OptionUnique
			o.IsPrimary = true
		case tidbast.ColumnOptionUniqKey:
			o.Kind = ast.OptionUnique
		case tidbast.ColumnOptionReference:
			if opt.Refer == nil {
				break
			}
			o.Kind = ast.OptionReferences
			o.ForeignTable = tableName(opt.Refer.Table)
			o.ReferredColumns = indexColumns(opt.Refer.IndexPartSpecifications)
			o.OnDelete, o.OnUpdate = referOptions(opt.Refer)
		case tidbast.ColumnOptionCheck:
			o.Kind = ast.OptionCheck
			o.Expr = convertMySQLExpr(opt.Expr)
		default:
		}
		def.Options = append(def.Options, o)
	}
	return def
}

// convertMySQLConstraint maps a table-level constraint; plain KEY / INDEX
// entries are not constraints and report false
func convertMySQLConstraint(cons *tidbast.Constraint) (ast.TableConstraint, bool) {
	tc := ast.TableConstraint{Name: cons.Name}

	switch cons.Tp {
	case tidbast.ConstraintPrimaryKey:
		tc.Kind = ast.ConstraintUnique
		tc.IsPrimary = true
		tc.Columns = indexColumns(cons.Keys)
	case tidbast.ConstraintUniq, tidbast.ConstraintUniqKey, tidbast.ConstraintUniqIndex:
		tc.Kind = ast.ConstraintUnique
		tc.Columns = indexColumns(cons.Keys)
	case tidbast.ConstraintForeignKey:
		if cons.Refer == nil {
			return tc, false
		}
		tc.Kind = ast.ConstraintForeignKey
		tc.Columns = indexColumns(cons.Keys)
		tc.ForeignTable = tableName(cons.Refer.Table)
		tc.ReferredColumns = indexColumns(cons.Refer.IndexPartSpecifications)
		tc.OnDelete, tc.OnUpdate = referOptions(cons.Refer)
	case tidbast.ConstraintCheck:
		tc.Kind = ast.ConstraintCheck
		tc.Check = convertMySQLExpr(cons.Expr)
	default:
		return tc, false
	}
	return tc, true
}

func convertMySQLCreateIndex(stmt *tidbast.CreateIndexStmt) *ast.CreateIndex {
	return &ast.CreateIndex{
		Name:        stmt.IndexName,
		Table:       tableName(stmt.Table),
		Columns:     indexColumns(stmt.IndexPartSpecifications),
		Unique:      stmt.KeyType == tidbast.IndexKeyTypeUnique,
		IfNotExists: stmt.IfNotExists,
	}
}

func convertMySQLAlterTable(stmt *tidbast.AlterTableStmt, src string) *ast.AlterTable {
	at := &ast.AlterTable{Name: tableName(stmt.Table)}
	for _, clause := range stmt.Specs {
		at.Operations = append(at.Operations, convertAlterSpec(clause, src)...)
	}
	return at
}

// convertAlterSpec maps one ALTER TABLE clause; ADD COLUMN with a column
// list yields one operation per column
func convertAlterSpec(clause *tidbast.AlterTableSpec, src string) []ast.AlterOperation {
	switch clause.Tp {
	case tidbast.AlterTableAddColumns:
		ops := make([]ast.AlterOperation, 0, len(clause.NewColumns))
		for _, col := range clause.NewColumns {
			def := convertMySQLColumnDef(col, src)
			ops = append(ops, ast.AlterOperation{Kind: ast.AlterAddColumn, Column: &def})
		}
		return ops
	case tidbast.AlterTableAddConstraint:
		if clause.Constraint == nil {
			break
		}
		if tc, ok := convertMySQLConstraint(clause.Constraint); ok {
			return []ast.AlterOperation{{Kind: ast.AlterAddConstraint, Constraint: &tc}}
		}
	case tidbast.AlterTableDropColumn:
		if clause.OldColumnName != nil {
			return []ast.AlterOperation{{Kind: ast.AlterDropColumn, Name: clause.OldColumnName.Name.O}}
		}
	case tidbast.AlterTableDropForeignKey, tidbast.AlterTableDropIndex, tidbast.AlterTableDropCheck:
		name := clause.Name
		if name == "" && clause.Constraint != nil {
			name = clause.Constraint.Name
		}
		return []ast.AlterOperation{{Kind: ast.AlterDropConstraint, Name: name}}
	case tidbast.AlterTableRenameColumn:
		if clause.OldColumnName != nil && clause.NewColumnName != nil {
			return []ast.AlterOperation{{
				Kind:    ast.AlterRenameColumn,
				Name:    clause.OldColumnName.Name.O,
				NewName: clause.NewColumnName.Name.O,
			}}
		}
	case tidbast.AlterTableAlterColumn:
		if len(clause.NewColumns) == 0 {
			break
		}
		col := clause.NewColumns[0]
		op := ast.AlterOperation{Kind: ast.AlterColumn, Name: col.Name.Name.O, ColumnOp: ast.AlterColumnDropDefault}
		for _, opt := range col.Options {
			if opt.Tp == tidbast.ColumnOptionDefaultValue {
				op.ColumnOp = ast.AlterColumnSetDefault
				op.Default = convertMySQLExpr(opt.Expr)
			}
		}
		return []ast.AlterOperation{op}
	case tidbast.AlterTableModifyColumn, tidbast.AlterTableChangeColumn:
		name := ""
		if clause.OldColumnName != nil {
			name = clause.OldColumnName.Name.O
		} else if len(clause.NewColumns) > 0 {
			name = clause.NewColumns[0].Name.Name.O
		}
		return []ast.AlterOperation{{Kind: ast.AlterColumn, Name: name, ColumnOp: ast.AlterColumnOther}}
	default:
	}
	return []ast.AlterOperation{{Kind: ast.AlterOther}}
}

// convertFieldType maps a TiDB field type; text is the column's type as
// written, used to restore FLOAT and CHAR spellings
func convertFieldType(tp *types.FieldType, text string) ast.DataType {
	if tp == nil {
		return ast.DataType{Kind: ast.TypeOther}
	}

	dt := ast.DataType{Kind: ast.TypeOther, Name: strings.ToLower(types.TypeToStr(tp.GetType(), tp.GetCharset()))}
	switch tp.GetType() {
	case mysql.TypeLong:
		dt.Kind = ast.TypeInt
		dt.Length = specified(tp.GetFlen())
	case mysql.TypeLonglong:
		dt.Kind = ast.TypeBigInt
		dt.Length = specified(tp.GetFlen())
	case mysql.TypeShort:
		dt.Kind = ast.TypeSmallInt
		dt.Length = specified(tp.GetFlen())
	case mysql.TypeTiny:
		// BOOL and BOOLEAN are TINYINT(1)
		if tp.GetFlen() == 1 {
			dt.Kind = ast.TypeBoolean
		}
	case mysql.TypeFloat:
		dt.Kind = ast.TypeFloat
	case mysql.TypeDouble:
		dt.Kind = ast.TypeDouble
	case mysql.TypeNewDecimal:
		dt.Kind = ast.TypeDecimal
		dt.Precision = specified(tp.GetFlen())
		dt.Scale = specified(tp.GetDecimal())
	case mysql.TypeString:
		dt.Kind = ast.TypeChar
		dt.Length = specified(tp.GetFlen())
	case mysql.TypeVarchar, mysql.TypeVarString:
		dt.Kind = ast.TypeVarchar
		dt.Length = specified(tp.GetFlen())
	case mysql.TypeBlob, mysql.TypeTinyBlob, mysql.TypeMediumBlob, mysql.TypeLongBlob:
		if tp.GetCharset() != "binary" {
			dt.Kind = ast.TypeText
		}
	case mysql.TypeDate:
		dt.Kind = ast.TypeDate
	case mysql.TypeDuration:
		dt.Kind = ast.TypeTime
		dt.Precision = specified(tp.GetDecimal())
	case mysql.TypeTimestamp:
		dt.Kind = ast.TypeTimestamp
		dt.Precision = specified(tp.GetDecimal())
	case mysql.TypeDatetime:
		dt.Kind = ast.TypeDatetime
		dt.Precision = specified(tp.GetDecimal())
	case mysql.TypeJSON:
		dt.Kind = ast.TypeJSON
	default:
	}

	if dt.Kind == ast.TypeFloat || dt.Kind == ast.TypeDouble || dt.Kind == ast.TypeChar {
		return respell(dt, text)
	}
	return dt
}

// typeText returns the statement text from the type of column onward, or
// "" when the column definition cannot be found
func typeText(src, column string) string {
	re, err := regexp.Compile(`(?i)(?:^|[\s(,])` + regexp.QuoteMeta(column) + `\s+([a-z])`)
	if err != nil {
		return ""
	}
	loc := re.FindStringSubmatchIndex(src)
	if loc == nil {
		return ""
	}
	return src[loc[2]:]
}

// convertMySQLExpr maps an expression node onto ast.Expr, keeping the
// restored SQL text on every level
func convertMySQLExpr(node tidbast.ExprNode) *ast.Expr {
	if node == nil {
		return nil
	}

	e := &ast.Expr{Kind: ast.ExprOther, Text: restore(node)}
	switch n := node.(type) {
	case *tidbast.ColumnNameExpr:
		var parts []string
		for _, part := range []string{n.Name.Schema.O, n.Name.Table.O, n.Name.Name.O} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 1 {
			e.Kind = ast.ExprIdentifier
			e.Ident = parts[0]
		} else {
			e.Kind = ast.ExprCompoundIdentifier
			e.Parts = parts
		}
	case *tidbast.BinaryOperationExpr:
		e.Kind = ast.ExprBinaryOp
		e.Op = restore(n.Op)
		e.Left = convertMySQLExpr(n.L)
		e.Right = convertMySQLExpr(n.R)
	case *tidbast.ParenthesesExpr:
		e.Kind = ast.ExprNested
		e.Inner = convertMySQLExpr(n.Expr)
	case *tidbast.FuncCallExpr:
		e.Kind = ast.ExprFunction
		e.Ident = n.FnName.O
		for _, arg := range n.Args {
			e.Args = append(e.Args, convertMySQLExpr(arg))
		}
	default:
	}
	return e
}

// restore renders a node back to SQL
func restore(n interface {
	Restore(ctx *format.RestoreCtx) error
}) string {
	var sb strings.Builder
	if err := n.Restore(format.NewRestoreCtx(restoreFlags, &sb)); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}

// tableName renders a table name as schema.name or name
func tableName(t *tidbast.TableName) string {
	if t == nil {
		return ""
	}
	if t.Schema.O != "" {
		return t.Schema.O + "." + t.Name.O
	}
	return t.Name.O
}

// indexColumns lists key part column names; expression parts are rendered
func indexColumns(parts []*tidbast.IndexPartSpecification) []string {
	var cols []string
	for _, part := range parts {
		switch {
		case part.Column != nil:
			cols = append(cols, part.Column.Name.O)
		case part.Expr != nil:
			cols = append(cols, restore(part.Expr))
		}
	}
	return cols
}

// referOptions returns the ON DELETE and ON UPDATE actions. NO ACTION is
// treated as absent, as in the PostgreSQL adapter.
func referOptions(refer *tidbast.ReferenceDef) (onDelete, onUpdate string) {
	action := func(s string) string {
		s = strings.ToUpper(s)
		if s == "NO ACTION" {
			return ""
		}
		return s
	}
	if refer.OnDelete != nil {
		onDelete = action(refer.OnDelete.ReferOpt.String())
	}
	if refer.OnUpdate != nil {
		onUpdate = action(refer.OnUpdate.ReferOpt.String())
	}
	return onDelete, onUpdate
}

// specified returns n when the grammar recorded it
func specified(n int) *int {
	if n <= 0 || n == types.UnspecifiedLength {
		return nil
	}
	return &n
}
