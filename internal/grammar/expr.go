package grammar

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/tordrt/ddlschema/internal/ast"
)

// convertExpr maps an expression node onto ast.Expr. The node's SQL text is
// kept on every level of the tree.
func convertExpr(node *pg_query.Node) *ast.Expr {
	if node == nil {
		return nil
	}

	e := &ast.Expr{Kind: ast.ExprOther, Text: deparseExpr(node)}

	switch n := node.Node.(type) {
	case *pg_query.Node_ColumnRef:
		fields := stringList(n.ColumnRef.GetFields())
		switch len(fields) {
		case 0:
			// SELECT * style references carry an A_Star field only
		case 1:
			e.Kind = ast.ExprIdentifier
			e.Ident = fields[0]
		default:
			e.Kind = ast.ExprCompoundIdentifier
			e.Parts = fields
		}
	case *pg_query.Node_AExpr:
		if n.AExpr.GetKind() != pg_query.A_Expr_Kind_AEXPR_OP {
			break
		}
		e.Kind = ast.ExprBinaryOp
		e.Op = strings.Join(stringList(n.AExpr.GetName()), ".")
		e.Left = convertExpr(n.AExpr.GetLexpr())
		e.Right = convertExpr(n.AExpr.GetRexpr())
	case *pg_query.Node_BoolExpr:
		return convertBoolExpr(n.BoolExpr, e)
	case *pg_query.Node_FuncCall:
		e.Kind = ast.ExprFunction
		e.Ident = strings.Join(stringList(n.FuncCall.GetFuncname()), ".")
		for _, arg := range n.FuncCall.GetArgs() {
			e.Args = append(e.Args, convertExpr(arg))
		}
	default:
	}
	return e
}

// convertBoolExpr folds AND / OR argument lists into a left-deep chain of
// binary operations
func convertBoolExpr(b *pg_query.BoolExpr, e *ast.Expr) *ast.Expr {
	var op string
	switch b.GetBoolop() {
	case pg_query.BoolExprType_AND_EXPR:
		op = "AND"
	case pg_query.BoolExprType_OR_EXPR:
		op = "OR"
	default:
		return e
	}

	args := b.GetArgs()
	if len(args) == 0 {
		return e
	}
	acc := convertExpr(args[0])
	for _, arg := range args[1:] {
		right := convertExpr(arg)
		acc = &ast.Expr{
			Kind:  ast.ExprBinaryOp,
			Text:  acc.String() + " " + op + " " + right.String(),
			Op:    op,
			Left:  acc,
			Right: right,
		}
	}
	// The outermost node renders as the whole expression
	acc.Text = e.Text
	return acc
}

// deparseExpr renders an expression back to SQL by deparsing it as the
// only target of a SELECT
func deparseExpr(expr *pg_query.Node) string {
	if expr == nil {
		return ""
	}

	tempSelect := &pg_query.SelectStmt{
		TargetList: []*pg_query.Node{{
			Node: &pg_query.Node_ResTarget{
				ResTarget: &pg_query.ResTarget{Val: expr},
			},
		}},
	}
	tempResult := &pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{
			Stmt: &pg_query.Node{
				Node: &pg_query.Node_SelectStmt{SelectStmt: tempSelect},
			},
		}},
	}

	deparsed, err := pg_query.Deparse(tempResult)
	if err != nil {
		return ""
	}
	if text, found := strings.CutPrefix(deparsed, "SELECT "); found {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(deparsed)
}
