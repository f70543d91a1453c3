package builder

import (
	"slices"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

// applyConstraint records one table constraint on table and updates the
// relationships and column flags it implies.
func applyConstraint(s *schema.Schema, table string, c ast.TableConstraint) {
	switch c.Kind {
	case ast.ConstraintForeignKey:
		addForeignKey(s, table, c)
	case ast.ConstraintUnique:
		addUnique(s, table, c)
	case ast.ConstraintCheck:
		addCheck(s, table, c)
	default:
	}
}

// applyColumnConstraints records the inline constraints of a column
// definition as single-column table constraints.
func applyColumnConstraints(s *schema.Schema, table string, def ast.ColumnDef) {
	for _, opt := range def.Options {
		switch opt.Kind {
		case ast.OptionUnique:
			if opt.IsPrimary && opt.HasCharacteristics {
				continue
			}
			applyConstraint(s, table, ast.TableConstraint{
				Kind:      ast.ConstraintUnique,
				Name:      opt.Name,
				Columns:   []string{def.Name},
				IsPrimary: opt.IsPrimary,
			})
		case ast.OptionReferences:
			applyConstraint(s, table, ast.TableConstraint{
				Kind:            ast.ConstraintForeignKey,
				Name:            opt.Name,
				Columns:         []string{def.Name},
				ForeignTable:    opt.ForeignTable,
				ReferredColumns: opt.ReferredColumns,
				OnDelete:        opt.OnDelete,
				OnUpdate:        opt.OnUpdate,
			})
		case ast.OptionCheck:
			applyConstraint(s, table, ast.TableConstraint{
				Kind:  ast.ConstraintCheck,
				Name:  opt.Name,
				Check: opt.Expr,
			})
		default:
		}
	}
}

func addForeignKey(s *schema.Schema, table string, c ast.TableConstraint) {
	constraintType := schema.ConstraintForeignKey
	if c.OnDelete != "" {
		constraintType += " ON DELETE " + c.OnDelete
	}
	if c.OnUpdate != "" {
		constraintType += " ON UPDATE " + c.OnUpdate
	}

	// REFERENCES t without a column list targets the primary key of t
	referred := cloneStrings(c.ReferredColumns)
	if len(referred) == 0 {
		referred = cloneStrings(s.PrimaryKey(c.ForeignTable))
	}

	foreignTable := c.ForeignTable
	s.Constraints = append(s.Constraints, schema.Constraint{
		Name:             nameOr(c.Name, schema.UnnamedForeignKey),
		Table:            table,
		ConstraintType:   constraintType,
		Columns:          cloneStrings(c.Columns),
		ReferenceTable:   &foreignTable,
		ReferenceColumns: referred,
	})

	// Column lists of unequal length pair up to the shorter one
	for i := range min(len(c.Columns), len(referred)) {
		s.Relationships = append(s.Relationships, schema.Relationship{
			FromTable:        table,
			FromColumn:       c.Columns[i],
			ToTable:          foreignTable,
			ToColumn:         referred[i],
			RelationshipType: schema.RelationshipForeignKey,
		})
	}

	ref := referencePointer(foreignTable, referred)
	cols := s.Columns[table]
	for i := range cols {
		if slices.Contains(c.Columns, cols[i].Name) {
			cols[i].IsForeignKey = true
			r := ref
			cols[i].References = &r
		}
	}
}

// referencePointer renders "<table>.<first referenced column>"
func referencePointer(table string, referred []string) string {
	first := ""
	if len(referred) > 0 {
		first = referred[0]
	}
	return table + "." + first
}

func addUnique(s *schema.Schema, table string, c ast.TableConstraint) {
	constraintType, placeholder := schema.ConstraintUnique, schema.UnnamedUnique
	if c.IsPrimary {
		constraintType, placeholder = schema.ConstraintPrimaryKey, schema.UnnamedPrimaryKey
	}

	s.Constraints = append(s.Constraints, schema.Constraint{
		Name:           nameOr(c.Name, placeholder),
		Table:          table,
		ConstraintType: constraintType,
		Columns:        cloneStrings(c.Columns),
	})

	if !c.IsPrimary {
		return
	}
	cols := s.Columns[table]
	for i := range cols {
		if slices.Contains(c.Columns, cols[i].Name) {
			cols[i].IsPrimaryKey = true
		}
	}
}

func addCheck(s *schema.Schema, table string, c ast.TableConstraint) {
	s.Constraints = append(s.Constraints, schema.Constraint{
		Name:           nameOr(c.Name, schema.UnnamedCheck),
		Table:          table,
		ConstraintType: schema.ConstraintCheck,
		Columns:        append([]string{}, checkColumns(c.Check)...),
	})
}

// checkColumns collects the column names a check expression mentions.
// Identifiers, the last part of qualified identifiers, both sides of binary
// operators and parenthesized expressions are walked; function calls and
// every other expression contribute nothing. Duplicates are kept.
func checkColumns(e *ast.Expr) []string {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExprIdentifier:
		return []string{e.Ident}
	case ast.ExprCompoundIdentifier:
		if len(e.Parts) == 0 {
			return nil
		}
		return []string{e.Parts[len(e.Parts)-1]}
	case ast.ExprBinaryOp:
		return append(checkColumns(e.Left), checkColumns(e.Right)...)
	case ast.ExprNested:
		return checkColumns(e.Inner)
	default:
		return nil
	}
}

// rederiveKeyFlags recomputes the key flags of every column of table from
// the constraints that survive on it.
func rederiveKeyFlags(s *schema.Schema, table string) {
	cols := s.Columns[table]
	for i := range cols {
		col := &cols[i]
		if col.IsForeignKey || col.References != nil {
			if ref, ok := foreignKeyReference(s, table, col.Name); ok {
				col.IsForeignKey = true
				col.References = &ref
			} else {
				col.IsForeignKey = false
				col.References = nil
			}
		}
		if col.IsPrimaryKey && !hasPrimaryKey(s, table, col.Name) {
			col.IsPrimaryKey = false
		}
	}
}

// foreignKeyReference returns the reference pointer of the last foreign key
// constraint on table naming column.
func foreignKeyReference(s *schema.Schema, table, column string) (string, bool) {
	for i := len(s.Constraints) - 1; i >= 0; i-- {
		c := s.Constraints[i]
		if c.Table == table && c.IsForeignKey() && c.HasColumn(column) {
			refTable := ""
			if c.ReferenceTable != nil {
				refTable = *c.ReferenceTable
			}
			return referencePointer(refTable, c.ReferenceColumns), true
		}
	}
	return "", false
}

func hasPrimaryKey(s *schema.Schema, table, column string) bool {
	return slices.ContainsFunc(s.Constraints, func(c schema.Constraint) bool {
		return c.Table == table && c.IsPrimaryKey() && c.HasColumn(column)
	})
}

// removeForeignKeyRelationships removes the relationships a foreign key
// constraint produced, one per column pair.
func removeForeignKeyRelationships(s *schema.Schema, c schema.Constraint) {
	if !c.IsForeignKey() || c.ReferenceTable == nil {
		return
	}
	for i := range min(len(c.Columns), len(c.ReferenceColumns)) {
		want := schema.Relationship{
			FromTable:        c.Table,
			FromColumn:       c.Columns[i],
			ToTable:          *c.ReferenceTable,
			ToColumn:         c.ReferenceColumns[i],
			RelationshipType: schema.RelationshipForeignKey,
		}
		if idx := slices.Index(s.Relationships, want); idx >= 0 {
			s.Relationships = slices.Delete(s.Relationships, idx, idx+1)
		}
	}
}
