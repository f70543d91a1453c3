package builder

import (
	"slices"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

// applyAlter applies one ALTER TABLE operation. Operations naming an unknown
// table or column leave the model unchanged.
func applyAlter(s *schema.Schema, table string, op ast.AlterOperation) {
	if !s.HasTable(table) {
		return
	}

	switch op.Kind {
	case ast.AlterAddConstraint:
		if op.Constraint != nil {
			applyConstraint(s, table, *op.Constraint)
		}
	case ast.AlterDropConstraint:
		dropConstraint(s, table, op.Name)
	case ast.AlterAddColumn:
		if op.Column != nil {
			addColumn(s, table, *op.Column)
		}
	case ast.AlterDropColumn:
		dropColumn(s, table, op.Name)
	case ast.AlterRenameColumn:
		renameColumn(s, table, op.Name, op.NewName)
	case ast.AlterColumn:
		alterColumn(s, table, op)
	default:
	}
}

func dropConstraint(s *schema.Schema, table, name string) {
	var dropped []schema.Constraint
	s.Constraints = slices.DeleteFunc(s.Constraints, func(c schema.Constraint) bool {
		if c.Table == table && c.Name == name {
			dropped = append(dropped, c)
			return true
		}
		return false
	})
	if len(dropped) == 0 {
		return
	}

	for _, c := range dropped {
		removeForeignKeyRelationships(s, c)
	}
	rederiveKeyFlags(s, table)
}

func addColumn(s *schema.Schema, table string, def ast.ColumnDef) {
	if s.Column(table, def.Name) != nil {
		return
	}
	s.Columns[table] = append(s.Columns[table], newColumn(def))
	applyColumnConstraints(s, table, def)
}

func dropColumn(s *schema.Schema, table, column string) {
	cols := s.Columns[table]
	idx := slices.IndexFunc(cols, func(c schema.Column) bool { return c.Name == column })
	if idx < 0 {
		return
	}
	s.Columns[table] = slices.Delete(cols, idx, idx+1)

	var dropped []schema.Constraint
	s.Constraints = slices.DeleteFunc(s.Constraints, func(c schema.Constraint) bool {
		if c.Table == table && c.HasColumn(column) {
			dropped = append(dropped, c)
			return true
		}
		return false
	})
	s.Relationships = slices.DeleteFunc(s.Relationships, func(r schema.Relationship) bool {
		return (r.FromTable == table && r.FromColumn == column) || (r.ToTable == table && r.ToColumn == column)
	})
	s.Indexes = slices.DeleteFunc(s.Indexes, func(i schema.Index) bool {
		return i.Table == table && i.HasColumn(column)
	})

	for _, c := range dropped {
		removeForeignKeyRelationships(s, c)
	}
	rederiveKeyFlags(s, table)
}

// renameColumn renames table.from to table.to in every record that names it
func renameColumn(s *schema.Schema, table, from, to string) {
	col := s.Column(table, from)
	if col == nil {
		return
	}
	col.Name = to

	for i := range s.Constraints {
		c := &s.Constraints[i]
		if c.Table == table {
			replaceAll(c.Columns, from, to)
		}
		if c.IsForeignKey() && c.ReferenceTable != nil && *c.ReferenceTable == table {
			replaceAll(c.ReferenceColumns, from, to)
		}
	}

	for i := range s.Relationships {
		r := &s.Relationships[i]
		if r.FromTable == table && r.FromColumn == from {
			r.FromColumn = to
		}
		if r.ToTable == table && r.ToColumn == from {
			r.ToColumn = to
		}
	}

	for i := range s.Indexes {
		if s.Indexes[i].Table == table {
			replaceAll(s.Indexes[i].Columns, from, to)
		}
	}

	oldRef, newRef := table+"."+from, table+"."+to
	for _, cols := range s.Columns {
		for i := range cols {
			if cols[i].References != nil && *cols[i].References == oldRef {
				ref := newRef
				cols[i].References = &ref
			}
		}
	}
}

func alterColumn(s *schema.Schema, table string, op ast.AlterOperation) {
	col := s.Column(table, op.Name)
	if col == nil {
		return
	}

	switch op.ColumnOp {
	case ast.AlterColumnSetNotNull:
		col.Nullable = false
	case ast.AlterColumnDropNotNull:
		col.Nullable = true
	case ast.AlterColumnSetDefault:
		text := op.Default.String()
		col.DefaultValue = &text
	case ast.AlterColumnDropDefault:
		col.DefaultValue = nil
	default:
	}
}

func replaceAll(list []string, from, to string) {
	for i := range list {
		if list[i] == from {
			list[i] = to
		}
	}
}
