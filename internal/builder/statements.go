package builder

import (
	"slices"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
)

// Apply applies the effect of one statement to the model. Statement kinds
// that do not describe schema objects leave the model unchanged.
func Apply(s *schema.Schema, stmt ast.Statement) {
	switch stmt.Kind {
	case ast.StatementCreateTable:
		if stmt.CreateTable != nil {
			createTable(s, stmt.CreateTable)
		}
	case ast.StatementCreateIndex:
		if stmt.CreateIndex != nil {
			createIndex(s, stmt.CreateIndex)
		}
	case ast.StatementAlterTable:
		if stmt.AlterTable != nil {
			for _, op := range stmt.AlterTable.Operations {
				applyAlter(s, stmt.AlterTable.Name, op)
			}
		}
	case ast.StatementCreateView:
		if stmt.CreateView != nil {
			createView(s, stmt.CreateView)
		}
	case ast.StatementDrop:
		if stmt.Drop != nil {
			drop(s, stmt.Drop)
		}
	case ast.StatementTruncate:
		if stmt.Truncate != nil {
			truncate(s, stmt.Truncate)
		}
	case ast.StatementCreateSchema:
		if stmt.CreateSchema != nil {
			createSchema(s, stmt.CreateSchema)
		}
	default:
	}
}

func createTable(s *schema.Schema, ct *ast.CreateTable) {
	if ct.IfNotExists && s.HasTable(ct.Name) {
		return
	}
	defineTable(s, schema.Table{Name: ct.Name, TableType: schema.TableTypeTable})

	cols := make([]schema.Column, 0, len(ct.Columns))
	for _, def := range ct.Columns {
		cols = append(cols, newColumn(def))
	}
	s.Columns[ct.Name] = cols

	for _, c := range ct.Constraints {
		applyConstraint(s, ct.Name, c)
	}
	for _, def := range ct.Columns {
		applyColumnConstraints(s, ct.Name, def)
	}
}

// defineTable registers t, replacing a table of the same name in place.
// State owned by the replaced definition is discarded; relationships
// pointing at the table from elsewhere are kept.
func defineTable(s *schema.Schema, t schema.Table) {
	if s.HasTable(t.Name) {
		s.Constraints = slices.DeleteFunc(s.Constraints, func(c schema.Constraint) bool { return c.Table == t.Name })
		s.Indexes = slices.DeleteFunc(s.Indexes, func(i schema.Index) bool { return i.Table == t.Name })
		s.Relationships = slices.DeleteFunc(s.Relationships, func(r schema.Relationship) bool { return r.FromTable == t.Name })
	}
	s.PutTable(t)
}

// newColumn builds a column record from a column definition
func newColumn(def ast.ColumnDef) schema.Column {
	col := schema.Column{
		Name:     def.Name,
		DataType: NormalizeType(def.Type),
		Nullable: true,
	}
	for _, opt := range def.Options {
		switch opt.Kind {
		case ast.OptionNotNull:
			col.Nullable = false
		case ast.OptionDefault:
			if col.DefaultValue == nil {
				text := opt.Expr.String()
				col.DefaultValue = &text
			}
		case ast.OptionUnique:
			if opt.IsPrimary && !opt.HasCharacteristics {
				col.IsPrimaryKey = true
			}
		default:
		}
	}
	return col
}

func createIndex(s *schema.Schema, ci *ast.CreateIndex) {
	name := nameOr(ci.Name, schema.UnnamedIndex)
	if ci.IfNotExists && slices.ContainsFunc(s.Indexes, func(i schema.Index) bool { return i.Name == name && i.Table == ci.Table }) {
		return
	}

	s.Indexes = append(s.Indexes, schema.Index{
		Name:      name,
		Table:     ci.Table,
		Columns:   cloneStrings(ci.Columns),
		Unique:    ci.Unique,
		IndexType: schema.DefaultIndexType,
	})
}

func createView(s *schema.Schema, cv *ast.CreateView) {
	tableType := schema.TableTypeView
	if cv.Materialized {
		tableType = schema.TableTypeMaterializedView
	}
	defineTable(s, schema.Table{Name: cv.Name, TableType: tableType})

	cols := make([]schema.Column, 0, len(cv.Columns))
	for _, name := range cv.Columns {
		cols = append(cols, schema.Column{
			Name:     name,
			DataType: schema.UnknownDataType,
			Nullable: true,
		})
	}
	s.Columns[cv.Name] = cols
}

func drop(s *schema.Schema, d *ast.Drop) {
	switch d.ObjectType {
	case ast.ObjectTable:
		for _, name := range d.Names {
			dropTable(s, name)
		}
	case ast.ObjectView:
		for _, name := range d.Names {
			s.RemoveTable(name)
		}
	default:
	}
}

func dropTable(s *schema.Schema, name string) {
	s.RemoveTable(name)
	s.Relationships = slices.DeleteFunc(s.Relationships, func(r schema.Relationship) bool {
		return r.FromTable == name || r.ToTable == name
	})
	s.Indexes = slices.DeleteFunc(s.Indexes, func(i schema.Index) bool { return i.Table == name })
	s.Constraints = slices.DeleteFunc(s.Constraints, func(c schema.Constraint) bool { return c.Table == name })
}

func truncate(s *schema.Schema, t *ast.Truncate) {
	for _, name := range t.Tables {
		if table := s.Table(name); table != nil {
			rows := int64(0)
			table.EstimatedRows = &rows
		}
	}
}

// createSchema assigns the schema name to every table that has none yet
func createSchema(s *schema.Schema, cs *ast.CreateSchema) {
	for i := range s.Tables {
		if s.Tables[i].Schema == nil {
			name := cs.Name
			s.Tables[i].Schema = &name
		}
	}
}

func nameOr(name, placeholder string) string {
	if name == "" {
		return placeholder
	}
	return name
}

// cloneStrings copies a list, returning an empty non-nil slice for nil input
func cloneStrings(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
