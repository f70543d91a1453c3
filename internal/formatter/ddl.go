package formatter

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/ddlschema/internal/schema"
)

// DDLFormatter renders the model back into normalized CREATE statements.
// View definitions and check expressions are not part of the model, so
// they are emitted as comments.
type DDLFormatter struct {
	writer      io.Writer
	highlighter *highlighter
}

// NewDDLFormatter creates a new DDL formatter
func NewDDLFormatter(w io.Writer, opts Options) *DDLFormatter {
	f := &DDLFormatter{writer: w}
	if opts.Color {
		f.highlighter = newHighlighter(newPalette(w, true))
	}
	return f
}

// Format writes one CREATE statement per table followed by its indexes
func (f *DDLFormatter) Format(s *schema.Schema) error {
	var b strings.Builder
	for i, table := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		writeTableDDL(&b, s, table)
	}

	out := b.String()
	if f.highlighter != nil {
		out = f.highlighter.Highlight(out)
	}
	if _, err := io.WriteString(f.writer, out); err != nil {
		return fmt.Errorf("failed to write DDL: %w", err)
	}
	return nil
}

func writeTableDDL(b *strings.Builder, s *schema.Schema, table schema.Table) {
	columns := s.Columns[table.Name]

	if table.TableType != schema.TableTypeTable {
		names := make([]string, 0, len(columns))
		for _, col := range columns {
			names = append(names, col.Name)
		}
		fmt.Fprintf(b, "-- %s %s (%s)\n", table.TableType, quoteName(table.Name), strings.Join(names, ", "))
		return
	}

	var lines []string
	for _, col := range columns {
		line := "  " + quoteIdent(col.Name) + " " + col.DataType
		if !col.Nullable {
			line += " NOT NULL"
		}
		if col.DefaultValue != nil {
			line += " DEFAULT " + *col.DefaultValue
		}
		lines = append(lines, line)
	}

	var checks []schema.Constraint
	for _, c := range s.TableConstraints(table.Name) {
		switch {
		case c.IsPrimaryKey():
			lines = append(lines, "  "+constraintPrefix(c)+"PRIMARY KEY ("+quoteList(c.Columns)+")")
		case c.ConstraintType == schema.ConstraintUnique:
			lines = append(lines, "  "+constraintPrefix(c)+"UNIQUE ("+quoteList(c.Columns)+")")
		case c.IsForeignKey():
			lines = append(lines, "  "+foreignKeyClause(c))
		default:
			checks = append(checks, c)
		}
	}

	fmt.Fprintf(b, "CREATE TABLE %s (\n%s\n);\n", quoteName(table.Name), strings.Join(lines, ",\n"))

	for _, c := range checks {
		fmt.Fprintf(b, "-- %s %s on (%s)\n", c.ConstraintType, c.Name, strings.Join(c.Columns, ", "))
	}

	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.Name)
	}
	for _, idx := range s.TableIndexes(table.Name) {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		name := ""
		if idx.Name != schema.UnnamedIndex {
			name = quoteIdent(idx.Name) + " "
		}
		cols := make([]string, 0, len(idx.Columns))
		for _, col := range idx.Columns {
			// Expression keys are emitted as written
			if slices.Contains(names, col) {
				col = quoteIdent(col)
			}
			cols = append(cols, col)
		}
		fmt.Fprintf(b, "CREATE %sINDEX %sON %s USING %s (%s);\n",
			unique, name, quoteName(table.Name), strings.ToLower(idx.IndexType), strings.Join(cols, ", "))
	}
}

func foreignKeyClause(c schema.Constraint) string {
	clause := constraintPrefix(c) + "FOREIGN KEY (" + quoteList(c.Columns) + ")"
	if c.ReferenceTable != nil {
		clause += " REFERENCES " + quoteName(*c.ReferenceTable)
		if len(c.ReferenceColumns) > 0 {
			clause += " (" + quoteList(c.ReferenceColumns) + ")"
		}
	}
	// Referential actions are carried as a suffix of the constraint type
	return clause + strings.TrimPrefix(c.ConstraintType, schema.ConstraintForeignKey)
}

// constraintPrefix renders CONSTRAINT name for named constraints
func constraintPrefix(c schema.Constraint) string {
	switch c.Name {
	case schema.UnnamedPrimaryKey, schema.UnnamedUnique, schema.UnnamedForeignKey, schema.UnnamedCheck:
		return ""
	default:
		return "CONSTRAINT " + quoteIdent(c.Name) + " "
	}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// quoteName quotes a possibly schema-qualified name part by part
func quoteName(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func quoteList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, quoteIdent(n))
	}
	return strings.Join(quoted, ", ")
}
