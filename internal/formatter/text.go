package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ddlschema/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer  io.Writer
	palette palette
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer, opts Options) *TextFormatter {
	return &TextFormatter{writer: w, palette: newPalette(w, opts.Color)}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(s, table)
	}
	return nil
}

func (f *TextFormatter) formatTable(s *schema.Schema, table schema.Table) {
	p := f.palette

	// Table header with primary key
	header := p.Keyword.Render(table.TableType) + " " + p.Table.Render(table.Name)
	if pk := s.PrimaryKey(table.Name); len(pk) > 0 {
		header += fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	if table.EstimatedRows != nil {
		header += fmt.Sprintf(" [rows: %d]", *table.EstimatedRows)
	}
	_, _ = fmt.Fprintln(f.writer, header)

	for _, col := range s.Columns[table.Name] {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if rels := s.OutgoingRelationships(table.Name); len(rels) > 0 {
		f.section("RELATIONS")
		for _, rel := range rels {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s (%s)\n", rel.FromColumn, rel.ToTable, rel.ToColumn, rel.RelationshipType)
		}
	}

	if indexes := s.TableIndexes(table.Name); len(indexes) > 0 {
		f.section("INDEXES")
		for _, idx := range indexes {
			unique := ""
			if idx.Unique {
				unique = " UNIQUE"
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s) %s%s\n", idx.Name, strings.Join(idx.Columns, ", "), idx.IndexType, unique)
		}
	}

	if constraints := s.TableConstraints(table.Name); len(constraints) > 0 {
		f.section("CONSTRAINTS")
		for _, c := range constraints {
			line := fmt.Sprintf("    %s %s (%s)", c.Name, c.ConstraintType, strings.Join(c.Columns, ", "))
			if c.ReferenceTable != nil {
				line += fmt.Sprintf(" → %s(%s)", *c.ReferenceTable, strings.Join(c.ReferenceColumns, ", "))
			}
			_, _ = fmt.Fprintln(f.writer, line)
		}
	}
}

func (f *TextFormatter) section(title string) {
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "  %s:\n", f.palette.Section.Render(title))
}

func (f *TextFormatter) formatColumn(col schema.Column) string {
	p := f.palette
	parts := []string{p.Column.Render(col.Name) + ":", p.Type.Render(col.DataType)}

	if !col.Nullable {
		parts = append(parts, p.Keyword.Render("NOT NULL"))
	}
	if col.DefaultValue != nil {
		parts = append(parts, fmt.Sprintf("%s %s", p.Keyword.Render("DEFAULT"), *col.DefaultValue))
	}
	if col.References != nil {
		parts = append(parts, "→ "+*col.References)
	}

	return strings.Join(parts, " ")
}
