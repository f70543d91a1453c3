package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ddlschema/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables {
		f.formatTable(s, table)
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(s *schema.Schema, table schema.Table) {
	f.formatTable(s, table)
}

func (f *MarkdownFormatter) formatTable(s *schema.Schema, table schema.Table) {
	// Table header
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)
	if table.TableType != schema.TableTypeTable {
		_, _ = fmt.Fprintf(f.writer, "_%s_\n\n", strings.ToLower(table.TableType))
	}

	// Columns
	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range s.Columns[table.Name] {
		constraintStr := f.formatConstraints(col)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.DataType, constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.DataType)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	// Relations
	if rels := s.OutgoingRelationships(table.Name); len(rels) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, rel := range rels {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s (%s)\n",
				rel.FromColumn,
				rel.ToTable,
				rel.ToColumn,
				describeRelationship(rel.RelationshipType))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	// Indexes
	if indexes := s.TableIndexes(table.Name); len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Idx")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range indexes {
			if idx.Unique {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s), unique\n",
					idx.Name,
					strings.Join(idx.Columns, ", "))
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n",
					idx.Name,
					strings.Join(idx.Columns, ", "))
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	// Constraints other than the primary key, which is shown per column
	var constraints []schema.Constraint
	for _, c := range s.TableConstraints(table.Name) {
		if !c.IsPrimaryKey() {
			constraints = append(constraints, c)
		}
	}
	if len(constraints) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Constraints")
		_, _ = fmt.Fprintln(f.writer)
		for _, c := range constraints {
			_, _ = fmt.Fprintf(f.writer, "- %s: %s (%s)\n", c.Name, c.ConstraintType, strings.Join(c.Columns, ", "))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column) string {
	var constraints []string

	if col.IsPrimaryKey {
		constraints = append(constraints, "PK")
	}

	if col.IsForeignKey && col.References != nil {
		constraints = append(constraints, fmt.Sprintf("FK → %s", *col.References))
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.DefaultValue != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.DefaultValue))
	}

	return strings.Join(constraints, ", ")
}

// describeRelationship renders a relationship tag for readers
func describeRelationship(relationshipType string) string {
	switch relationshipType {
	case schema.RelationshipForeignKey:
		return "foreign key"
	case schema.RelationshipInferred:
		return "inferred from name"
	default:
		return relationshipType
	}
}
