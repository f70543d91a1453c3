package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/ddlschema/internal/schema"
)

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) (*MultiFileFormatter, error) {
	switch format {
	case "", FormatText:
		format = FormatText
	case FormatMarkdown, "md":
		format = FormatMarkdown
	default:
		return nil, fmt.Errorf("multi-file output supports text or markdown, got %s", format)
	}
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}, nil
}

// Format writes the schema to multiple files
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables {
		if err := f.writeTableFile(s, table); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

// writeOverview writes the overview file
func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		f.writeMarkdownOverview(file, s)
	} else {
		f.writeTextOverview(file, s)
	}
	return nil
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, s *schema.Schema) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "- **%s**", table.Name)
		if targets := referencedTables(s, table.Name); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, s *schema.Schema) {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.getFileExtension())

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "%s", table.Name)
		if targets := referencedTables(s, table.Name); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(s *schema.Schema, table schema.Table) error {
	name := strings.ReplaceAll(table.Name, string(os.PathSeparator), "_")
	filename := filepath.Join(f.OutputDir, name+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(file).FormatTable(s, table)

		// Add incoming relationships
		if incoming := s.IncomingRelationships(table.Name); len(incoming) > 0 {
			_, _ = fmt.Fprintf(file, "### Referenced by\n\n")
			for _, rel := range incoming {
				_, _ = fmt.Fprintf(file, "- %s.%s → %s (%s)\n",
					rel.FromTable, rel.FromColumn,
					rel.ToColumn,
					describeRelationship(rel.RelationshipType))
			}
			_, _ = fmt.Fprintln(file)
		}
		return nil
	}

	NewTextFormatter(file, Options{}).formatTable(s, table)
	if incoming := s.IncomingRelationships(table.Name); len(incoming) > 0 {
		_, _ = fmt.Fprintln(file)
		_, _ = fmt.Fprintln(file, "  REFERENCED BY:")
		for _, rel := range incoming {
			_, _ = fmt.Fprintf(file, "    %s.%s → %s (%s)\n", rel.FromTable, rel.FromColumn, rel.ToColumn, rel.RelationshipType)
		}
	}
	return nil
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}

// sortedTables returns the tables sorted alphabetically
func sortedTables(s *schema.Schema) []schema.Table {
	tables := make([]schema.Table, len(s.Tables))
	copy(tables, s.Tables)
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Name < tables[j].Name
	})
	return tables
}

// referencedTables lists the distinct targets of a table's relationships
func referencedTables(s *schema.Schema, table string) []string {
	var targets []string
	seen := make(map[string]bool)
	for _, rel := range s.OutgoingRelationships(table) {
		if !seen[rel.ToTable] {
			seen[rel.ToTable] = true
			targets = append(targets, rel.ToTable)
		}
	}
	return targets
}
