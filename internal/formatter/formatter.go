// Package formatter renders a schema model for people and for tools.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/ddlschema/internal/schema"
)

// Output format names
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatDDL      = "ddl"
)

// Formatter writes a schema model in one output format
type Formatter interface {
	Format(s *schema.Schema) error
}

// Options control presentation details shared by all formatters
type Options struct {
	// Color enables ANSI styling in the text and ddl formats
	Color bool
}

// Formats lists the single-stream output formats
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatText, FormatMarkdown, FormatDDL}
}

// New creates the formatter for format writing to w
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatYAML, "yml":
		return NewYAMLFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w, opts), nil
	case FormatMarkdown, "md":
		return NewMarkdownFormatter(w), nil
	case FormatDDL, "sql":
		return NewDDLFormatter(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}
