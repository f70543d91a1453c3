package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tordrt/ddlschema/internal/schema"
)

// JSONFormatter writes the model as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes the schema as a single JSON document
func (f *JSONFormatter) Format(s *schema.Schema) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode schema as JSON: %w", err)
	}
	return nil
}
