// Package builder folds parsed DDL statements into a schema model.
package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tordrt/ddlschema/internal/ast"
	"github.com/tordrt/ddlschema/internal/schema"
	"github.com/tordrt/ddlschema/internal/splitter"
)

// Parser turns the text of one statement segment into statements.
// A segment that fails to parse contributes nothing to the model.
type Parser interface {
	Parse(sql string) ([]ast.Statement, error)
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger used for skipped statements and build summaries
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithoutInference disables naming-convention relationship inference
func WithoutInference() Option {
	return func(b *Builder) {
		b.infer = false
	}
}

// Builder builds schema models from DDL documents. A Builder holds no
// per-document state and may be reused; every Build call owns its model.
type Builder struct {
	parser Parser
	logger *slog.Logger
	infer  bool
}

// New creates a builder that parses statements with p
func New(p Parser, opts ...Option) *Builder {
	b := &Builder{
		parser: p,
		logger: slog.New(slog.DiscardHandler),
		infer:  true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build splits sql into statements, applies every statement that parses in
// input order, then runs relationship inference once.
func (b *Builder) Build(ctx context.Context, sql string) (*schema.Schema, error) {
	return b.BuildAll(ctx, []string{sql})
}

// BuildAll builds one model from several documents applied in order. Each
// document is split on its own, so an unterminated statement, quote or
// trailing escape at the end of one document never reaches into the next.
func (b *Builder) BuildAll(ctx context.Context, docs []string) (*schema.Schema, error) {
	if b.parser == nil {
		return nil, fmt.Errorf("failed to build schema: no parser configured")
	}

	s := schema.New()
	segment, skipped := 0, 0
	for _, doc := range docs {
		for stmt := range splitter.Statements(doc) {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("failed to build schema: %w", err)
			}
			segment++

			parsed, err := b.parser.Parse(stmt)
			if err != nil {
				skipped++
				b.logger.Debug("skipping statement", "segment", segment, "error", err)
				continue
			}
			for _, st := range parsed {
				Apply(s, st)
			}
		}
	}

	if b.infer {
		InferRelationships(s)
	}

	b.logger.Debug("schema built",
		"documents", len(docs),
		"segments", segment,
		"skipped", skipped,
		"tables", len(s.Tables),
		"relationships", len(s.Relationships),
		"indexes", len(s.Indexes),
		"constraints", len(s.Constraints),
	)
	return s, nil
}
