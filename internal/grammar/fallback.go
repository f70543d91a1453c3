package grammar

import (
	"errors"

	"github.com/tordrt/ddlschema/internal/ast"
)

// Parser turns the text of one statement segment into statements
type Parser interface {
	Parse(sql string) ([]ast.Statement, error)
}

// FallbackParser tries each grammar in order and keeps the first result
// that parses
type FallbackParser struct {
	parsers []Parser
}

// NewFallbackParser chains parsers in priority order
func NewFallbackParser(parsers ...Parser) *FallbackParser {
	return &FallbackParser{parsers: parsers}
}

// NewParser returns the default grammar chain: PostgreSQL first, then MySQL
// for what PostgreSQL rejects
func NewParser() *FallbackParser {
	return NewFallbackParser(NewPostgresParser(), NewMySQLParser())
}

// Parse returns the statements of the first grammar that accepts sql, or
// every grammar's error when none does
func (p *FallbackParser) Parse(sql string) ([]ast.Statement, error) {
	errs := make([]error, 0, len(p.parsers))
	for _, parser := range p.parsers {
		stmts, err := parser.Parse(sql)
		if err == nil {
			return stmts, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
