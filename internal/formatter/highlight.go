package formatter

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
)

// highlighter tokenises SQL with chroma and renders tokens with the palette
type highlighter struct {
	lexer   chroma.Lexer
	palette palette
}

func newHighlighter(p palette) *highlighter {
	l := lexers.Get("PostgreSQL")
	if l == nil {
		l = lexers.Get("SQL")
	}
	if l == nil {
		l = lexers.Fallback
	}
	return &highlighter{lexer: chroma.Coalesce(l), palette: p}
}

// Highlight returns sql with every recognised token styled. Newlines are
// emitted as-is so line structure survives.
func (h *highlighter) Highlight(sql string) string {
	iter, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) * 2)

	for _, tok := range iter.Tokens() {
		if tok.Value == "" {
			continue
		}

		style, ok := h.styleFor(tok.Type)
		if !ok {
			b.WriteString(tok.Value)
			continue
		}

		lines := strings.Split(tok.Value, "\n")
		for i, line := range lines {
			if line != "" {
				b.WriteString(style.Render(line))
			}
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func (h *highlighter) styleFor(tt chroma.TokenType) (lipgloss.Style, bool) {
	switch {
	// KeywordType is a Keyword subtype, so it goes first
	case tt == chroma.KeywordType:
		return h.palette.Type, true
	case tt == chroma.NameFunction:
		return h.palette.Function, true
	case tt.InCategory(chroma.Keyword):
		return h.palette.Keyword, true
	case tt.InSubCategory(chroma.LiteralString):
		return h.palette.String, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return h.palette.Number, true
	case tt.InCategory(chroma.Comment):
		return h.palette.Comment, true
	case tt == chroma.Operator || tt == chroma.OperatorWord:
		return h.palette.Operator, true
	default:
		return lipgloss.Style{}, false
	}
}
