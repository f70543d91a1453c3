package formatter

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette holds the styles used by the text and ddl formats. The renderer
// profile is fixed up front so output never depends on the terminal the
// process happens to run in.
type palette struct {
	Table    lipgloss.Style
	Column   lipgloss.Style
	Type     lipgloss.Style
	Keyword  lipgloss.Style
	Section  lipgloss.Style
	String   lipgloss.Style
	Number   lipgloss.Style
	Comment  lipgloss.Style
	Operator lipgloss.Style
	Function lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))

	return palette{
		Table:    r.NewStyle().Foreground(lipgloss.Color("#569CD6")).Bold(true),
		Column:   r.NewStyle().Foreground(lipgloss.Color("#9CDCFE")),
		Type:     r.NewStyle().Foreground(lipgloss.Color("#4EC9B0")),
		Keyword:  r.NewStyle().Foreground(lipgloss.Color("#C586C0")),
		Section:  r.NewStyle().Foreground(lipgloss.Color("#808080")).Bold(true),
		String:   r.NewStyle().Foreground(lipgloss.Color("#CE9178")),
		Number:   r.NewStyle().Foreground(lipgloss.Color("#B5CEA8")),
		Comment:  r.NewStyle().Foreground(lipgloss.Color("#6A9955")).Italic(true),
		Operator: r.NewStyle().Foreground(lipgloss.Color("#D4D4D4")),
		Function: r.NewStyle().Foreground(lipgloss.Color("#DCDCAA")),
	}
}
