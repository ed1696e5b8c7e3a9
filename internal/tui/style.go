package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// styles holds the renderers used for console output
type styles struct {
	warn lipgloss.Style
	err  lipgloss.Style
	hash lipgloss.Style
}

// newRenderer returns a lipgloss renderer for w.
// Colour is dropped when w is not a terminal or NO_COLOR is set.
func newRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if os.Getenv("NO_COLOR") != "" || !IsTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		warn: r.NewStyle().Foreground(lipgloss.Color("3")),
		err:  r.NewStyle().Foreground(lipgloss.Color("1")),
		hash: r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}
