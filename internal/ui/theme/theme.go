// Package theme holds the terminal styles of the command line output.
package theme

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
)

// Styles renders through one writer so colors are dropped when it is not a terminal.
type Styles struct {
	Title lipgloss.Style
	Muted lipgloss.Style
	OK    lipgloss.Style
	Skip  lipgloss.Style
	Fail  lipgloss.Style
	Hot   lipgloss.Style
	Key   lipgloss.Style
}

func For(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().Foreground(Sapphire).Bold(true),
		Muted: r.NewStyle().Foreground(Subtext0),
		OK:    r.NewStyle().Foreground(Green),
		Skip:  r.NewStyle().Foreground(Peach),
		Fail:  r.NewStyle().Foreground(Red).Bold(true),
		Hot:   r.NewStyle().Foreground(Peach).Bold(true),
		Key:   r.NewStyle().Foreground(Text).Width(12),
	}
}
