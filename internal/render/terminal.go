package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders Markdown for the terminal with glamour.
type Terminal struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewTerminal builds a renderer wrapping at width columns. If glamour cannot
// be initialised the renderer passes Markdown through unchanged.
func NewTerminal(width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	r, _ := glamour.NewTermRenderer( //nolint:errcheck // nil renderer falls back to raw markdown
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	return &Terminal{renderer: r, width: width}
}

// Width is the wrap width the renderer was built with.
func (t *Terminal) Width() int { return t.width }

// Render returns styled output, or md itself if styling fails.
func (t *Terminal) Render(md string) string {
	if t == nil || t.renderer == nil {
		return md
	}
	out, err := t.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
