package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minWrapWidth keeps narrow panes readable.
const minWrapWidth = 24

// MarkdownRenderer renders markdown for terminal views and recreates the renderer when wrap width
// changes.
type MarkdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer constructs an empty renderer; the glamour renderer is built lazily.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render converts markdown into ANSI-styled terminal text wrapped at width.
func (r *MarkdownRenderer) Render(markdown string, width int) (string, error) {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", nil
	}
	wrapWidth := max(width, minWrapWidth)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return "", err
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n"), nil
}

// RenderOrPlain falls back to the raw markdown when rendering fails.
func (r *MarkdownRenderer) RenderOrPlain(markdown string, width int) string {
	out, err := r.Render(markdown, width)
	if err != nil {
		return strings.TrimSpace(markdown)
	}
	return out
}
