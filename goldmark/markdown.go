// Package goldmark renders assistant replies written in markdown as
// ANSI-styled terminal text, using goldmark for parsing and lipgloss for
// styling.
package goldmark

import "github.com/fwojciec/sous"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output
// wrapped to width. Incomplete markdown, as seen mid-stream, renders as far
// as it parses.
func Render(source string, width int, theme sous.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}
