package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sous"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type styles struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	marker    lipgloss.Style
	muted     lipgloss.Style
	code      lipgloss.Style
	underline lipgloss.Style
}

type renderer struct {
	st    styles
	src   []byte
	out   bytes.Buffer
	width int
}

func newRenderer(theme sous.Theme) *renderer {
	return &renderer{st: styles{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Bold(true).Foreground(ansiColor(theme.Accent)),
		marker:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Reply)),
		underline: lipgloss.NewStyle().Underline(true),
	}}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(source []byte, width int) string {
	r.src = source
	r.width = width
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	r.blocks(doc, "")
	return strings.TrimRight(r.out.String(), "\n")
}

// blocks renders the block children of node, each line prefixed by indent.
// Blocks are separated by one blank line.
func (r *renderer) blocks(node ast.Node, indent string) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, indent)
		if c.NextSibling() != nil {
			r.out.WriteString(strings.TrimRight(indent, " ") + "\n")
		}
	}
}

func (r *renderer) block(node ast.Node, indent string) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrapped(indent, "", r.inline(n))

	case *ast.Heading:
		r.wrapped(indent, "", r.st.heading.Render(r.inline(n)))

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(r.src)); lang != "" {
			r.out.WriteString(indent + r.st.muted.Render(lang) + "\n")
		}
		r.code(n, indent)

	case *ast.CodeBlock:
		r.code(n, indent)

	case *ast.List:
		r.list(n, indent)

	case *ast.Blockquote:
		r.blocks(n, indent+r.st.muted.Render("┃")+" ")

	case *ast.ThematicBreak:
		w := r.width - lipgloss.Width(indent)
		if w < 3 {
			w = 3
		}
		r.out.WriteString(indent + r.st.muted.Render(strings.Repeat("─", w)) + "\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.out.WriteString(indent + strings.TrimRight(string(seg.Value(r.src)), "\n") + "\n")
		}

	default:
		r.blocks(n, indent)
	}
}

// code writes the lines of a code block verbatim behind a gutter.
func (r *renderer) code(n ast.Node, indent string) {
	gutter := indent + r.st.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.out.WriteString(gutter + r.st.code.Render(strings.TrimRight(string(seg.Value(r.src)), "\n")) + "\n")
	}
}

func (r *renderer) list(n *ast.List, indent string) {
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		hang := indent + strings.Repeat(" ", lipgloss.Width(marker))

		first := true
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if first {
					r.wrapped(indent, r.st.marker.Render(marker), r.inline(in))
				} else {
					r.wrapped(hang, "", r.inline(in))
				}
			default:
				if first {
					r.out.WriteString(indent + r.st.marker.Render(marker) + "\n")
				}
				r.block(ic, hang)
			}
			first = false
		}
		if first {
			r.out.WriteString(indent + r.st.marker.Render(marker) + "\n")
		}
	}
}

// wrapped writes content word-wrapped to the remaining width. The first line
// starts with indent+lead; continuation lines hang under the content.
func (r *renderer) wrapped(indent, lead, content string) {
	prefix := lipgloss.Width(indent) + lipgloss.Width(lead)
	w := r.width - prefix
	if w < 10 {
		w = 10
	}
	hang := indent + strings.Repeat(" ", lipgloss.Width(lead))
	for i, line := range strings.Split(lipgloss.NewStyle().Width(w).Render(content), "\n") {
		if i == 0 {
			r.out.WriteString(indent + lead + line + "\n")
			continue
		}
		r.out.WriteString(hang + line + "\n")
	}
}

// inline returns the styled inline content of node.
func (r *renderer) inline(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &b)
	}
	return b.String()
}

func (r *renderer) span(node ast.Node, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(r.st.italic.Render(r.inline(n)))
		} else {
			b.WriteString(r.st.bold.Render(r.inline(n)))
		}

	case *ast.CodeSpan:
		b.WriteString(r.st.code.Render(r.inline(n)))

	case *ast.Link:
		b.WriteString(r.st.underline.Render(r.inline(n)))
		b.WriteString(" " + r.st.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		b.WriteString(r.st.underline.Render(string(n.URL(r.src))))

	case *ast.Image:
		b.WriteString(r.st.underline.Render(r.inline(n)))
		b.WriteString(" " + r.st.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.src))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, b)
		}
	}
}
