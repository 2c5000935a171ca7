package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/goldmark"
)

var _ MessageBlock = (*ReplyBlock)(nil)

// ReplyBlock renders a streamed reply as markdown behind a "• " prefix. The
// stable prefix up to the last paragraph break is rendered once per width;
// only the text after it is re-rendered as deltas arrive.
type ReplyBlock struct {
	text   string
	theme  sous.Theme
	styles Styles

	stable        string
	stableByWidth map[int]string
}

// NewReplyBlock creates an empty ReplyBlock.
func NewReplyBlock(theme sous.Theme) *ReplyBlock {
	return &ReplyBlock{
		theme:         theme,
		styles:        NewStyles(theme),
		stableByWidth: make(map[int]string),
	}
}

// Set replaces the reply with the full text received so far.
func (b *ReplyBlock) Set(full string) {
	if !strings.HasPrefix(full, b.stable) {
		b.stable = ""
		clear(b.stableByWidth)
	}
	b.text = full
	b.promote()
}

// Text returns the raw reply.
func (b *ReplyBlock) Text() string { return b.text }

func (b *ReplyBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ReplyBlock) View(width int) string {
	body := b.body(bodyWidth(width))
	if body == "" {
		return ""
	}
	prefix := b.styles.Reply.Render("• ")
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, body)
}

// bodyWidth leaves room for the prefix. Zero keeps the renderer default.
func bodyWidth(width int) int {
	if width <= 0 {
		return 0
	}
	return max(width-2, 1)
}

func (b *ReplyBlock) body(width int) string {
	stable := b.renderStable(width)
	tail := strings.TrimPrefix(b.text, b.stable)
	if b.stable != "" {
		tail = strings.TrimPrefix(tail, "\n\n")
	}
	if hasOpenFence(tail) {
		// Render partial code blocks as if already closed.
		tail += "\n```"
	}
	if strings.TrimSpace(tail) == "" {
		return stable
	}
	rendered := goldmark.Render(tail, width, b.theme)
	if strings.TrimSpace(rendered) == "" {
		return stable
	}
	if stable == "" {
		return rendered
	}
	return strings.TrimRight(stable, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promote moves the stable prefix forward to the last paragraph break that is
// not inside a code fence.
func (b *ReplyBlock) promote() {
	for end := len(b.text); ; {
		idx := strings.LastIndex(b.text[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := b.text[:idx]
		if !hasOpenFence(candidate) {
			if candidate != b.stable {
				b.stable = candidate
				clear(b.stableByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *ReplyBlock) renderStable(width int) string {
	if b.stable == "" {
		return ""
	}
	if cached, ok := b.stableByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.stable, width, b.theme)
	b.stableByWidth[width] = rendered
	return rendered
}

// hasOpenFence reports whether s has an odd number of ``` markers.
func hasOpenFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
