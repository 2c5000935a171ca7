package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
)

var _ MessageBlock = (*WelcomeBlock)(nil)

const chipGap = "  "

// DefaultSuggestions are the prompts offered before the first message.
var DefaultSuggestions = []string{
	"What can I make with chicken, rice and broccoli?",
	"Give me a quick vegetarian pasta dinner.",
	"How do I make banana bread without eggs?",
	"Suggest a dessert with dark chocolate.",
}

// WelcomeBlock introduces the assistant and lists suggested prompts.
type WelcomeBlock struct {
	suggestions []string
	styles      Styles
}

// NewWelcomeBlock creates a WelcomeBlock.
func NewWelcomeBlock(suggestions []string, styles Styles) *WelcomeBlock {
	return &WelcomeBlock{suggestions: suggestions, styles: styles}
}

func (b *WelcomeBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *WelcomeBlock) View(width int) string {
	var sb strings.Builder
	sb.WriteString(b.styles.Accent.Render("Welcome to Sous"))
	sb.WriteString("\n")
	intro := "Ask me what to cook. I'll look through the recipe collection and suggest something that fits."
	sb.WriteString(lipgloss.NewStyle().Width(width).Render(intro))
	if len(b.suggestions) == 0 {
		return sb.String()
	}
	sb.WriteString("\n\n")
	sb.WriteString(b.styles.Muted.Render("Try one of these (Ctrl+S):"))
	for _, line := range chipLines(b.suggestions, width) {
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// chipLines lays suggestions out as "[ text ]" chips, packing as many on a
// line as fit in width. Widths are counted in terminal cells.
func chipLines(suggestions []string, width int) []string {
	var (
		lines []string
		line  strings.Builder
		used  int
	)
	for _, s := range suggestions {
		chip := "[ " + s + " ]"
		w := uniseg.StringWidth(chip)
		if used > 0 && used+len(chipGap)+w > width {
			lines = append(lines, line.String())
			line.Reset()
			used = 0
		}
		if used > 0 {
			line.WriteString(chipGap)
			used += len(chipGap)
		}
		line.WriteString(chip)
		used += w
	}
	if used > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
