package bubbletea

import tea "github.com/charmbracelet/bubbletea"

var _ MessageBlock = (*FailureBlock)(nil)

// FailureBlock renders the message shown in place of a failed reply.
type FailureBlock struct {
	message string
	styles  Styles
}

// NewFailureBlock creates a FailureBlock.
func NewFailureBlock(message string, styles Styles) *FailureBlock {
	return &FailureBlock{message: message, styles: styles}
}

func (b *FailureBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *FailureBlock) View(width int) string {
	return b.styles.Error.Width(width).Render("✗ " + b.message)
}
