package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sous"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

const idleHint = "Enter to send · Ctrl+S suggestion · Ctrl+C to quit"

// Model is the Bubble Tea model for the sous TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	submitter Submitter
	renderer  *Renderer
	theme     sous.Theme
	styles    Styles
	spinner   spinner.Model

	welcome     *WelcomeBlock
	suggestions []string
	suggestion  int

	blocks []MessageBlock
	reply  *ReplyBlock // reply of the turn in progress

	running bool
	cancel  context.CancelFunc
	last    *sous.Turn
	err     error
	ready   bool
}

// Option configures a [Model].
type Option func(*Model)

// WithSuggestions replaces the suggested prompts shown before the first
// message.
func WithSuggestions(s []string) Option {
	return func(m *Model) { m.suggestions = s }
}

// New creates a TUI Model that submits messages through submitter. renderer
// must be the Renderer the submitter reports to.
func New(submitter Submitter, renderer *Renderer, theme sous.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about a recipe..."
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.Accent

	m := Model{
		Input:       ti,
		submitter:   submitter,
		renderer:    renderer,
		theme:       theme,
		styles:      styles,
		spinner:     sp,
		suggestions: DefaultSuggestions,
	}
	for _, o := range opts {
		o(&m)
	}
	m.welcome = NewWelcomeBlock(m.suggestions, styles)
	return m
}

// Running returns whether a turn is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last submission, if any.
func (m Model) Err() error { return m.err }

// LastTurn returns the most recently finished turn.
func (m Model) LastTurn() *sous.Turn { return m.last }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.renderer.Listen())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TurnStartMsg:
		m.reply = NewReplyBlock(m.theme)
		m.blocks = append(m.blocks, m.reply)
		return m.refresh(), m.renderer.Listen()

	case DeltaMsg:
		if m.reply != nil {
			m.reply.Set(msg.Text)
		}
		return m.refresh(), m.renderer.Listen()

	case FailureMsg:
		m = m.showFailure(msg.Message)
		return m.refresh(), m.renderer.Listen()

	case CompleteMsg:
		m.reply = nil
		return m.refresh(), m.renderer.Listen()

	case TurnDoneMsg:
		m.running = false
		m.cancel = nil
		m.reply = nil
		if msg.Turn != nil {
			m.last = msg.Turn
		}
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		cmds = append(cmds, m.Input.Focus(), m.renderer.Listen())
		return m.refresh(), tea.Batch(cmds...)
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	// Output area.
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	// Status line.
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	// Input area.
	b.WriteString(m.Input.View())

	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.cancel != nil {
			m.cancel()
		}
		m.renderer.Close()
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyCtrlS:
		if m.running || len(m.suggestions) == 0 {
			return m, nil
		}
		m.Input.SetValue(m.suggestions[m.suggestion])
		m.Input.CursorEnd()
		m.suggestion = (m.suggestion + 1) % len(m.suggestions)
		return m, nil
	}

	// Only forward non-character keys to the viewport so typing letters
	// never scrolls.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m = m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true

	return m, tea.Batch(
		submitTurn(ctx, m.submitter, m.renderer, text),
		m.spinner.Tick,
	)
}

// showFailure replaces the reply in progress, if any, with a failure block.
func (m Model) showFailure(message string) Model {
	block := NewFailureBlock(message, m.styles)
	if m.reply != nil {
		for i := len(m.blocks) - 1; i >= 0; i-- {
			if m.blocks[i] == MessageBlock(m.reply) {
				m.blocks[i] = block
				m.reply = nil
				return m
			}
		}
	}
	m.blocks = append(m.blocks, block)
	m.reply = nil
	return m
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	width := m.Viewport.Width
	if len(m.blocks) == 0 {
		return m.welcome.View(width)
	}
	parts := make([]string, 0, len(m.blocks))
	for _, b := range m.blocks {
		if v := b.View(width); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	switch {
	case m.running:
		return m.spinner.View() + " " + m.styles.Muted.Render(truncate("Cooking up a reply...", width-2))
	case m.err != nil:
		return m.styles.Error.Render(truncate(fmt.Sprintf("Error: %v", m.err), width))
	case m.last != nil && m.last.State == sous.TurnCompleted:
		return m.styles.Success.Render(truncate(turnStats(m.last)+" · "+idleHint, width))
	case m.last != nil && m.last.State == sous.TurnFailed:
		return m.styles.Error.Render(truncate("Reply failed · "+idleHint, width))
	}
	return m.styles.Muted.Render(truncate(idleHint, width))
}

// turnStats summarizes a completed turn, omitting what the server did not
// report.
func turnStats(t *sous.Turn) string {
	var parts []string
	if t.Model != "" {
		parts = append(parts, t.Model)
	}
	if n := t.Usage.CompletionTokens; n > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", n))
	}
	if tps := t.Usage.TokensPerSecond(); tps > 0 {
		parts = append(parts, fmt.Sprintf("%.1f tok/s", tps))
	}
	parts = append(parts, fmt.Sprintf("%.1fs", t.Elapsed().Seconds()))
	return strings.Join(parts, " · ")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// submitTurn runs the turn off the UI goroutine. Its completion goes through
// the renderer so it arrives after every callback the turn produced.
func submitTurn(ctx context.Context, s Submitter, r *Renderer, text string) tea.Cmd {
	return func() tea.Msg {
		turn, err := s.Submit(ctx, text)
		r.send(TurnDoneMsg{Turn: turn, Err: err})
		return nil
	}
}
