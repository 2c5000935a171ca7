package bubbletea

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sous"
)

const rendererBuffer = 256

var _ sous.Renderer = (*Renderer)(nil)

// Renderer forwards session callbacks to the TUI as Bubble Tea messages.
// Callbacks block while the buffer is full and return immediately once the
// Renderer is closed.
type Renderer struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewRenderer creates an open Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		ch:   make(chan tea.Msg, rendererBuffer),
		done: make(chan struct{}),
	}
}

func (r *Renderer) OnTurnStart()             { r.send(TurnStartMsg{}) }
func (r *Renderer) OnDelta(fullText string)  { r.send(DeltaMsg{Text: fullText}) }
func (r *Renderer) OnFailure(message string) { r.send(FailureMsg{Message: message}) }
func (r *Renderer) OnComplete()              { r.send(CompleteMsg{}) }

// Close releases any callback or listener blocked on the Renderer.
func (r *Renderer) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Renderer) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.done:
	}
}

// Listen returns a command that waits for the next message. It yields nil
// once the Renderer is closed.
func (r *Renderer) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-r.ch:
			return msg
		case <-r.done:
			return nil
		}
	}
}
