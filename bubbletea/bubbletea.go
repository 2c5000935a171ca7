// Package bubbletea provides a Bubble Tea TUI for sous chat sessions.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sous"
)

// Submitter runs one chat turn to completion. *sous.Session implements it.
type Submitter interface {
	Submit(ctx context.Context, text string) (*sous.Turn, error)
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// TurnStartMsg signals that a turn has been admitted.
type TurnStartMsg struct{}

// DeltaMsg carries the full reply text received so far.
type DeltaMsg struct {
	Text string
}

// FailureMsg carries the message shown in place of a failed reply.
type FailureMsg struct {
	Message string
}

// CompleteMsg signals that the reply finished cleanly.
type CompleteMsg struct{}

// TurnDoneMsg signals that Submit has returned.
type TurnDoneMsg struct {
	Turn *sous.Turn
	Err  error
}
