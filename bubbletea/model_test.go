package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/sous"
	bt "github.com/fwojciec/sous/bubbletea"
	"github.com/fwojciec/sous/mock"
	"github.com/fwojciec/sous/ndjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitFunc adapts a function to bt.Submitter.
type submitFunc func(ctx context.Context, text string) (*sous.Turn, error)

func (f submitFunc) Submit(ctx context.Context, text string) (*sous.Turn, error) {
	return f(ctx, text)
}

func nopSubmit(ctx context.Context, text string) (*sous.Turn, error) {
	return &sous.Turn{Message: text, State: sous.TurnCompleted}, nil
}

func initModel(t *testing.T, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, 80, 24, opts...)
}

func initModelWithSize(t *testing.T, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	r := bt.NewRenderer()
	t.Cleanup(r.Close)
	m := bt.New(submitFunc(nopSubmit), r, sous.DefaultTheme(), opts...)
	return update(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

func update(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func TestNew(t *testing.T) {
	t.Parallel()

	r := bt.NewRenderer()
	defer r.Close()
	m := bt.New(submitFunc(nopSubmit), r, sous.DefaultTheme())

	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Nil(t, m.LastTurn())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size sizes the viewport", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2

		m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("shows welcome before the first message", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, bt.WithSuggestions([]string{"Soup please"}))
		content := stripANSI(bt.RenderContent(m))
		assert.Contains(t, content, "Welcome to Sous")
		assert.Contains(t, content, "[ Soup please ]")
	})

	t.Run("blank input is ignored", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		m.Input.SetValue("   ")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)
		assert.Nil(t, cmd)
		assert.False(t, model.Running())
		assert.Contains(t, stripANSI(bt.RenderContent(model)), "Welcome to Sous")
	})

	t.Run("enter submits and hides welcome", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		m.Input.SetValue("pancakes?")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)
		assert.NotNil(t, cmd)
		assert.True(t, model.Running())
		assert.Empty(t, model.Input.Value())

		content := stripANSI(bt.RenderContent(model))
		assert.Contains(t, content, "> pancakes?")
		assert.NotContains(t, content, "Welcome to Sous")
		assert.Contains(t, stripANSI(bt.StatusLine(model)), "Cooking up a reply...")
	})

	t.Run("input is ignored while a turn runs", func(t *testing.T) {
		t.Parallel()

		m := bt.SetRunning(initModel(t))
		m.Input.SetValue("again")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, "again", updated.(bt.Model).Input.Value())
	})

	t.Run("ctrl+s cycles suggestions into the input", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, bt.WithSuggestions([]string{"one", "two"}))
		m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Equal(t, "one", m.Input.Value())
		m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Equal(t, "two", m.Input.Value())
		m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Equal(t, "one", m.Input.Value())
	})

	t.Run("ctrl+s is ignored while a turn runs", func(t *testing.T) {
		t.Parallel()

		m := bt.SetRunning(initModel(t, bt.WithSuggestions([]string{"one"})))
		m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
		assert.Empty(t, m.Input.Value())
	})

	t.Run("deltas render the reply", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		m = update(t, m, bt.TurnStartMsg{})
		m = update(t, m, bt.DeltaMsg{Text: "Try **pancakes**"})
		m = update(t, m, bt.DeltaMsg{Text: "Try **pancakes** with syrup."})
		m = update(t, m, bt.CompleteMsg{})

		content := stripANSI(bt.RenderContent(m))
		assert.Contains(t, content, "Try pancakes with syrup.")
		assert.NotContains(t, content, "Welcome to Sous")
	})

	t.Run("failure replaces the partial reply", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		m = update(t, m, bt.TurnStartMsg{})
		m = update(t, m, bt.DeltaMsg{Text: "Partial"})
		m = update(t, m, bt.FailureMsg{Message: sous.FailureMessage})

		content := stripANSI(bt.RenderContent(m))
		assert.Contains(t, content, sous.FailureMessage)
		assert.NotContains(t, content, "Partial")
	})

	t.Run("failure without a reply is appended", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		m = update(t, m, bt.FailureMsg{Message: "Too many requests."})
		assert.Contains(t, stripANSI(bt.RenderContent(m)), "✗ Too many requests.")
	})

	t.Run("turn done shows statistics", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		turn := &sous.Turn{
			State:    sous.TurnCompleted,
			Model:    "llama3.2",
			Usage:    sous.Usage{CompletionTokens: 12, EvalDuration: 2 * time.Second},
			Started:  start,
			Finished: start.Add(2500 * time.Millisecond),
		}
		m := bt.SetRunning(initModelWithSize(t, 200, 24))
		m = update(t, m, bt.TurnDoneMsg{Turn: turn})

		assert.False(t, m.Running())
		assert.Same(t, turn, m.LastTurn())
		status := stripANSI(bt.StatusLine(m))
		assert.Contains(t, status, "llama3.2 · 12 tokens · 6.0 tok/s · 2.5s")
		assert.Contains(t, status, "Enter to send")
	})

	t.Run("failed turn is flagged in the status line", func(t *testing.T) {
		t.Parallel()

		m := bt.SetRunning(initModel(t))
		m = update(t, m, bt.TurnDoneMsg{Turn: &sous.Turn{State: sous.TurnFailed}})
		status := stripANSI(bt.StatusLine(m))
		assert.True(t, strings.HasPrefix(status, "Reply failed · Enter to send"))
	})

	t.Run("submit error is shown in the status line", func(t *testing.T) {
		t.Parallel()

		m := bt.SetRunning(initModel(t))
		m = update(t, m, bt.TurnDoneMsg{Err: sous.ErrTurnInProgress})
		assert.ErrorIs(t, m.Err(), sous.ErrTurnInProgress)
		assert.Contains(t, stripANSI(bt.StatusLine(m)), "Error: turn in progress")
	})

	t.Run("cancellation is not an error", func(t *testing.T) {
		t.Parallel()

		m := bt.SetRunning(initModel(t))
		m = update(t, m, bt.TurnDoneMsg{Err: context.Canceled})
		assert.NoError(t, m.Err())
	})

	t.Run("status line is truncated to width", func(t *testing.T) {
		t.Parallel()

		m := initModelWithSize(t, 20, 10)
		status := bt.StatusLine(m)
		assert.LessOrEqual(t, lipgloss.Width(status), 20)
		assert.Contains(t, stripANSI(status), "…")
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		t.Parallel()

		m := initModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	})
}

func newSession(client sous.Client, r sous.Renderer) *sous.Session {
	return sous.NewSession(client, r, func() sous.Decoder { return ndjson.NewDecoder() })
}

func TestModel_EndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("streams a reply", func(t *testing.T) {
		t.Parallel()

		var (
			mu   sync.Mutex
			sent []string
		)
		client := &mock.Client{
			ChatFn: func(ctx context.Context, req sous.ChatRequest) (io.ReadCloser, error) {
				mu.Lock()
				sent = append(sent, req.Message)
				mu.Unlock()
				body := `{"model":"llama3.2","response":"Hello "}` + "\n" +
					`{"response":"there!"}` + "\n" +
					`{"done":true,"eval_count":3,"eval_duration":1000000000}` + "\n"
				return io.NopCloser(strings.NewReader(body)), nil
			},
		}
		r := bt.NewRenderer()
		m := bt.New(newSession(client, r), r, sous.DefaultTheme())
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello there!")) &&
				bytes.Contains(out, []byte("3.0 tok/s"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		require.NotNil(t, final.LastTurn())
		assert.Equal(t, "Hello there!", final.LastTurn().Reply)
		assert.Equal(t, sous.TurnCompleted, final.LastTurn().State)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"hi"}, sent)
	})

	t.Run("shows failure when the endpoint refuses", func(t *testing.T) {
		t.Parallel()

		client := &mock.Client{
			ChatFn: func(ctx context.Context, req sous.ChatRequest) (io.ReadCloser, error) {
				return nil, &sous.StatusError{Code: 503, Body: "down"}
			},
		}
		r := bt.NewRenderer()
		m := bt.New(newSession(client, r), r, sous.DefaultTheme())
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte(sous.FailureMessage)) &&
				bytes.Contains(out, []byte("Reply failed"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final := fm.(bt.Model)
		require.NotNil(t, final.LastTurn())
		assert.Equal(t, sous.TurnFailed, final.LastTurn().State)
		var se *sous.StatusError
		assert.True(t, errors.As(final.LastTurn().Err, &se))
	})
}
