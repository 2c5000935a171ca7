package mock_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Chat(t *testing.T) {
	t.Parallel()
	t.Run("delegates to ChatFn", func(t *testing.T) {
		t.Parallel()
		c := mock.Client{
			ChatFn: func(ctx context.Context, req sous.ChatRequest) (io.ReadCloser, error) {
				assert.Equal(t, "hi", req.Message)
				return io.NopCloser(strings.NewReader("body")), nil
			},
		}
		body, err := c.Chat(context.Background(), sous.ChatRequest{Message: "hi"})
		require.NoError(t, err)
		got, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "body", string(got))
	})

	t.Run("panics when ChatFn not set", func(t *testing.T) {
		t.Parallel()
		c := mock.Client{}
		assert.Panics(t, func() {
			_, _ = c.Chat(context.Background(), sous.ChatRequest{})
		})
	})
}

func TestRenderer(t *testing.T) {
	t.Parallel()
	t.Run("delegates callbacks", func(t *testing.T) {
		t.Parallel()
		var calls []string
		r := mock.Renderer{
			OnTurnStartFn: func() { calls = append(calls, "start") },
			OnDeltaFn:     func(full string) { calls = append(calls, "delta:"+full) },
			OnFailureFn:   func(msg string) { calls = append(calls, "failure:"+msg) },
			OnCompleteFn:  func() { calls = append(calls, "complete") },
		}
		r.OnTurnStart()
		r.OnDelta("He")
		r.OnFailure("boom")
		r.OnComplete()
		assert.Equal(t, []string{"start", "delta:He", "failure:boom", "complete"}, calls)
	})

	t.Run("unset callbacks are no-ops", func(t *testing.T) {
		t.Parallel()
		r := mock.Renderer{}
		assert.NotPanics(t, func() {
			r.OnTurnStart()
			r.OnDelta("x")
			r.OnFailure("x")
			r.OnComplete()
		})
	})
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()
	t.Run("delegates to GenerateFn", func(t *testing.T) {
		t.Parallel()
		s := mock.Records()
		g := mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (sous.RecordStream, error) {
				assert.Equal(t, "prompt", prompt)
				return s, nil
			},
		}
		got, err := g.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("upstream down")
		g := mock.Generator{
			GenerateFn: func(ctx context.Context, prompt string) (sous.RecordStream, error) {
				return nil, wantErr
			},
		}
		_, err := g.Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestRecordStream(t *testing.T) {
	t.Parallel()
	t.Run("panics when NextFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.RecordStream{}
		assert.Panics(t, func() {
			_, _ = s.Next()
		})
	})

	t.Run("close is nil-safe", func(t *testing.T) {
		t.Parallel()
		s := mock.RecordStream{}
		assert.NoError(t, s.Close())
	})

	t.Run("close delegates to CloseFn", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("close error")
		s := mock.RecordStream{CloseFn: func() error { return wantErr }}
		assert.ErrorIs(t, s.Close(), wantErr)
	})
}

func TestRecords(t *testing.T) {
	t.Parallel()
	s := mock.Records(sous.TextRecord("a"), sous.DoneRecord())

	rec, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, sous.TextRecord("a"), rec)

	rec, err = s.Next()
	require.NoError(t, err)
	assert.True(t, rec.Done)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecipeStore_Search(t *testing.T) {
	t.Parallel()
	want := []sous.Recipe{{Title: "Pancakes"}}
	s := mock.RecipeStore{
		SearchFn: func(ctx context.Context, query string, limit int) ([]sous.Recipe, error) {
			assert.Equal(t, "eggs", query)
			assert.Equal(t, 5, limit)
			return want, nil
		},
	}
	got, err := s.Search(context.Background(), "eggs", 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
