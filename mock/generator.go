package mock

import (
	"context"

	"github.com/fwojciec/sous"
)

// Interface compliance checks.
var (
	_ sous.Generator    = (*Generator)(nil)
	_ sous.RecordStream = (*RecordStream)(nil)
	_ sous.RecipeStore  = (*RecipeStore)(nil)
)

// Generator is a test double for sous.Generator.
// Set GenerateFn before calling Generate.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (sous.RecordStream, error)
}

// Generate delegates to GenerateFn.
func (g *Generator) Generate(ctx context.Context, prompt string) (sous.RecordStream, error) {
	return g.GenerateFn(ctx, prompt)
}

// RecordStream is a test double for sous.RecordStream.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe because
// callers always defer Close.
type RecordStream struct {
	NextFn  func() (sous.Record, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *RecordStream) Next() (sous.Record, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *RecordStream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// RecipeStore is a test double for sous.RecipeStore.
// Set SearchFn before calling Search.
type RecipeStore struct {
	SearchFn func(ctx context.Context, query string, limit int) ([]sous.Recipe, error)
}

// Search delegates to SearchFn.
func (s *RecipeStore) Search(ctx context.Context, query string, limit int) ([]sous.Recipe, error) {
	return s.SearchFn(ctx, query, limit)
}
