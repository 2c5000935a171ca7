package sous

import "context"

// Recipe is a stored recipe used as generation context.
type Recipe struct {
	ID          int64
	Title       string
	Ingredients []string
	Directions  []string
	// NER holds the bare ingredient names extracted from Ingredients.
	NER []string
}

// RecipeStore finds recipes relevant to a chat message.
type RecipeStore interface {
	Search(ctx context.Context, query string, limit int) ([]Recipe, error)
}

// RecordStream is a pull-based sequence of records from a generation
// backend. Next returns io.EOF after the last record.
type RecordStream interface {
	Next() (Record, error)
	Close() error
}

// Generator produces a streamed reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (RecordStream, error)
}
