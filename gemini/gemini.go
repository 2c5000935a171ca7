// Package gemini implements [sous.Generator] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [sous.RecordStream].
package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/sous"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Interface compliance check.
var _ sous.Generator = (*Generator)(nil)

// Generator implements [sous.Generator] for the Google Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// Option configures a [Generator].
type Option func(*Generator)

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// New creates a Gemini [Generator] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Generator, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	g := &Generator{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Model returns the model used for generation.
func (g *Generator) Model() string {
	return g.model
}

// Generate starts a streamed generation for prompt. Request errors surface
// from the first call to Next.
func (g *Generator) Generate(ctx context.Context, prompt string) (sous.RecordStream, error) {
	seq := g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), nil)
	return newStream(seq, g.model), nil
}
