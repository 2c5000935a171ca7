package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/sous"
)

// Interface compliance check.
var _ sous.Generator = (*Generator)(nil)

// Generator implements [sous.Generator] for the Anthropic Messages API.
type Generator struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// Option configures a [Generator].
type Option func(*Generator)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(g *Generator) { g.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Generator) { g.httpClient = hc }
}

// New creates a new Anthropic [Generator] with the given API key and options.
func New(apiKey string, opts ...Option) *Generator {
	g := &Generator{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Model returns the model used for generation.
func (g *Generator) Model() string {
	return g.model
}

// Generate sends prompt as a single user message and streams the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (sous.RecordStream, error) {
	body, err := json.Marshal(apiRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Stream:    true,
		Messages:  []apiMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(resp.Body), nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("anthropic: %w", &sous.StatusError{Code: resp.StatusCode})
	}
	var apiErr sseError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("anthropic: %w", &sous.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}
	return fmt.Errorf("anthropic: %w", &sous.StatusError{
		Code: resp.StatusCode,
		Body: apiErr.Error.Type + ": " + apiErr.Error.Message,
	})
}
