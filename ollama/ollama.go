// Package ollama implements [sous.Generator] using the Ollama generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/ndjson"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
	generatePath   = "/api/generate"
)

// Interface compliance check.
var _ sous.Generator = (*Generator)(nil)

// Generator implements [sous.Generator] for an Ollama server.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Generator].
type Option func(*Generator)

// WithBaseURL sets the Ollama server URL.
func WithBaseURL(url string) Option {
	return func(g *Generator) { g.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model. Empty keeps the default.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Generator) { g.httpClient = hc }
}

// WithTimeout bounds how long to wait for the first response byte. Model
// loading counts against it; generation afterwards does not.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d <= 0 {
			return
		}
		g.httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: d,
			},
		}
	}
}

// WithLogger sets the logger used for malformed upstream records.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates an Ollama Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
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

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate starts a streamed generation for prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (sous.RecordStream, error) {
	body, err := json.Marshal(generateRequest{Model: g.model, Prompt: prompt, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("ollama: %w", parseError(resp))
	}

	return &stream{
		body:   resp.Body,
		reader: ndjson.NewReader(resp.Body, ndjson.WithLogger(g.logger)),
	}, nil
}

// parseError extracts the message from an Ollama error response.
func parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return &sous.StatusError{Code: resp.StatusCode, Body: body.Error}
	}
	return &sous.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}

type stream struct {
	body   io.Closer
	reader *ndjson.Reader
	done   bool
}

// Next returns the next upstream record. The stream ends after a done or
// error record even if the server keeps the connection open.
func (s *stream) Next() (sous.Record, error) {
	if s.done {
		return sous.Record{}, io.EOF
	}
	rec, err := s.reader.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return sous.Record{}, io.EOF
		}
		return sous.Record{}, fmt.Errorf("ollama: %w", err)
	}
	if rec.Done || rec.IsError() {
		s.done = true
	}
	return rec, nil
}

func (s *stream) Close() error {
	return s.body.Close()
}
