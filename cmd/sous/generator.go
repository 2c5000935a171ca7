package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/anthropic"
	"github.com/fwojciec/sous/gemini"
	"github.com/fwojciec/sous/ollama"
	"go.uber.org/zap"
)

// resolveGenerator constructs the generation backend named by cfg.
func resolveGenerator(ctx context.Context, cfg sous.GeneratorConfig, logger *zap.Logger) (sous.Generator, error) {
	switch cfg.Provider {
	case sous.ProviderOllama:
		return ollama.New(
			ollama.WithBaseURL(cfg.OllamaURL),
			ollama.WithModel(cfg.Model),
			ollama.WithTimeout(cfg.Timeout),
			ollama.WithLogger(logger),
		), nil
	case sous.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use generator.api_key or the environment variable)")
		}
		g, err := gemini.New(ctx, cfg.APIKey, gemini.WithModel(cfg.Model))
		if err != nil {
			return nil, err
		}
		return g, nil
	case sous.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use generator.api_key or the environment variable)")
		}
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model)}
		if cfg.Timeout > 0 {
			opts = append(opts, anthropic.WithHTTPClient(&http.Client{
				Transport: &http.Transport{
					Proxy:                 http.ProxyFromEnvironment,
					ResponseHeaderTimeout: cfg.Timeout,
				},
			}))
		}
		return anthropic.New(cfg.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be %q, %q or %q",
			cfg.Provider, sous.ProviderOllama, sous.ProviderGemini, sous.ProviderAnthropic)
	}
}
