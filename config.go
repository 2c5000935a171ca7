package sous

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the settings shared by the chat client and the relay server.
type Config struct {
	// Endpoint is the base URL of the chat server the client talks to.
	Endpoint  string          `toml:"endpoint"`
	Server    ServerConfig    `toml:"server"`
	Generator GeneratorConfig `toml:"generator"`
	Store     StoreConfig     `toml:"store"`
}

// ServerConfig configures the relay server.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// RateLimit is the sustained number of chat requests per second.
	// Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
	// MaxResults is the number of recipes fetched per message.
	MaxResults int `toml:"max_results"`
}

// GeneratorConfig selects and configures the generation backend.
type GeneratorConfig struct {
	Provider  string        `toml:"provider"` // ollama, gemini, anthropic
	Model     string        `toml:"model"`    // empty = backend default
	OllamaURL string        `toml:"ollama_url"`
	APIKey    string        `toml:"api_key"`
	Timeout   time.Duration `toml:"timeout"`
}

// StoreConfig configures the recipe database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Generator providers.
const (
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint: "http://localhost:5000",
		Server: ServerConfig{
			Addr:       ":5000",
			RateLimit:  2,
			Burst:      4,
			MaxResults: 5,
		},
		Generator: GeneratorConfig{
			Provider:  ProviderOllama,
			OllamaURL: "http://localhost:11434",
			Timeout:   60 * time.Second,
		},
		Store: StoreConfig{
			Path: "recipes.db",
		},
	}
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	if err := validateURL("endpoint", c.Endpoint); err != nil {
		return err
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be non-negative, got %g: %w", c.Server.RateLimit, ErrValidation)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1 when rate limiting, got %d: %w", c.Server.Burst, ErrValidation)
	}
	if c.Server.MaxResults < 0 {
		return fmt.Errorf("server.max_results must be non-negative, got %d: %w", c.Server.MaxResults, ErrValidation)
	}
	if c.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must be non-negative, got %s: %w", c.Generator.Timeout, ErrValidation)
	}
	switch c.Generator.Provider {
	case ProviderOllama:
		return validateURL("generator.ollama_url", c.Generator.OllamaURL)
	case ProviderGemini, ProviderAnthropic:
		return nil
	default:
		return fmt.Errorf("generator.provider %q must be %q, %q or %q: %w",
			c.Generator.Provider, ProviderOllama, ProviderGemini, ProviderAnthropic, ErrValidation)
	}
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an http(s) URL, got %q: %w", field, raw, ErrValidation)
	}
	return nil
}
