package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds what every subcommand shares. Environment and standard streams
// are injected so commands can be tested without touching the process.
type app struct {
	getenv func(string) string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	debug      bool
	logFile    string

	cfg    sous.Config
	logger *zap.Logger
}

// setup loads the configuration and builds the logger. Commands that own the
// terminal log to a file only.
func (a *app) setup(ownsTerminal bool) error {
	cfg, err := loadConfig(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(a.debug, a.logFile, ownsTerminal)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// loadConfig reads the config file and applies environment overrides. An
// empty path means the default file, which may be absent.
func loadConfig(path string, getenv func(string) string) (sous.Config, error) {
	var (
		cfg sous.Config
		err error
	)
	if path == "" {
		cfg, err = toml.LoadDefault()
	} else {
		cfg, err = toml.Load(path)
	}
	if err != nil {
		return sous.Config{}, err
	}
	applyEnv(&cfg, getenv)
	return cfg, nil
}

func applyEnv(cfg *sous.Config, getenv func(string) string) {
	if v := getenv("SOUS_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := getenv("SOUS_MODEL"); v != "" {
		cfg.Generator.Model = v
	}
	if v := getenv("SOUS_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := getenv("OLLAMA_API_URL"); v != "" {
		cfg.Generator.OllamaURL = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" && cfg.Generator.Provider == sous.ProviderGemini {
		cfg.Generator.APIKey = v
	}
	if v := getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Generator.Provider == sous.ProviderAnthropic {
		cfg.Generator.APIKey = v
	}
}

// newLogger builds a JSON logger. Without a log file it writes to stderr,
// or nowhere when the terminal belongs to the TUI.
func newLogger(debug bool, logFile string, ownsTerminal bool) (*zap.Logger, error) {
	if logFile == "" && ownsTerminal {
		return zap.NewNop(), nil
	}
	config := zap.NewProductionConfig()
	config.Sampling = nil
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		_ = f.Close()
		config.OutputPaths = []string{logFile}
		config.ErrorOutputPaths = []string{logFile}
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
