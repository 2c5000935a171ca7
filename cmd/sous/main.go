// Command sous is a recipe chat assistant.
//
// Usage:
//
//	sous [chat]            interactive chat against a sous server
//	sous ask MESSAGE       one-shot question, reply printed to stdout
//	sous serve             run the relay server
//	sous load FILE.csv     load a RecipeNLG-style CSV into the recipe store
//
// Settings come from ~/.sous/config.toml, then the environment
// (SOUS_ENDPOINT, SOUS_MODEL, SOUS_DB, OLLAMA_API_URL, GEMINI_API_KEY,
// ANTHROPIC_API_KEY), then flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sous: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		getenv: os.Getenv,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	defer a.close()
	return newRootCmd(a).ExecuteContext(ctx)
}
