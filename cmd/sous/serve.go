package main

import (
	"fmt"

	"github.com/fwojciec/sous/http"
	"github.com/fwojciec/sous/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, provider, model, db string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat relay server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if flags.Changed("provider") {
				a.cfg.Generator.Provider = provider
				applyEnv(&a.cfg, a.getenv)
			}
			if flags.Changed("model") {
				a.cfg.Generator.Model = model
			}
			if flags.Changed("db") {
				a.cfg.Store.Path = db
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := sqlite.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			if n, err := store.Count(ctx); err == nil && n == 0 {
				a.logger.Warn("recipe store is empty; run sous load first", zap.String("db", a.cfg.Store.Path))
			}

			gen, err := resolveGenerator(ctx, a.cfg.Generator, a.logger)
			if err != nil {
				return err
			}

			srv := http.NewServer(store, gen,
				http.WithLogger(a.logger),
				http.WithRateLimit(a.cfg.Server.RateLimit, a.cfg.Server.Burst),
				http.WithMaxResults(a.cfg.Server.MaxResults),
			)
			a.logger.Info("serving",
				zap.String("provider", a.cfg.Generator.Provider),
				zap.String("db", a.cfg.Store.Path))
			if err := srv.ListenAndServe(ctx, a.cfg.Server.Addr); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "listen address")
	f.StringVar(&provider, "provider", "", "generator: ollama, gemini or anthropic")
	f.StringVar(&model, "model", "", "model ID (provider default if empty)")
	f.StringVar(&db, "db", "", "recipe database path")
	return cmd
}
