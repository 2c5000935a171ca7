package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/sous/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		db   string
		opts sqlite.LoadOptions
	)
	cmd := &cobra.Command{
		Use:   "load FILE",
		Short: "Load recipes from a CSV file, replacing existing ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				a.cfg.Store.Path = db
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			defer f.Close()

			store, err := sqlite.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			opts.Logger = a.logger
			n, err := sqlite.LoadCSV(cmd.Context(), store, f, opts)
			if err != nil {
				return err
			}
			a.logger.Info("load complete", zap.Int("recipes", n), zap.String("db", a.cfg.Store.Path))
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d recipes into %s\n", n, a.cfg.Store.Path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&db, "db", "", "recipe database path")
	f.IntVar(&opts.BatchSize, "batch-size", 1000, "rows per insert transaction")
	f.IntVar(&opts.MaxRows, "max-rows", 0, "stop after this many rows (0 loads all)")
	return cmd
}
