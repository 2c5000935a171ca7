package main

import (
	"fmt"

	"github.com/fwojciec/sous"
	bt "github.com/fwojciec/sous/bubbletea"
	"github.com/fwojciec/sous/http"
	"github.com/fwojciec/sous/ndjson"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChatCmd(a *app) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(true); err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				a.cfg.Endpoint = endpoint
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			r := bt.NewRenderer()
			defer r.Close()
			session := newClientSession(a, r)
			m := bt.New(session, r, sous.DefaultTheme())
			a.logger.Info("chat started", zap.String("endpoint", a.cfg.Endpoint))
			if err := bt.Run(cmd.Context(), m); err != nil {
				return fmt.Errorf("TUI: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "chat server URL")
	return cmd
}

// newClientSession wires a Session to the configured chat server.
func newClientSession(a *app, r sous.Renderer) *sous.Session {
	client := http.NewClient(a.cfg.Endpoint)
	newDecoder := func() sous.Decoder {
		return ndjson.NewDecoder(ndjson.WithLogger(a.logger))
	}
	return sous.NewSession(client, r, newDecoder, sous.WithLogger(a.logger))
}
