package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fwojciec/sous"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "ask MESSAGE",
		Short: "Ask a single question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				a.cfg.Endpoint = endpoint
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			w := newWriterRenderer(cmd.OutOrStdout())
			session := newClientSession(a, w)
			turn, err := session.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if turn.State == sous.TurnFailed {
				return fmt.Errorf("turn failed: %w", turn.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "chat server URL")
	return cmd
}

var _ sous.Renderer = (*writerRenderer)(nil)

// writerRenderer prints a streamed reply as plain text. Each delta carries
// the full reply so far, so only the part not yet written is printed.
type writerRenderer struct {
	mu      sync.Mutex
	w       io.Writer
	written string
}

func newWriterRenderer(w io.Writer) *writerRenderer {
	return &writerRenderer{w: w}
}

func (r *writerRenderer) OnTurnStart() {}

func (r *writerRenderer) OnDelta(fullText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suffix, ok := strings.CutPrefix(fullText, r.written)
	if !ok {
		// The reply was rewritten; start over on a fresh line.
		fmt.Fprintln(r.w)
		suffix = fullText
	}
	fmt.Fprint(r.w, suffix)
	r.written = fullText
}

func (r *writerRenderer) OnFailure(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.written != "" {
		fmt.Fprintln(r.w)
	}
	fmt.Fprintln(r.w, message)
}

func (r *writerRenderer) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w)
}
