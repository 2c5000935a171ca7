package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	chat := newChatCmd(a)
	root := &cobra.Command{
		Use:   "sous",
		Short: "Recipe chat assistant",
		Long: `sous answers cooking questions using a recipe collection.

Run without arguments to start the interactive chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          chat.RunE,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.sous/config.toml)")
	pf.BoolVar(&a.debug, "debug", false, "enable debug logging")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file")

	root.Flags().AddFlagSet(chat.Flags())
	root.AddCommand(chat, newAskCmd(a), newServeCmd(a), newLoadCmd(a))
	return root
}
