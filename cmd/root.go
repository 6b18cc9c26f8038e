// Package cmd contains the migrag command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/log"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrag",
		Short: "CodeIgniter 3 to 4 migration assistant",
		Long: `migrag answers CodeIgniter 3 to 4 migration questions from the official
user guides. Fetch the documentation, prepare the local vector index once,
then ask questions from the terminal or over HTTP.

Typical first run:

  migrag fetch all
  migrag prepare
  migrag ask "How do I convert a CI3 model?"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPrepareCmd(),
		newFetchCmd(),
		newAskCmd(),
		newChatCmd(),
		newSearchCmd(),
		newDocsCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI. Called from main.
func Execute() error {
	return newRootCmd().Execute()
}

func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}
