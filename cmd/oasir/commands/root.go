// Package commands provides the oasir CLI command handlers.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/offscale/oasir"
)

// Execute runs the oasir CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI
// without spawning a process.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oasir",
		Short:         "Resolve OpenAPI documents into a canonical IR",
		Long:          "oasir loads Swagger 2.0 / OpenAPI 3.x documents, resolves their reference graphs, and projects every operation and schema into a canonical intermediate representation for code generators.",
		Version:       oasir.Version(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

// loggerFor builds the run logger from the persistent verbosity flag.
// Logs go to stderr so structured output on stdout stays clean.
func loggerFor(cmd *cobra.Command) oasir.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return oasir.NewSlogAdapter(slog.New(handler))
}
