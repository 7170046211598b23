package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/offscale/oasir/resolver"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <spec-file>",
		Short: "Check that a spec document declares a supported, minimally valid structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			cache := resolver.NewCache(
				resolver.WithLogger(loggerFor(cmd)),
				resolver.WithBaseDir(filepath.Dir(absPath)),
			)
			doc, err := cache.LoadEntry(cmd.Context(), absPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s document (%d paths, %d operations, %d schemas)\n",
				args[0], doc.OASVersion.String(),
				doc.Stats.PathCount, doc.Stats.OperationCount, doc.Stats.SchemaCount)
			return nil
		},
	}
}
