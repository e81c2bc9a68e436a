package commands

import (
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
			p.Info("dbpack %s\n", version)
			p.Info("  commit: %s\n", commit)
			p.Info("  built:  %s\n", date)
			return nil
		},
	}
}
