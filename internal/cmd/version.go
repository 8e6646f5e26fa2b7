package cmd

import (
	"github.com/spf13/cobra"

	"github.com/infrahq/unpublished/internal"
)

func newVersionCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.Output("%s", internal.FullVersion())
			return nil
		},
	}
}
