// Package cmd implements the unpublished command line.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/infrahq/unpublished/internal/logging"
)

// Run the main CLI command with the given args. The args should not contain
// the name of the binary (ex: os.Args[1:]).
func Run(ctx context.Context, args ...string) error {
	cli := newCLI(ctx)
	cmd := NewRootCmd(cli)
	cmd.SetArgs(args)
	cmd.SetOut(cli.Stdout)
	cmd.SetErr(cli.Stderr)
	return cmd.ExecuteContext(ctx)
}

func NewRootCmd(cli *CLI) *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:               "unpublished",
		Short:             "Share unpublished content with access tokens",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logging.Initialize(cli.RootOptions.LogLevel); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(
		newServerCmd(),
		newPermissionsCmd(cli),
		newBundlesCmd(cli),
		newUsersCmd(cli),
		newRolesCmd(cli),
		newTokensCmd(cli),
		newVersionCmd(cli),
	)

	rootCmd.PersistentFlags().StringVar(&cli.RootOptions.LogLevel, "log-level", "info", "Show logs when running the command [error, warn, info, debug]")
	rootCmd.PersistentFlags().StringP("config-file", "f", "", "Configuration file")
	addDBFlags(rootCmd.PersistentFlags())

	return rootCmd
}

func addDBFlags(flags *pflag.FlagSet) {
	defaults := defaultServerOptions()
	flags.String("db-file", defaults.DBFile, "Path to the SQLite database")
	flags.String("db-connection", "", "Postgres connection string, used instead of the SQLite database (secret)")
}

func addFormatFlag(flags *pflag.FlagSet, bind *string) {
	flags.StringVar(bind, "format", "", "Output format [json|yaml]")
}
