package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/infrahq/unpublished/internal/server"
)

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options := defaultServerOptions()
			if err := ParseOptions(cmd, &options); err != nil {
				return err
			}

			srv, err := server.New(options)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			return runServer(cmd.Context(), srv)
		},
	}

	defaults := defaultServerOptions()

	cmd.Flags().String("listen", defaults.Listen, "Address of the API listener")
	cmd.Flags().String("metrics-listen", defaults.MetricsListen, "Address of the metrics listener")
	cmd.Flags().String("token-lifetime", defaults.TokenLifetime.String(), `Lifetime of tokens created without a lifetime or expire time, or "unlimited"`)
	cmd.Flags().String("hash-key", defaults.HashKey, "Query parameter holding the token value")
	cmd.Flags().Bool("cleanup-expired-tokens", defaults.CleanupExpiredTokens, "Periodically delete expired tokens")
	cmd.Flags().Duration("cleanup-interval", defaults.CleanupInterval, "Interval between expired token cleanups")
	cmd.Flags().Duration("cleanup-grace-period", defaults.CleanupGracePeriod, "Keep expired tokens for this long before deleting them")
	cmd.Flags().Duration("request-timeout", defaults.RequestTimeout, "Maximum duration of an API request")

	return cmd
}

// shim for testing
var runServer = func(ctx context.Context, srv *server.Server) error {
	return srv.Run(ctx)
}
