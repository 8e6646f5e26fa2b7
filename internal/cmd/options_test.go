package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrahq/unpublished/internal/server"
	"github.com/infrahq/unpublished/internal/server/models"
)

func TestParseOptions_WithServerOptions(t *testing.T) {
	type testCase struct {
		name        string
		setup       func(t *testing.T, cmd *cobra.Command)
		expectedErr string
		expected    func(t *testing.T) server.Options
	}

	run := func(t *testing.T, tc testCase) {
		cmd := newServerCmd()
		cmd.Flags().String("config-file", "", "")
		addDBFlags(cmd.Flags())

		if tc.setup != nil {
			tc.setup(t, cmd)
		}

		options := defaultServerOptions()
		err := ParseOptions(cmd, &options)
		if tc.expectedErr != "" {
			assert.ErrorContains(t, err, tc.expectedErr)
			return
		}

		require.NoError(t, err)
		assert.Equal(t, tc.expected(t), options)
	}

	testCases := []testCase{
		{
			name:     "defaults",
			expected: func(t *testing.T) server.Options { return defaultServerOptions() },
		},
		{
			name: "config file",
			setup: func(t *testing.T, cmd *cobra.Command) {
				content := `
token-lifetime: unlimited
hash-key: preview
cleanup-interval: 30m
db-connection: host=localhost dbname=unpublished
`
				file := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
				require.NoError(t, cmd.Flags().Set("config-file", file))
			},
			expected: func(t *testing.T) server.Options {
				expected := defaultServerOptions()
				expected.TokenLifetime = models.NeverExpire
				expected.HashKey = "preview"
				expected.CleanupInterval = 30 * time.Minute
				expected.DBConnection = "host=localhost dbname=unpublished"
				return expected
			},
		},
		{
			name: "env overrides config file, flags override env",
			setup: func(t *testing.T, cmd *cobra.Command) {
				file := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(file, []byte("token-lifetime: 1h\nlisten: :1000\n"), 0o600))
				require.NoError(t, cmd.Flags().Set("config-file", file))

				t.Setenv("UNPUBLISHED_TOKEN_LIFETIME", "72h")
				t.Setenv("UNPUBLISHED_LISTEN", ":2000")
				t.Setenv("UNPUBLISHED_CLEANUP_EXPIRED_TOKENS", "false")
				require.NoError(t, cmd.Flags().Set("listen", ":3000"))
			},
			expected: func(t *testing.T) server.Options {
				expected := defaultServerOptions()
				expected.TokenLifetime = models.Lifetime(72 * time.Hour)
				expected.Listen = ":3000"
				expected.CleanupExpiredTokens = false
				return expected
			},
		},
		{
			name: "invalid lifetime",
			setup: func(t *testing.T, cmd *cobra.Command) {
				require.NoError(t, cmd.Flags().Set("token-lifetime", "soon"))
			},
			expectedErr: `invalid lifetime "soon"`,
		},
		{
			name: "missing config file",
			setup: func(t *testing.T, cmd *cobra.Command) {
				require.NoError(t, cmd.Flags().Set("config-file", filepath.Join(t.TempDir(), "nope.yaml")))
			},
			expectedErr: "read config file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func TestServerCmd(t *testing.T) {
	var called bool
	orig := runServer
	t.Cleanup(func() { runServer = orig })
	runServer = func(ctx context.Context, srv *server.Server) error {
		called = true
		require.NotNil(t, srv.DB())
		return nil
	}

	c := newTestCLI(t)
	c.mustRun(t, "server", "--listen", "127.0.0.1:0", "--metrics-listen", "127.0.0.1:0")
	assert.True(t, called)

	_, err := c.run(t, "server", "--hash-key", "not valid!")
	assert.ErrorContains(t, err, "invalid options")
}

func TestDefaultServerOptions(t *testing.T) {
	options := defaultServerOptions()
	assert.Equal(t, server.DefaultTokenLifetime, options.TokenLifetime)
	assert.Equal(t, "auHash", options.HashKey)
	assert.Equal(t, "unpublished.db", options.DBFile)
	require.NoError(t, options.Validate())
}
