package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server"
)

type testCLI struct {
	ctx    context.Context
	stdout *bytes.Buffer
	dbFile string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()

	stdout := new(bytes.Buffer)
	cli := &CLI{
		Stdout: stdout,
		Stderr: new(bytes.Buffer),
		table:  newTablePrinter(stdout),
	}

	return &testCLI{
		ctx:    context.WithValue(context.Background(), ctxKey, cli),
		stdout: stdout,
		dbFile: filepath.Join(t.TempDir(), "unpublished.db"),
	}
}

// run executes the command against the test database and returns its
// output.
func (c *testCLI) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	c.stdout.Reset()
	err := Run(c.ctx, append(args, "--db-file", c.dbFile, "--log-level", "error")...)
	return c.stdout.String(), err
}

func (c *testCLI) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := c.run(t, args...)
	require.NoError(t, err)
	return out
}

func (c *testCLI) db(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := server.OpenDB(server.Options{DBFile: c.dbFile})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
