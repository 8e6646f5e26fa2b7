package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lensesio/tableprinter"
)

// CLI exposes common dependencies to commands.
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer

	RootOptions RootOptions

	table *tableprinter.Printer
}

type RootOptions struct {
	LogLevel string
}

// Output a string to CLI.Stdout. Output is like fmt.Printf except that it always
// adds a trailing newline.
func (c *CLI) Output(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout, format+"\n", args...)
}

func (c *CLI) Table(rows interface{}) {
	c.table.Print(rows)
}

// key is a type to ensure no other package can access the CLI value in context.
type key struct{}

// ctxKey used to store CLI in the context.
var ctxKey = key{}

// newCLI returns the CLI stored in ctx, or a CLI writing to the standard
// streams. Tests store a CLI with buffers in the context.
func newCLI(ctx context.Context) *CLI {
	if cli, ok := ctx.Value(ctxKey).(*CLI); ok {
		return cli
	}

	return &CLI{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		table:  newTablePrinter(os.Stdout),
	}
}

func newTablePrinter(out io.Writer) *tableprinter.Printer {
	table := tableprinter.New(out)

	table.HeaderAlignment = tableprinter.AlignLeft
	table.AutoWrapText = false
	table.DefaultAlignment = tableprinter.AlignLeft
	table.CenterSeparator = ""
	table.ColumnSeparator = ""
	table.RowSeparator = ""
	table.HeaderLine = false
	table.BorderBottom = false
	table.BorderLeft = false
	table.BorderRight = false
	table.BorderTop = false

	return table
}
