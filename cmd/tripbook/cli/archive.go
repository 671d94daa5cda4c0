package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ExportOptions defines available flags for the export command.
type ExportOptions struct {
	// Output is a file path; "-" writes to Stdout.
	Output string
	Stdout io.Writer
	Stderr io.Writer
}

// ExportCommand writes a backup archive of every namespace.
func (c *BookCLI) ExportCommand(ctx context.Context, opts ExportOptions) int {
	stdout, stderr := streams(opts.Stdout, opts.Stderr)
	output := strings.TrimSpace(opts.Output)
	if output == "" {
		_, _ = fmt.Fprintln(stderr, "export: -o is required")
		return 1
	}
	data, err := c.book.Export(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}
	if output == "-" {
		if _, err := stdout.Write(data); err != nil {
			_, _ = fmt.Fprintf(stderr, "export: write: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(output, data, 0o600); err != nil {
		_, _ = fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "exported %d bytes to %s\n", len(data), output)
	return 0
}

// ImportOptions defines available flags for the import command.
type ImportOptions struct {
	Input  string
	Stdout io.Writer
	Stderr io.Writer
}

// ImportCommand replaces the book's contents with a backup archive.
func (c *BookCLI) ImportCommand(ctx context.Context, opts ImportOptions) int {
	stdout, stderr := streams(opts.Stdout, opts.Stderr)
	input := strings.TrimSpace(opts.Input)
	if input == "" {
		_, _ = fmt.Fprintln(stderr, "import: -i is required")
		return 1
	}
	data, err := os.ReadFile(input)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}
	if err := c.book.Import(ctx, data); err != nil {
		_, _ = fmt.Fprintf(stderr, "import: %v\n", err)
		return 1
	}
	if err := c.book.Flush(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "import: persist: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "imported %s\n", input)
	return 0
}
