package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ResetOptions defines available flags for the reset command.
type ResetOptions struct {
	// Confirm names what to wipe: products, sales, shops or all.
	Confirm string
	Stdout  io.Writer
	Stderr  io.Writer
}

// ResetCommand wipes the confirmed namespaces.
func (c *BookCLI) ResetCommand(ctx context.Context, opts ResetOptions) int {
	stdout, stderr := streams(opts.Stdout, opts.Stderr)
	resets := map[string]func(context.Context) error{
		"products": c.book.ResetProducts,
		"sales":    c.book.ResetSales,
		"shops":    c.book.ResetShops,
	}
	target := strings.ToLower(strings.TrimSpace(opts.Confirm))
	var order []string
	switch target {
	case "all":
		order = []string{"sales", "products", "shops"}
	case "products", "sales", "shops":
		order = []string{target}
	default:
		_, _ = fmt.Fprintf(stderr, "reset: -confirm must be one of products, sales, shops, all (got %q)\n", opts.Confirm)
		return 2
	}
	for _, name := range order {
		if err := resets[name](ctx); err != nil {
			_, _ = fmt.Fprintf(stderr, "reset %s: %v\n", name, err)
			return 1
		}
	}
	if err := c.book.Flush(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "reset: persist: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "reset %s\n", strings.Join(order, ", "))
	return 0
}
