// Package cli implements the tripbook maintenance commands.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/odyssey-erp/tripbook/internal/profit"
)

// Book is the subset of the book facade the commands need.
type Book interface {
	Summary(operationalCost float64) profit.Summary
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
	ResetProducts(ctx context.Context) error
	ResetSales(ctx context.Context) error
	ResetShops(ctx context.Context) error
	Flush(ctx context.Context) error
}

// BookCLI runs commands against one book.
type BookCLI struct {
	book Book
}

// NewBookCLI wraps b.
func NewBookCLI(b Book) (*BookCLI, error) {
	if b == nil {
		return nil, errors.New("cli: book is required")
	}
	return &BookCLI{book: b}, nil
}

func streams(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
