package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/odyssey-erp/tripbook/cmd/tripbook/cli"
	"github.com/odyssey-erp/tripbook/internal/app"
	"github.com/odyssey-erp/tripbook/internal/book"
)

const usage = `usage: tripbook <command> [flags]

commands:
  serve                        run the local HTTP API
  summary [-json] [-cost N]    print today's profit summary
  export -o FILE               write a backup archive ("-" for stdout)
  import -i FILE               restore a backup archive
  reset -confirm WHAT          wipe products, sales, shops or all
`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	command, args := args[0], args[1:]
	if command == "help" || command == "-h" || command == "--help" {
		_, _ = fmt.Fprint(stdout, usage)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 1
	}

	logger := app.NewLoggerTo(stderr, cfg)

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StorageDriver), slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", slog.Any("error", err))
		}
	}()

	b, err := book.Open(ctx, store, bookOptions(command, cfg, logger))
	if err != nil {
		logger.Error("open book", slog.Any("error", err))
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.Close(closeCtx); err != nil {
			logger.Error("close book", slog.Any("error", err))
		}
	}()

	if command == "serve" {
		return serve(ctx, stop, logger, cfg, b)
	}

	commands, err := cli.NewBookCLI(b)
	if err != nil {
		logger.Error("init cli", slog.Any("error", err))
		return 1
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	switch command {
	case "summary":
		jsonOut := fs.Bool("json", false, "output JSON")
		cost := fs.Float64("cost", cfg.OperationalCost, "operational cost for net profit")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		return commands.SummaryCommand(ctx, cli.SummaryOptions{OperationalCost: *cost, JSONOutput: *jsonOut, Stdout: stdout, Stderr: stderr})
	case "export":
		output := fs.String("o", "", "archive path, - for stdout")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		return commands.ExportCommand(ctx, cli.ExportOptions{Output: *output, Stdout: stdout, Stderr: stderr})
	case "import":
		input := fs.String("i", "", "archive path")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		return commands.ImportCommand(ctx, cli.ImportOptions{Input: *input, Stdout: stdout, Stderr: stderr})
	case "reset":
		confirm := fs.String("confirm", "", "products, sales, shops or all")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		return commands.ResetCommand(ctx, cli.ResetOptions{Confirm: *confirm, Stdout: stdout, Stderr: stderr})
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}
}

// bookOptions maps cfg onto the book. One-shot commands write through so
// their exit code reflects persistence failures.
func bookOptions(command string, cfg *app.Config, logger *slog.Logger) book.Options {
	return book.Options{
		Logger:                  logger,
		Strict:                  cfg.StrictReferences,
		ConsistentDeleteRestore: cfg.ConsistentDeleteRestore,
		Location:                cfg.Location(),
		SyncWrites:              command != "serve",
	}
}

func serve(ctx context.Context, stop context.CancelFunc, logger *slog.Logger, cfg *app.Config, b *book.Book) int {
	router := app.NewRouter(app.BookRoutes(logger, cfg, b))

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	failed := make(chan struct{})
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			close(failed)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	select {
	case <-failed:
		return 1
	default:
		return 0
	}
}
