// Command ledger records expenses and prints summaries as JSON.
//
// Usage:
//
//	ledger add -amount 12.50 -category Food [-description text] [-date YYYY-MM-DD]
//	ledger get <id>
//	ledger list [-category c] [-start d -end d] [-min a] [-max a]
//	ledger update <id> [-amount a] [-category c] [-description text] [-date d]
//	ledger delete <id>
//	ledger categories
//	ledger period [-token t | -start d -end d]
//	ledger trend
//	ledger periods
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"expenses/internal/backend"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/log"
	"expenses/internal/services"
)

func main() {
	cli.LoadEnvFile()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentCLI, stderr)

	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldError, err.Error())
		return exitFailure
	}

	svc, cleanup, err := newService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err.Error())
		return exitFailure
	}
	defer cleanup()

	if err := cmd(ctx, svc, args[1:], stdout); err != nil {
		return report(stderr, err)
	}
	return exitOK
}

func newService(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.ExpenseService, func(), error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := factory.CreatePublisher(ctx, backendCfg)
	if err != nil {
		if res.Cleanup != nil {
			res.Cleanup()
		}
		return nil, nil, err
	}

	// One command per process, so no summary cache: it would never be hit.
	svc := services.NewExpenseService(res.Ledger,
		services.WithLogger(logger.WithComponent(log.ComponentLedger)),
		services.WithPublisher(publisher))
	cleanup := func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Close failed", log.FieldError, err.Error())
		}
	}
	return svc, cleanup, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: ledger <command> [flags]")
	fmt.Fprintln(w, "commands: add, get, list, update, delete, categories, period, trend, periods")
	fmt.Fprintln(w, "categories:", categoryHint())
	fmt.Fprintln(w, "backends (DATA_BACKEND):", strings.Join(backend.GetBackendTypeStrings(), ", "))
}
