// Command ledgerctl inspects a splitledger store from the command line.
//
// Usage:
//
//	ledgerctl check                      integrity report for every group
//	ledgerctl balances -group ID         summary of one group
//	ledgerctl token -member ID           mint a development JWT
//
// Storage and auth settings come from the same environment as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cli"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/logging"
)

// errImbalanced makes check exit with status 1.
var errImbalanced = errors.New("ledger imbalance detected")

func main() {
	cli.LoadEnvFile()
	logger := logging.New(os.Stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, logger, config.Load(), os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errImbalanced):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(2)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return flag.ErrHelp
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "check":
		fs := flag.NewFlagSet("check", flag.ContinueOnError)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return withEngine(ctx, logger, cfg, func(e *ledger.Engine) error {
			return check(ctx, e, out)
		})

	case "balances":
		fs := flag.NewFlagSet("balances", flag.ContinueOnError)
		groupID := fs.String("group", "", "group id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *groupID == "" {
			return errors.New("balances: -group is required")
		}
		return withEngine(ctx, logger, cfg, func(e *ledger.Engine) error {
			return balances(ctx, e, *groupID, out)
		})

	case "token":
		fs := flag.NewFlagSet("token", flag.ContinueOnError)
		member := fs.String("member", "", "member id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("token: JWT_SECRET is not set")
		}
		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration).Generate(*member)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		fmt.Fprintln(out, token)
		return nil

	default:
		usage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func withEngine(ctx context.Context, logger *slog.Logger, cfg *config.Config, fn func(*ledger.Engine) error) error {
	if err := cfg.ValidateStorage(); err != nil {
		return err
	}
	store, err := cli.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ledger.New(store,
		ledger.WithLogger(logger),
		ledger.WithDefaultCurrency(cfg.DefaultCurrency),
	))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: ledgerctl <check | balances -group ID | token -member ID>")
}
