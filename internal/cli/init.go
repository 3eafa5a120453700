// Package cli holds the startup steps shared by cmd/server and cmd/ledgerctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/postgres"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// LoadEnvFile loads .env for local development. A missing file is ignored.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// OpenStore opens the ledger store selected by cfg.DataBackend.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
		}
		return store, nil
	case config.BackendPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

// Notifier builds the notification chain: the stored inbox, then the AMQP
// publisher when AMQP_URL is set. The returned close func releases the
// publisher.
func Notifier(logger *slog.Logger, cfg *config.Config, store storage.Ledger) (*notify.Inbox, notify.Notifier, func()) {
	inbox := notify.NewInbox(store)
	if cfg.AMQPURL == "" {
		return inbox, inbox, func() {}
	}

	publisher, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		// The inbox still records every notification.
		logger.Warn("AMQP unavailable, publishing disabled", "error", err)
		return inbox, inbox, func() {}
	}
	logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return inbox, notify.Multi{inbox, publisher}, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close AMQP publisher", "error", err)
		}
	}
}
