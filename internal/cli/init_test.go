package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"memory", config.Config{DataBackend: config.BackendMemory}, false},
		{"sqlite", config.Config{DataBackend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "ledger.db")}, false},
		{"unknown", config.Config{DataBackend: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenStore(ctx, &tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStore failed: %v", err)
			}
			defer store.Close()
			if _, err := store.ListGroups(ctx, "alice"); err != nil {
				t.Errorf("ListGroups failed: %v", err)
			}
		})
	}
}

func TestNotifier_WithoutAMQP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inbox, n, closeFn := Notifier(logger, &config.Config{}, memory.New())
	defer closeFn()

	if _, ok := n.(*notify.Inbox); !ok || n != notify.Notifier(inbox) {
		t.Errorf("expected the inbox alone, got %T", n)
	}
}
