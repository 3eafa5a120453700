package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupEngine(t *testing.T) (*ledger.Engine, *memory.Store, *models.Group) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	e := ledger.New(store, ledger.WithLogger(discardLogger()))

	group, err := e.CreateGroup(ctx, "Flat", "alice", []string{"bob"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	_, err = e.AddExpense(ctx, group.ID, "alice", ledger.ExpenseInput{
		Description: "Rent",
		Shares: calculator.ExpenseInput{
			Amount:      decimal.RequireFromString("100"),
			SplitMode:   calculator.SplitEqual,
			PaymentMode: calculator.PaymentSingle,
			Payer:       "alice",
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return e, store, group
}

func TestCheck_Balanced(t *testing.T) {
	e, _, _ := setupEngine(t)
	var out bytes.Buffer

	if err := check(context.Background(), e, &out); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	report := out.String()
	for _, want := range []string{"== Flat", "-- USD: balanced", "50.00", "-50.00", "1 groups checked, 0 imbalanced ledgers"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestCheck_Imbalanced(t *testing.T) {
	e, store, group := setupEngine(t)
	err := store.CreateExpense(context.Background(), &models.Expense{
		GroupID:     group.ID,
		Description: "Broken import",
		Amount:      decimal.RequireFromString("10"),
		Currency:    "EUR",
		Payments:    []models.Payment{{Member: "bob", Amount: decimal.RequireFromString("10")}},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	var out bytes.Buffer
	err = check(context.Background(), e, &out)
	if !errors.Is(err, errImbalanced) {
		t.Fatalf("check error = %v, want errImbalanced", err)
	}
	if !strings.Contains(out.String(), "-- EUR: IMBALANCED (total 10.00)") {
		t.Errorf("report missing imbalance:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "-- USD: balanced") {
		t.Errorf("USD ledger should still balance:\n%s", out.String())
	}
}

func TestBalances(t *testing.T) {
	e, _, group := setupEngine(t)
	var out bytes.Buffer

	if err := balances(context.Background(), e, group.ID, &out); err != nil {
		t.Fatalf("balances failed: %v", err)
	}
	if !strings.Contains(out.String(), "bob pays alice 50.00 USD") {
		t.Errorf("missing transfer:\n%s", out.String())
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DataBackend:     config.BackendSQLite,
		DBPath:          filepath.Join(t.TempDir(), "ledger.db"),
		JWTSecret:       "test-secret-0123456789",
		TokenDuration:   time.Hour,
		DefaultCurrency: "USD",
	}

	var out bytes.Buffer
	if err := run(ctx, discardLogger(), cfg, []string{"token", "-member", "alice"}, &out); err != nil {
		t.Fatalf("token failed: %v", err)
	}
	claims, err := auth.NewJWTManager(cfg.JWTSecret, time.Hour).Validate(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.MemberID != "alice" {
		t.Errorf("member: expected alice, got %s", claims.MemberID)
	}

	out.Reset()
	if err := run(ctx, discardLogger(), cfg, []string{"check"}, &out); err != nil {
		t.Fatalf("check on an empty store failed: %v", err)
	}
	if !strings.Contains(out.String(), "0 groups checked") {
		t.Errorf("unexpected report: %s", out.String())
	}

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"repair"}},
		{"balances without group", []string{"balances"}},
		{"token without member", []string{"token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(ctx, discardLogger(), cfg, tt.args, io.Discard); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := run(ctx, discardLogger(), cfg, nil, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("no command: expected flag.ErrHelp, got %v", err)
	}
}
