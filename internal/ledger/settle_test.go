package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

func TestSettleUp(t *testing.T) {
	ctx := context.Background()
	e, rec := setupEngine(t, nil)
	group := createGroup(t, e, "alice", "bob", "carol")
	paidBy(t, e, group.ID, "alice", "300", "USD")

	if _, err := e.SettleUp(ctx, group.ID, "carol", "alice", "USD"); err != nil {
		t.Fatalf("SettleUp(carol) failed: %v", err)
	}

	settlement, err := e.SettleUp(ctx, group.ID, "bob", "alice", "USD")
	if err != nil {
		t.Fatalf("SettleUp(bob) failed: %v", err)
	}

	exp := settlement.Expense
	if exp.Description != "Settlement to alice" || exp.Kind != models.ExpenseKindSettlement {
		t.Errorf("Unexpected settlement expense: %+v", exp)
	}
	if !settlement.Amount.Equal(dec("100")) || !exp.Amount.Equal(dec("100")) {
		t.Errorf("Settlement amount = %s, want 100", settlement.Amount)
	}
	if len(exp.Payments) != 1 || exp.Payments[0].Member != "bob" || !exp.Payments[0].Amount.Equal(dec("100")) {
		t.Errorf("Expected one payment by bob for 100, got %+v", exp.Payments)
	}
	if len(exp.Splits) != 1 || exp.Splits[0].Member != "alice" || !exp.Splits[0].Amount.Equal(dec("100")) {
		t.Errorf("Expected one split for alice of 100, got %+v", exp.Splits)
	}

	stored, err := e.store.GetExpense(ctx, exp.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if stored.CreatedBy != "bob" {
		t.Errorf("CreatedBy = %s, want bob", stored.CreatedBy)
	}

	balances, err := e.NetBalances(ctx, group.ID, "USD")
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}
	assertBalances(t, balances, map[string]string{"alice": "0", "bob": "0", "carol": "0"})

	transfers, err := e.Simplify(ctx, group.ID, "USD")
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("Expected no transfers after settling, got %v", transfers)
	}

	settled := rec.of(models.NotificationSettlement)
	if len(settled) != 2 || settled[1].Member != "alice" || settled[1].Message != "bob settled 100.00 USD with you" {
		t.Errorf("Unexpected settlement notifications: %+v", settled)
	}
}

func TestSettleUp_MovesOnlyTheSettledPair(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t, nil)
	group := createGroup(t, e, "alice", "bob", "carol")
	paidBy(t, e, group.ID, "alice", "100", "USD")

	// 100/3: alice is credited 66.66, bob and carol owe 33.33 each.
	before, _ := e.NetBalances(ctx, group.ID, "USD")
	settlement, err := e.SettleUp(ctx, group.ID, "bob", "alice", "USD")
	if err != nil {
		t.Fatalf("SettleUp failed: %v", err)
	}
	after, _ := e.NetBalances(ctx, group.ID, "USD")

	if !after.Of("bob").Equal(before.Of("bob").Add(settlement.Amount)) {
		t.Errorf("bob moved from %s to %s, want +%s", before.Of("bob"), after.Of("bob"), settlement.Amount)
	}
	if !after.Of("alice").Equal(before.Of("alice").Sub(settlement.Amount)) {
		t.Errorf("alice moved from %s to %s, want -%s", before.Of("alice"), after.Of("alice"), settlement.Amount)
	}
	if !after.Of("carol").Equal(before.Of("carol")) {
		t.Errorf("carol should be unchanged, got %s", after.Of("carol"))
	}

	transfers, _ := e.Simplify(ctx, group.ID, "USD")
	for _, tr := range transfers {
		if tr.Debtor == "bob" && tr.Creditor == "alice" {
			t.Errorf("bob→alice still present after settling: %+v", tr)
		}
	}
	integrity, _ := e.Integrity(ctx, group.ID, "USD")
	if !integrity.OK() {
		t.Errorf("Settlement broke ledger closure: %+v", integrity)
	}
}

func TestSettleUp_Errors(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t, nil)
	group := createGroup(t, e, "alice", "bob", "carol")
	paidBy(t, e, group.ID, "alice", "100", "USD", "bob")

	tests := []struct {
		name     string
		groupID  string
		payer    string
		target   string
		currency string
		wantErr  error
	}{
		{name: "owes someone else", groupID: group.ID, payer: "bob", target: "carol", currency: "USD", wantErr: ErrNoDebtFound},
		{name: "direction reversed", groupID: group.ID, payer: "alice", target: "bob", currency: "USD", wantErr: ErrNoDebtFound},
		{name: "other currency", groupID: group.ID, payer: "bob", target: "alice", currency: "EUR", wantErr: ErrNoDebtFound},
		{name: "self", groupID: group.ID, payer: "bob", target: "bob", currency: "USD", wantErr: ErrNoDebtFound},
		{name: "target not a member", groupID: group.ID, payer: "bob", target: "mallory", currency: "USD", wantErr: ErrNotAMember},
		{name: "payer not a member", groupID: group.ID, payer: "mallory", target: "alice", currency: "USD", wantErr: ErrNotAMember},
		{name: "unknown group", groupID: "missing", payer: "bob", target: "alice", currency: "USD", wantErr: storage.ErrNotFound},
		{name: "bad currency", groupID: group.ID, payer: "bob", target: "alice", currency: "dollars", wantErr: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SettleUp(ctx, tt.groupID, tt.payer, tt.target, tt.currency)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SettleUp() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Nothing was written by the failed attempts.
	expenses, _ := e.ListExpenses(ctx, group.ID, "")
	if len(expenses) != 1 {
		t.Errorf("Expected only the original expense, got %d", len(expenses))
	}
}

func TestSettleUp_ConcurrentRequestsSettleOnce(t *testing.T) {
	stores := map[string]func(t *testing.T) storage.Store{
		"memory": func(t *testing.T) storage.Store { return memory.New() },
		"sqlite": func(t *testing.T) storage.Store {
			store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
			if err != nil {
				t.Fatalf("Failed to create store: %v", err)
			}
			t.Cleanup(func() { store.Close() })
			return store
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			reg := prometheus.NewRegistry()
			e, _ := setupEngine(t, newStore(t), WithMetrics(metrics.New(reg)))
			group := createGroup(t, e, "alice", "bob")
			paidBy(t, e, group.ID, "alice", "100", "USD", "bob")

			const attempts = 8
			var wg sync.WaitGroup
			errs := make(chan error, attempts)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := e.SettleUp(ctx, group.ID, "bob", "alice", "USD")
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			var ok, noDebt int
			for err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, ErrNoDebtFound):
					noDebt++
				default:
					t.Errorf("Unexpected error: %v", err)
				}
			}
			if ok != 1 || noDebt != attempts-1 {
				t.Errorf("Expected exactly one settlement, got %d ok and %d NoDebtFound", ok, noDebt)
			}

			balances, _ := e.NetBalances(ctx, group.ID, "USD")
			assertBalances(t, balances, map[string]string{"alice": "0", "bob": "0"})

			if n, err := testutil.GatherAndCount(reg, "splitledger_settlements_total"); err != nil || n != 2 {
				t.Errorf("Expected settled and no_debt series, got %d (%v)", n, err)
			}
		})
	}
}
