package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	group := &models.Group{Name: "Trip", Members: []string{"alice", "bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	got, _ := store.GetGroup(ctx, group.ID)
	got.Members[0] = "mallory"
	group.Members[1] = "eve"

	again, _ := store.GetGroup(ctx, group.ID)
	if again.Members[0] != "alice" || again.Members[1] != "bob" {
		t.Errorf("Stored group was mutated through a returned value: %v", again.Members)
	}
}

func TestStore_ConcurrentTransactions(t *testing.T) {
	ctx := context.Background()
	store := New()
	group := &models.Group{Name: "Trip", Members: []string{"alice", "bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.InTx(ctx, func(tx storage.Ledger) error {
				return tx.CreateExpense(ctx, &models.Expense{
					GroupID:  group.ID,
					Amount:   decimal.NewFromInt(1),
					Currency: "USD",
					Payments: []models.Payment{{Member: "alice", Amount: decimal.NewFromInt(1)}},
					Splits:   []models.Split{{Member: "bob", Amount: decimal.NewFromInt(1)}},
				})
			})
			if err != nil {
				t.Errorf("InTx failed: %v", err)
			}
		}()
	}
	wg.Wait()

	expenses, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 20 {
		t.Errorf("Expected 20 expenses, got %d", len(expenses))
	}
}
