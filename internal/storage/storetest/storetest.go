// Package storetest holds the behavior tests every storage.Store must pass.
package storetest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Run exercises store against the storage.Store contract.
// newStore must return an empty store; it is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("CreateGroup generates ID and sorts members", func(t *testing.T) {
		store := newStore(t)
		group := &models.Group{Name: "Trip", Members: []string{"carol", "alice", "bob", "alice"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Trip" {
			t.Errorf("Name mismatch: got %s, want Trip", got.Name)
		}
		assertMembers(t, got.Members, "alice", "bob", "carol")
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("membership changes", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob")

		if err := store.AddMember(ctx, group.ID, "carol"); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if err := store.AddMember(ctx, group.ID, "carol"); err != nil {
			t.Fatalf("AddMember twice should be a no-op: %v", err)
		}
		if err := store.RemoveMember(ctx, group.ID, "alice"); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if err := store.RemoveMember(ctx, group.ID, "alice"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound removing a non-member, got %v", err)
		}
		if err := store.AddMember(ctx, "nonexistent-id", "dave"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound adding to a missing group, got %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		assertMembers(t, got.Members, "bob", "carol")
	})

	t.Run("ListGroups filters by member and hides deleted groups", func(t *testing.T) {
		store := newStore(t)
		g1 := createGroup(t, store, "alice", "bob")
		g2 := createGroup(t, store, "alice")
		createGroup(t, store, "bob")

		if err := store.DeleteGroup(ctx, g2.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		groups, err := store.ListGroups(ctx, "alice")
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != g1.ID {
			t.Errorf("Expected only group %s for alice, got %v", g1.ID, groups)
		}

		all, err := store.ListGroups(ctx, "")
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("Expected 2 live groups, got %d", len(all))
		}

		deleted, err := store.GetGroup(ctx, g2.ID)
		if err != nil {
			t.Fatalf("GetGroup on deleted group failed: %v", err)
		}
		if !deleted.Deleted {
			t.Error("Expected group to be flagged deleted")
		}
	})

	t.Run("CreateExpense round trip", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob", "carol")
		expense := newExpense(group.ID, "USD", "300", map[string]string{"alice": "300"},
			map[string]string{"alice": "100", "bob": "100", "carol": "100"})
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.Payments[0].ID == "" || expense.Splits[0].ID == "" {
			t.Fatal("Expected IDs to be generated")
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("300")) {
			t.Errorf("Amount mismatch: got %s, want 300", got.Amount)
		}
		if got.Currency != "USD" || got.Kind != models.ExpenseKindRegular || got.CreatedBy != "alice" {
			t.Errorf("Header mismatch: %+v", got)
		}
		if len(got.Payments) != 1 || len(got.Splits) != 3 {
			t.Fatalf("Expected 1 payment and 3 splits, got %d and %d", len(got.Payments), len(got.Splits))
		}
		if got.Splits[0].Member != "alice" || got.Splits[0].ExpenseID != expense.ID {
			t.Errorf("Unexpected first split: %+v", got.Splits[0])
		}
	})

	t.Run("decimal amounts keep precision", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob")
		expense := newExpense(group.ID, "USD", "10.005", map[string]string{"alice": "10.005"},
			map[string]string{"alice": "5.005", "bob": "5"})
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Splits[0].Amount.Equal(decimal.RequireFromString("5.005")) {
			t.Errorf("Split amount lost precision: %s", got.Splits[0].Amount)
		}
	})

	t.Run("GetExpense returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetExpense(ctx, "exp_nonexistent"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpenses filters currency and deleted", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob")
		usd := newExpense(group.ID, "USD", "100", map[string]string{"alice": "100"}, map[string]string{"bob": "100"})
		eur := newExpense(group.ID, "EUR", "50", map[string]string{"bob": "50"}, map[string]string{"alice": "50"})
		gone := newExpense(group.ID, "USD", "20", map[string]string{"bob": "20"}, map[string]string{"alice": "20"})
		for _, e := range []*models.Expense{usd, eur, gone} {
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}
		if err := store.DeleteExpense(ctx, gone.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}

		live, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{Currency: "USD"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(live) != 1 || live[0].ID != usd.ID {
			t.Fatalf("Expected only the live USD expense, got %d expenses", len(live))
		}
		if len(live[0].Payments) != 1 || len(live[0].Splits) != 1 {
			t.Errorf("Expected shares to be loaded, got %d payments and %d splits",
				len(live[0].Payments), len(live[0].Splits))
		}

		all, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{IncludeDeleted: true})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Expected 3 expenses including deleted, got %d", len(all))
		}
		for _, e := range all {
			if e.ID == gone.ID && !e.Deleted {
				t.Error("Expected deleted flag on soft-deleted expense")
			}
		}
	})

	t.Run("ReplaceShares soft-deletes old shares", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob")
		expense := newExpense(group.ID, "USD", "100", map[string]string{"alice": "100"}, map[string]string{"bob": "100"})
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.Amount = decimal.RequireFromString("80")
		expense.Description = "Edited"
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		payments := []models.Payment{{Member: "bob", Amount: decimal.RequireFromString("80")}}
		splits := []models.Split{
			{Member: "alice", Amount: decimal.RequireFromString("40")},
			{Member: "bob", Amount: decimal.RequireFromString("40")},
		}
		if err := store.ReplaceShares(ctx, expense.ID, payments, splits); err != nil {
			t.Fatalf("ReplaceShares failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "Edited" || !got.Amount.Equal(decimal.RequireFromString("80")) {
			t.Errorf("Header not updated: %+v", got)
		}
		var livePayments, deletedPayments, liveSplits int
		for _, p := range got.Payments {
			if p.Deleted {
				deletedPayments++
			} else {
				livePayments++
			}
		}
		for _, s := range got.Splits {
			if !s.Deleted {
				liveSplits++
			}
		}
		if livePayments != 1 || deletedPayments != 1 || liveSplits != 2 || len(got.Splits) != 3 {
			t.Errorf("Unexpected shares after replace: %d live / %d deleted payments, %d live of %d splits",
				livePayments, deletedPayments, liveSplits, len(got.Splits))
		}

		if err := store.ReplaceShares(ctx, "exp_nonexistent", nil, nil); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InTx rolls back on error", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob")
		boom := errors.New("boom")

		err := store.InTx(ctx, func(tx storage.Ledger) error {
			if err := tx.LockGroup(ctx, group.ID); err != nil {
				return err
			}
			if err := tx.LockLedger(ctx, group.ID, "USD"); err != nil {
				return err
			}
			e := newExpense(group.ID, "USD", "10", map[string]string{"alice": "10"}, map[string]string{"bob": "10"})
			if err := tx.CreateExpense(ctx, e); err != nil {
				return err
			}
			if err := tx.RemoveMember(ctx, group.ID, "bob"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected InTx to return fn error, got %v", err)
		}

		expenses, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{IncludeDeleted: true})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("Expected rollback to discard expense, got %d", len(expenses))
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		assertMembers(t, got.Members, "alice", "bob")
	})

	t.Run("InTx commits", func(t *testing.T) {
		store := newStore(t)
		group := createGroup(t, store, "alice", "bob")

		var created *models.Expense
		err := store.InTx(ctx, func(tx storage.Ledger) error {
			created = newExpense(group.ID, "USD", "10", map[string]string{"alice": "10"}, map[string]string{"bob": "10"})
			if err := tx.CreateExpense(ctx, created); err != nil {
				return err
			}
			// Reads inside the transaction see its own writes.
			expenses, err := tx.ListExpenses(ctx, group.ID, storage.ExpenseFilter{Currency: "USD"})
			if err != nil {
				return err
			}
			if len(expenses) != 1 {
				t.Errorf("Expected 1 expense inside transaction, got %d", len(expenses))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("InTx failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, created.ID); err != nil {
			t.Errorf("Expected committed expense, got %v", err)
		}
	})

	t.Run("notifications inbox", func(t *testing.T) {
		store := newStore(t)
		for i, msg := range []string{"first", "second", "third"} {
			n := &models.Notification{
				Member:    "alice",
				Message:   msg,
				Type:      models.NotificationSystem,
				CreatedAt: int64(1000 + i),
			}
			if err := store.CreateNotification(ctx, n); err != nil {
				t.Fatalf("CreateNotification failed: %v", err)
			}
		}
		other := &models.Notification{Member: "bob", Message: "hi", Type: models.NotificationGroupAdd}
		if err := store.CreateNotification(ctx, other); err != nil {
			t.Fatalf("CreateNotification failed: %v", err)
		}

		list, err := store.ListNotifications(ctx, "alice", false)
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		if len(list) != 3 || list[0].Message != "third" {
			t.Fatalf("Expected 3 notifications newest first, got %v", list)
		}

		if err := store.MarkNotificationRead(ctx, "alice", other.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound marking another member's notification, got %v", err)
		}
		if err := store.MarkNotificationRead(ctx, "alice", list[0].ID); err != nil {
			t.Fatalf("MarkNotificationRead failed: %v", err)
		}

		unread, err := store.ListNotifications(ctx, "alice", true)
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		if len(unread) != 2 {
			t.Errorf("Expected 2 unread, got %d", len(unread))
		}

		n, err := store.MarkAllNotificationsRead(ctx, "alice")
		if err != nil {
			t.Fatalf("MarkAllNotificationsRead failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 marked read, got %d", n)
		}
		unread, _ = store.ListNotifications(ctx, "alice", true)
		if len(unread) != 0 {
			t.Errorf("Expected no unread notifications, got %d", len(unread))
		}
	})
}

func createGroup(t *testing.T, store storage.Store, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Test Group", Members: members}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func newExpense(groupID, currency, amount string, paid, owed map[string]string) *models.Expense {
	e := &models.Expense{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		CreatedBy:   "alice",
	}
	for _, m := range sortedKeys(paid) {
		e.Payments = append(e.Payments, models.Payment{Member: m, Amount: decimal.RequireFromString(paid[m])})
	}
	for _, m := range sortedKeys(owed) {
		e.Splits = append(e.Splits, models.Split{Member: m, Amount: decimal.RequireFromString(owed[m])})
	}
	return e
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func assertMembers(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Members mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Members mismatch: got %v, want %v", got, want)
			return
		}
	}
}
