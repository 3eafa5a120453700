// Package memory provides an in-process storage.Store.
//
// Transactions run one at a time against a private copy of the data that
// replaces the shared copy on commit. Intended for tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

type Store struct {
	// txMu serializes writers, mu guards st.
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

func New() *Store {
	return &Store{st: newState()}
}

// InTx runs fn against a copy of the data and publishes it if fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(storage.Ledger) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) write(fn func(*state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.write(func(st *state) error { return st.CreateGroup(ctx, group) })
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetGroup(ctx, groupID)
}

func (s *Store) ListGroups(ctx context.Context, member string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListGroups(ctx, member)
}

func (s *Store) AddMember(ctx context.Context, groupID, member string) error {
	return s.write(func(st *state) error { return st.AddMember(ctx, groupID, member) })
}

func (s *Store) RemoveMember(ctx context.Context, groupID, member string) error {
	return s.write(func(st *state) error { return st.RemoveMember(ctx, groupID, member) })
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	return s.write(func(st *state) error { return st.DeleteGroup(ctx, groupID) })
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return s.write(func(st *state) error { return st.CreateExpense(ctx, expense) })
}

func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetExpense(ctx, expenseID)
}

func (s *Store) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListExpenses(ctx, groupID, filter)
}

func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	return s.write(func(st *state) error { return st.UpdateExpense(ctx, expense) })
}

// ReplaceShares runs as its own transaction so a failure leaves no partial edit.
func (s *Store) ReplaceShares(ctx context.Context, expenseID string, payments []models.Payment, splits []models.Split) error {
	return s.InTx(ctx, func(tx storage.Ledger) error {
		return tx.ReplaceShares(ctx, expenseID, payments, splits)
	})
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.write(func(st *state) error { return st.DeleteExpense(ctx, expenseID) })
}

func (s *Store) LockLedger(context.Context, string, string) error {
	return nil
}

func (s *Store) LockGroup(context.Context, string) error {
	return nil
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.write(func(st *state) error { return st.CreateNotification(ctx, n) })
}

func (s *Store) ListNotifications(ctx context.Context, member string, unreadOnly bool) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListNotifications(ctx, member, unreadOnly)
}

func (s *Store) MarkNotificationRead(ctx context.Context, member, notificationID string) error {
	return s.write(func(st *state) error { return st.MarkNotificationRead(ctx, member, notificationID) })
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, member string) (int64, error) {
	var n int64
	err := s.write(func(st *state) error {
		var err error
		n, err = st.MarkAllNotificationsRead(ctx, member)
		return err
	})
	return n, err
}
