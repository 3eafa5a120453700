// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned when a group, expense or notification does not exist.
var ErrNotFound = errors.New("storage: not found")

// ExpenseFilter narrows ListExpenses.
type ExpenseFilter struct {
	// Currency restricts results to one currency. Empty means all.
	Currency string

	// IncludeDeleted also returns soft-deleted expenses.
	IncludeDeleted bool
}

// Ledger is the set of reads and writes over groups, expenses and
// notifications. It is implemented both by a Store and by the transaction
// handle a Store passes to InTx.
//
// Payments and Splits are always returned with their Deleted flags intact;
// callers aggregate only the live ones.
type Ledger interface {
	// CreateGroup persists a new group with its initial members.
	// The group.ID and CreatedAt fields are populated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members, including soft-deleted groups.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns the live groups member belongs to, newest first.
	// An empty member lists every live group.
	ListGroups(ctx context.Context, member string) ([]*models.Group, error)

	// AddMember adds member to a group. Adding an existing member is a no-op.
	AddMember(ctx context.Context, groupID, member string) error

	// RemoveMember removes member from a group's member list.
	RemoveMember(ctx context.Context, groupID, member string) error

	// DeleteGroup soft-deletes a group.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense with its payments and splits.
	// Missing IDs and CreatedAt are populated.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with all of its payments and splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses returns a group's expenses, oldest first.
	ListExpenses(ctx context.Context, groupID string, filter ExpenseFilter) ([]models.Expense, error)

	// UpdateExpense rewrites the description, amount and currency of an expense.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// ReplaceShares soft-deletes every live payment and split of an expense
	// and inserts the given ones in their place.
	ReplaceShares(ctx context.Context, expenseID string, payments []models.Payment, splits []models.Split) error

	// DeleteExpense soft-deletes an expense. Its payments and splits are left as is.
	DeleteExpense(ctx context.Context, expenseID string) error

	// LockLedger serializes writers on one (group, currency) ledger for the
	// rest of the current transaction. It also holds the group's membership
	// steady against LockGroup. Outside a transaction it returns immediately.
	LockLedger(ctx context.Context, groupID, currency string) error

	// LockGroup excludes every other LockGroup and LockLedger holder on the
	// group for the rest of the current transaction. Membership changes take
	// it so balance checks and the change itself see the same ledgers.
	LockGroup(ctx context.Context, groupID string) error

	// CreateNotification persists a notification.
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications returns a member's notifications, newest first.
	ListNotifications(ctx context.Context, member string, unreadOnly bool) ([]models.Notification, error)

	// MarkNotificationRead marks one of member's notifications read.
	// Returns ErrNotFound when the notification does not belong to member.
	MarkNotificationRead(ctx context.Context, member, notificationID string) error

	// MarkAllNotificationsRead marks every unread notification of member read
	// and returns how many changed.
	MarkAllNotificationsRead(ctx context.Context, member string) (int64, error)
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the ledger or service layers.
type Store interface {
	Ledger

	// InTx runs fn inside a single atomic transaction. If fn returns an
	// error every write made through the Ledger it was given is discarded.
	InTx(ctx context.Context, fn func(Ledger) error) error

	// Close releases any resources held by the store.
	Close() error
}
