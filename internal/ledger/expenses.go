package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseInput describes an expense to add or the new state of one being edited.
type ExpenseInput struct {
	Description string
	// Currency defaults to the engine's default currency.
	Currency string

	// Shares describes who paid and who owes. An EQUAL split with no
	// participants is divided among all current group members.
	Shares calculator.ExpenseInput
}

// AddExpense records a regular expense in a group on behalf of createdBy.
func (e *Engine) AddExpense(ctx context.Context, groupID, createdBy string, in ExpenseInput) (*models.Expense, error) {
	currency, err := e.currency(in.Currency)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	unlock, err := e.locks.lock(ctx, ledgerKey(groupID, currency))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var expense *models.Expense
	var group *models.Group
	err = e.store.InTx(ctx, func(tx storage.Ledger) error {
		if err := tx.LockLedger(ctx, groupID, currency); err != nil {
			return err
		}
		g, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		group = g
		if !group.HasMember(createdBy) {
			return notAMember(createdBy, groupID)
		}

		payments, splits, err := buildShares(group, in.Shares)
		if err != nil {
			return err
		}
		expense = &models.Expense{
			GroupID:     groupID,
			Description: description,
			Amount:      in.Shares.Amount,
			Currency:    currency,
			Kind:        models.ExpenseKindRegular,
			CreatedBy:   createdBy,
			Payments:    payments,
			Splits:      splits,
		}
		return tx.CreateExpense(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Added expense",
		"group_id", groupID,
		"expense_id", expense.ID,
		"amount", expense.Amount.String(),
		"currency", currency)

	message := fmt.Sprintf("%s added %q (%s %s) in %s",
		createdBy, description, expense.Amount.StringFixed(2), currency, group.Name)
	e.notify(ctx, memberNotifications(group.Members, createdBy, message, models.NotificationExpenseAdd, groupLink(groupID)))
	return expense, nil
}

// EditExpense rewrites an expense. Every live payment and split is
// soft-deleted and recreated from in within one transaction, so the
// expense never holds a mix of old and new shares.
func (e *Engine) EditExpense(ctx context.Context, expenseID, editor string, in ExpenseInput) (*models.Expense, error) {
	var currency string
	if in.Currency != "" {
		var err error
		if currency, err = e.currency(in.Currency); err != nil {
			return nil, err
		}
	}

	var expense *models.Expense
	err := e.onLockedExpense(ctx, expenseID, func(locked *models.Expense) error {
		var err error
		expense, err = e.editExpense(ctx, locked, editor, currency, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Edited expense",
		"group_id", expense.GroupID,
		"expense_id", expenseID,
		"amount", expense.Amount.String(),
		"currency", expense.Currency)
	return expense, nil
}

// editExpense applies in to the expense last seen as current. An empty
// currency keeps the expense's own.
func (e *Engine) editExpense(ctx context.Context, current *models.Expense, editor, currency string, in ExpenseInput) (*models.Expense, error) {
	if current.Kind == models.ExpenseKindSettlement {
		return nil, fmt.Errorf("%w: settlements cannot be edited, delete and settle again", ErrInvalidInput)
	}
	if currency == "" {
		currency = current.Currency
	}

	// A currency change moves the expense between two ledgers.
	unlock, err := e.locks.lock(ctx, ledgerKey(current.GroupID, current.Currency), ledgerKey(current.GroupID, currency))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var expense *models.Expense
	err = e.store.InTx(ctx, func(tx storage.Ledger) error {
		for _, c := range sortedUnique(current.Currency, currency) {
			if err := tx.LockLedger(ctx, current.GroupID, c); err != nil {
				return err
			}
		}
		group, err := liveGroup(ctx, tx, current.GroupID)
		if err != nil {
			return err
		}
		if !group.HasMember(editor) {
			return notAMember(editor, group.ID)
		}

		expense, err = stillOn(ctx, tx, current)
		if err != nil {
			return err
		}

		payments, splits, err := buildShares(group, in.Shares)
		if err != nil {
			return err
		}

		if description := strings.TrimSpace(in.Description); description != "" {
			expense.Description = description
		}
		expense.Amount = in.Shares.Amount
		expense.Currency = currency
		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		if err := tx.ReplaceShares(ctx, expense.ID, payments, splits); err != nil {
			return err
		}
		expense, err = tx.GetExpense(ctx, expense.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense. Its payments and splits drop out of
// every balance through the expense.
func (e *Engine) DeleteExpense(ctx context.Context, expenseID, member string) error {
	var groupID string
	err := e.onLockedExpense(ctx, expenseID, func(current *models.Expense) error {
		groupID = current.GroupID
		unlock, err := e.locks.lock(ctx, ledgerKey(current.GroupID, current.Currency))
		if err != nil {
			return err
		}
		defer unlock()

		return e.store.InTx(ctx, func(tx storage.Ledger) error {
			if err := tx.LockLedger(ctx, current.GroupID, current.Currency); err != nil {
				return err
			}
			group, err := liveGroup(ctx, tx, current.GroupID)
			if err != nil {
				return err
			}
			if !group.HasMember(member) {
				return notAMember(member, group.ID)
			}
			if _, err := stillOn(ctx, tx, current); err != nil {
				return err
			}
			return tx.DeleteExpense(ctx, expenseID)
		})
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Deleted expense",
		"group_id", groupID,
		"expense_id", expenseID)
	return nil
}

// maxRelocks bounds how often a write follows an expense that keeps moving
// to another ledger before failing with ErrConflict.
const maxRelocks = 3

// errExpenseMoved reports that an expense left the ledger locked for it.
var errExpenseMoved = errors.New("ledger: expense moved to another ledger")

// onLockedExpense reads an expense and passes it to fn, which locks the
// expense's ledger and rechecks it with stillOn. When the expense moved in
// between, it is read again and fn retried.
func (e *Engine) onLockedExpense(ctx context.Context, expenseID string, fn func(current *models.Expense) error) error {
	for attempt := 1; ; attempt++ {
		current, err := e.store.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if current.Deleted {
			return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}

		err = fn(current)
		if !errors.Is(err, errExpenseMoved) {
			return err
		}
		e.logger.DebugContext(ctx, "Expense moved ledgers, relocking",
			"expense_id", expenseID,
			"attempt", attempt)
		if attempt == maxRelocks {
			return fmt.Errorf("%w: expense %s", ErrConflict, expenseID)
		}
	}
}

// stillOn re-reads an expense inside a transaction and fails with
// errExpenseMoved unless it is live on the ledger current was read from.
func stillOn(ctx context.Context, tx storage.Ledger, current *models.Expense) (*models.Expense, error) {
	expense, err := tx.GetExpense(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	if expense.Deleted {
		return nil, fmt.Errorf("expense %s: %w", current.ID, storage.ErrNotFound)
	}
	if expense.GroupID != current.GroupID || expense.Currency != current.Currency {
		return nil, errExpenseMoved
	}
	return expense, nil
}

// GetExpense returns a live expense with its live payments and splits.
func (e *Engine) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := e.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Deleted {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	expense.Payments = slices.DeleteFunc(expense.Payments, func(p models.Payment) bool { return p.Deleted })
	expense.Splits = slices.DeleteFunc(expense.Splits, func(s models.Split) bool { return s.Deleted })
	return expense, nil
}

// ListExpenses returns a group's live expenses, optionally in one currency.
func (e *Engine) ListExpenses(ctx context.Context, groupID, currency string) ([]models.Expense, error) {
	if currency != "" {
		var err error
		if currency, err = e.currency(currency); err != nil {
			return nil, err
		}
	}
	if _, err := liveGroup(ctx, e.store, groupID); err != nil {
		return nil, err
	}
	return e.store.ListExpenses(ctx, groupID, storage.ExpenseFilter{Currency: currency})
}

// buildShares computes and validates payments and splits against the
// group's current members.
func buildShares(group *models.Group, in calculator.ExpenseInput) ([]models.Payment, []models.Split, error) {
	if (in.SplitMode == calculator.SplitEqual || in.SplitMode == "") && len(in.Participants) == 0 {
		in.Participants = group.Members
	}

	paid, owed, err := calculator.CalculateShares(in)
	if err != nil {
		return nil, nil, err
	}

	payments := make([]models.Payment, len(paid))
	for i, s := range paid {
		if !group.HasMember(s.Member) {
			return nil, nil, notAMember(s.Member, group.ID)
		}
		payments[i] = models.Payment{Member: s.Member, Amount: s.Amount}
	}
	splits := make([]models.Split, len(owed))
	for i, s := range owed {
		if !group.HasMember(s.Member) {
			return nil, nil, notAMember(s.Member, group.ID)
		}
		splits[i] = models.Split{Member: s.Member, Amount: s.Amount}
	}
	return payments, splits, nil
}

func sortedUnique(a, b string) []string {
	switch {
	case a == b:
		return []string{a}
	case a < b:
		return []string{a, b}
	default:
		return []string{b, a}
	}
}

// memberNotifications addresses one notification to every member except skip.
func memberNotifications(members []string, skip, message string, typ models.NotificationType, link string) []models.Notification {
	var out []models.Notification
	for _, m := range members {
		if m == skip {
			continue
		}
		out = append(out, models.Notification{Member: m, Message: message, Type: typ, Link: link})
	}
	return out
}
