package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/id"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, description, amount, currency, kind, created_by, created_at, deleted"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner, e *models.Expense) error {
	var kind string
	if err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.Currency,
		&kind, &e.CreatedBy, &e.CreatedAt, &e.Deleted); err != nil {
		return err
	}
	e.Kind = models.ExpenseKind(kind)
	return nil
}

// CreateExpense persists an expense and its payments and splits in one transaction.
func (l *ledger) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = id.New(id.PrefixExpense)
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Kind == "" {
		expense.Kind = models.ExpenseKindRegular
	}

	return l.atomic(ctx, func(l *ledger) error {
		_, err := l.exec(ctx,
			"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Currency,
			string(expense.Kind), expense.CreatedBy, expense.CreatedAt, expense.Deleted,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return l.insertShares(ctx, expense.ID, expense.Payments, expense.Splits)
	})
}

// GetExpense retrieves an expense with every payment and split, deleted or not.
func (l *ledger) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	row := l.queryRow(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	if err := scanExpense(row, expense); err != nil {
		return nil, notFound(err, "expense", expenseID)
	}

	byID := map[string]*models.Expense{expense.ID: expense}
	if err := l.loadPayments(ctx, "p.expense_id = ?", []any{expenseID}, byID); err != nil {
		return nil, err
	}
	if err := l.loadSplits(ctx, "s.expense_id = ?", []any{expenseID}, byID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses returns a group's expenses in creation order with their shares.
func (l *ledger) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]models.Expense, error) {
	conds := []string{"e.group_id = ?"}
	args := []any{groupID}
	if filter.Currency != "" {
		conds = append(conds, "e.currency = ?")
		args = append(args, filter.Currency)
	}
	if !filter.IncludeDeleted {
		conds = append(conds, "e.deleted = ?")
		args = append(args, false)
	}
	where := strings.Join(conds, " AND ")

	rows, err := l.query(ctx,
		"SELECT e."+strings.ReplaceAll(expenseColumns, ", ", ", e.")+
			" FROM expenses e WHERE "+where+" ORDER BY e.created_at, e.id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}

	byID := make(map[string]*models.Expense, len(expenses))
	for i := range expenses {
		byID[expenses[i].ID] = &expenses[i]
	}
	if err := l.loadPayments(ctx, where, args, byID); err != nil {
		return nil, err
	}
	if err := l.loadSplits(ctx, where, args, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

// UpdateExpense rewrites an expense header.
func (l *ledger) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := l.exec(ctx,
		"UPDATE expenses SET description = ?, amount = ?, currency = ? WHERE id = ?",
		expense.Description, expense.Amount, expense.Currency, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(res, "expense", expense.ID)
}

// ReplaceShares soft-deletes the live shares of an expense and inserts new ones.
func (l *ledger) ReplaceShares(ctx context.Context, expenseID string, payments []models.Payment, splits []models.Split) error {
	return l.atomic(ctx, func(l *ledger) error {
		var exists int
		if err := l.queryRow(ctx, "SELECT 1 FROM expenses WHERE id = ?", expenseID).Scan(&exists); err != nil {
			return notFound(err, "expense", expenseID)
		}
		if _, err := l.exec(ctx,
			"UPDATE payments SET deleted = ? WHERE expense_id = ? AND deleted = ?",
			true, expenseID, false,
		); err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		if _, err := l.exec(ctx,
			"UPDATE splits SET deleted = ? WHERE expense_id = ? AND deleted = ?",
			true, expenseID, false,
		); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		return l.insertShares(ctx, expenseID, payments, splits)
	})
}

// DeleteExpense flags an expense deleted.
func (l *ledger) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := l.exec(ctx, "UPDATE expenses SET deleted = ? WHERE id = ?", true, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}

func (l *ledger) insertShares(ctx context.Context, expenseID string, payments []models.Payment, splits []models.Split) error {
	for i := range payments {
		p := &payments[i]
		if p.ID == "" {
			p.ID = id.New(id.PrefixPayment)
		}
		p.ExpenseID = expenseID
		_, err := l.exec(ctx,
			"INSERT INTO payments (id, expense_id, member, amount, deleted) VALUES (?, ?, ?, ?, ?)",
			p.ID, expenseID, p.Member, p.Amount, p.Deleted,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}
	for i := range splits {
		s := &splits[i]
		if s.ID == "" {
			s.ID = id.New(id.PrefixSplit)
		}
		s.ExpenseID = expenseID
		_, err := l.exec(ctx,
			"INSERT INTO splits (id, expense_id, member, amount, deleted) VALUES (?, ?, ?, ?, ?)",
			s.ID, expenseID, s.Member, s.Amount, s.Deleted,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// loadPayments attaches payments of the expenses matching where to byID.
// where is expressed over the expenses alias "e" or the payments alias "p".
func (l *ledger) loadPayments(ctx context.Context, where string, args []any, byID map[string]*models.Expense) error {
	rows, err := l.query(ctx,
		`SELECT p.id, p.expense_id, p.member, p.amount, p.deleted
		FROM payments p JOIN expenses e ON e.id = p.expense_id
		WHERE `+where+` ORDER BY p.expense_id, p.member, p.id`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.Member, &p.Amount, &p.Deleted); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if e, ok := byID[p.ExpenseID]; ok {
			e.Payments = append(e.Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payments: %w", err)
	}
	return nil
}

func (l *ledger) loadSplits(ctx context.Context, where string, args []any, byID map[string]*models.Expense) error {
	rows, err := l.query(ctx,
		`SELECT s.id, s.expense_id, s.member, s.amount, s.deleted
		FROM splits s JOIN expenses e ON e.id = s.expense_id
		WHERE `+where+` ORDER BY s.expense_id, s.member, s.id`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Split
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.Member, &s.Amount, &s.Deleted); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[s.ExpenseID]; ok {
			e.Splits = append(e.Splits, s)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}
