package models

import "github.com/shopspring/decimal"

// ExpenseKind distinguishes user-entered expenses from synthetic settlements.
type ExpenseKind string

const (
	ExpenseKindRegular    ExpenseKind = "regular"
	ExpenseKindSettlement ExpenseKind = "settlement"
)

// Expense is a cost shared inside one group in one currency.
// Its Payments and Splits are each expected to sum to Amount (within tolerance).
type Expense struct {
	// ID is the unique identifier for the expense (TypeID, prefix "exp").
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is a human-readable label (e.g., "Dinner", "Settlement to alice").
	Description string

	// Amount is the total cost of the expense.
	Amount decimal.Decimal

	// Currency is the ISO-4217 style code the expense is recorded in.
	Currency string

	// Kind is regular for user-entered expenses and settlement for
	// expenses created by the settle-up workflow.
	Kind ExpenseKind

	// CreatedBy is the member who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// Deleted marks the expense as soft-deleted.
	Deleted bool

	// Payments records who paid toward the expense.
	Payments []Payment

	// Splits records who is responsible for the expense.
	Splits []Split
}

// Payment records that Member contributed Amount toward an expense.
type Payment struct {
	ID        string
	ExpenseID string
	Member    string
	Amount    decimal.Decimal
	Deleted   bool
}

// Split records that Member is responsible for Amount of an expense.
type Split struct {
	ID        string
	ExpenseID string
	Member    string
	Amount    decimal.Decimal
	Deleted   bool
}
