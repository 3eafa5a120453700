package calculator

import "github.com/shopspring/decimal"

// Integrity is the result of checking that a currency's ledger closes.
type Integrity struct {
	// Total is the sum of every member's net balance.
	Total decimal.Decimal

	// Corrupt is set when |Total| exceeds Tolerance.
	Corrupt bool
}

// OK reports whether the ledger closes within tolerance.
func (i Integrity) OK() bool {
	return !i.Corrupt
}

// CheckIntegrity verifies that net balances sum to zero within Tolerance.
// A corrupt result is a signal for diagnosis; nothing is corrected.
func CheckIntegrity(balances Balances) Integrity {
	total := balances.Total()
	return Integrity{
		Total:   total,
		Corrupt: total.Abs().GreaterThan(Tolerance),
	}
}
