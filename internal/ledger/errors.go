package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotAMember         = errors.New("ledger: member is not in this group")
	ErrNoDebtFound        = errors.New("ledger: no debt found between these members")
	ErrLedgerCorrupt      = errors.New("ledger: balances do not sum to zero")
	ErrOutstandingBalance = errors.New("ledger: outstanding balance")
	ErrInvalidCurrency    = errors.New("ledger: currency must be a 3-letter uppercase code")
	ErrInvalidInput       = errors.New("ledger: invalid input")
	ErrConflict           = errors.New("ledger: concurrent modification, retry")
)

// CorruptError reports a currency ledger whose net balances do not close.
type CorruptError struct {
	Currency string
	Total    decimal.Decimal
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("ledger: %s balances sum to %s, not zero", e.Currency, e.Total.String())
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrLedgerCorrupt
}

// Outstanding is a non-zero balance that blocks a membership change.
type Outstanding struct {
	Member   string
	Currency string
	Balance  decimal.Decimal
}

// OutstandingError lists the balances that block a membership change.
type OutstandingError struct {
	Outstanding []Outstanding
}

func (e *OutstandingError) Error() string {
	parts := make([]string, len(e.Outstanding))
	for i, o := range e.Outstanding {
		parts[i] = fmt.Sprintf("%s %s %s", o.Member, o.Balance.StringFixed(2), o.Currency)
	}
	return "ledger: outstanding balance: " + strings.Join(parts, ", ")
}

func (e *OutstandingError) Is(target error) bool {
	return target == ErrOutstandingBalance
}

func notAMember(member, groupID string) error {
	return fmt.Errorf("%w: %s not in group %s", ErrNotAMember, member, groupID)
}
