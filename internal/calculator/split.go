package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidShares = errors.New("calculator: invalid shares")
	ErrNoMembers     = errors.New("calculator: must have at least one participant")
	ErrNonPositive   = errors.New("calculator: amount must be positive")
)

var cent = decimal.New(1, -2)

// SplitMode selects how an expense is divided among members.
type SplitMode string

const (
	SplitEqual SplitMode = "EQUAL"
	SplitExact SplitMode = "EXACT"
)

// PaymentMode selects who paid for an expense.
type PaymentMode string

const (
	PaymentSingle   PaymentMode = "SINGLE"
	PaymentMultiple PaymentMode = "MULTIPLE"
)

// Share is one member's portion of an expense, either paid or owed.
type Share struct {
	Member string
	Amount decimal.Decimal
}

// ShareError reports payments or splits that do not add up to the expense amount.
type ShareError struct {
	Kind     string // "payments" or "splits"
	Total    decimal.Decimal
	Expected decimal.Decimal
}

func (e *ShareError) Error() string {
	return fmt.Sprintf("calculator: total %s (%s) must equal expense amount (%s)",
		e.Kind, e.Total.StringFixed(2), e.Expected.StringFixed(2))
}

func (e *ShareError) Is(target error) bool {
	return target == ErrInvalidShares
}

// ExpenseInput describes how an expense is paid and divided.
type ExpenseInput struct {
	Amount decimal.Decimal

	SplitMode SplitMode
	// Participants share an EQUAL split.
	Participants []string
	// ExactSplits lists per-member amounts for an EXACT split.
	ExactSplits []Share

	PaymentMode PaymentMode
	// Payer pays the full amount for a SINGLE payment.
	Payer string
	// Payments lists per-member amounts for MULTIPLE payments.
	Payments []Share
}

// CalculateShares turns an expense input into payment and split shares.
// Both sides are validated against the amount within Tolerance.
func CalculateShares(in ExpenseInput) (payments, splits []Share, err error) {
	if !in.Amount.IsPositive() {
		return nil, nil, ErrNonPositive
	}

	switch in.SplitMode {
	case SplitEqual, "":
		splits, err = EqualShares(in.Amount, in.Participants)
	case SplitExact:
		splits, err = normalizeShares(in.ExactSplits)
	default:
		err = fmt.Errorf("%w: unknown split mode %q", ErrInvalidShares, in.SplitMode)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateShares("splits", in.Amount, splits); err != nil {
		return nil, nil, err
	}

	switch in.PaymentMode {
	case PaymentSingle, "":
		if in.Payer == "" {
			return nil, nil, fmt.Errorf("%w: payer required", ErrInvalidShares)
		}
		payments = []Share{{Member: in.Payer, Amount: in.Amount}}
	case PaymentMultiple:
		payments, err = normalizeShares(in.Payments)
	default:
		err = fmt.Errorf("%w: unknown payment mode %q", ErrInvalidShares, in.PaymentMode)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateShares("payments", in.Amount, payments); err != nil {
		return nil, nil, err
	}

	return payments, splits, nil
}

// EqualShares divides amount equally among members.
// Shares are truncated to cents; leftover cents go one each to the first
// members in id order so the shares sum to amount exactly.
func EqualShares(amount decimal.Decimal, members []string) ([]Share, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: duplicate member %q", ErrInvalidShares, sorted[i])
		}
	}

	n := decimal.NewFromInt(int64(len(sorted)))
	base := amount.Div(n).Truncate(2)
	remainder := amount.Sub(base.Mul(n))
	extraCents := remainder.Div(cent).IntPart()
	leftover := remainder.Sub(cent.Mul(decimal.NewFromInt(extraCents)))

	shares := make([]Share, len(sorted))
	for i, m := range sorted {
		share := base
		if int64(i) < extraCents {
			share = share.Add(cent)
		}
		shares[i] = Share{Member: m, Amount: share}
	}
	// Sub-cent precision in amount lands on the first member.
	shares[0].Amount = shares[0].Amount.Add(leftover)
	return shares, nil
}

// ValidateShares checks that shares are non-negative and sum to amount
// within Tolerance.
func ValidateShares(kind string, amount decimal.Decimal, shares []Share) error {
	total := decimal.Zero
	for _, s := range shares {
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: negative %s amount for %q", ErrInvalidShares, kind, s.Member)
		}
		total = total.Add(s.Amount)
	}
	if total.Sub(amount).Abs().GreaterThan(Tolerance) {
		return &ShareError{Kind: kind, Total: total, Expected: amount}
	}
	return nil
}

// normalizeShares drops zero shares and rejects blank or repeated members.
func normalizeShares(shares []Share) ([]Share, error) {
	seen := make(map[string]bool, len(shares))
	result := make([]Share, 0, len(shares))
	for _, s := range shares {
		if s.Member == "" {
			return nil, fmt.Errorf("%w: member required", ErrInvalidShares)
		}
		if seen[s.Member] {
			return nil, fmt.Errorf("%w: duplicate member %q", ErrInvalidShares, s.Member)
		}
		seen[s.Member] = true
		if s.Amount.IsZero() {
			continue
		}
		result = append(result, s)
	}
	if len(result) == 0 {
		return nil, ErrNoMembers
	}
	return result, nil
}
