// Package calculator holds the pure ledger arithmetic: balance aggregation,
// integrity checking, debt simplification and share building.
//
// All amounts are exact decimals. Rounding to two places only happens when a
// transfer amount or an equal share is produced.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// Tolerance is the absolute drift allowed between an expense amount and
	// the sum of its payments or splits, and between the sum of all net
	// balances in a currency and zero.
	Tolerance = decimal.RequireFromString("0.05")

	// Dust is the magnitude under which a balance counts as settled.
	Dust = decimal.RequireFromString("0.01")
)

// Balances maps member id to net balance in one currency.
// Positive = owed money, negative = owes money.
type Balances map[string]decimal.Decimal

// Of returns the balance for member, zero when the member has no activity.
func (b Balances) Of(member string) decimal.Decimal {
	return b[member]
}

// Total sums every balance.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// Members returns the member ids with activity, sorted.
func (b Balances) Members() []string {
	members := make([]string, 0, len(b))
	for m := range b {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// IsSettled reports whether member is within Dust of zero.
func (b Balances) IsSettled(member string) bool {
	return b.Of(member).Abs().LessThanOrEqual(Dust)
}

// MemberBalance represents the balance information for one member in one currency.
type MemberBalance struct {
	Member string
	Paid   decimal.Decimal // Total contributed across payments
	Owed   decimal.Decimal // Total assigned across splits
	Net    decimal.Decimal // Paid - Owed
}

// AggregateBalances reduces ledger facts into per-member totals for currency.
//
// Deleted expenses are skipped together with all of their payments and
// splits; deleted payments and splits are skipped individually. Members that
// appear in no live payment or split are omitted. The result is sorted by
// member id.
func AggregateBalances(expenses []models.Expense, currency string) []MemberBalance {
	totals := make(map[string]*MemberBalance)
	get := func(member string) *MemberBalance {
		mb, ok := totals[member]
		if !ok {
			mb = &MemberBalance{Member: member}
			totals[member] = mb
		}
		return mb
	}

	for _, e := range expenses {
		if e.Deleted || e.Currency != currency {
			continue
		}
		for _, p := range e.Payments {
			if p.Deleted {
				continue
			}
			mb := get(p.Member)
			mb.Paid = mb.Paid.Add(p.Amount)
		}
		for _, s := range e.Splits {
			if s.Deleted {
				continue
			}
			mb := get(s.Member)
			mb.Owed = mb.Owed.Add(s.Amount)
		}
	}

	result := make([]MemberBalance, 0, len(totals))
	for _, mb := range totals {
		mb.Net = mb.Paid.Sub(mb.Owed)
		result = append(result, *mb)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Member < result[j].Member })
	return result
}

// ComputeNetBalances returns net balance per member for currency.
// It is the single aggregation used by every balance-dependent operation.
func ComputeNetBalances(expenses []models.Expense, currency string) Balances {
	balances := make(Balances)
	for _, mb := range AggregateBalances(expenses, currency) {
		balances[mb.Member] = mb.Net
	}
	return balances
}

// Currencies returns the distinct currencies of live expenses, sorted.
func Currencies(expenses []models.Expense) []string {
	seen := make(map[string]bool)
	var currencies []string
	for _, e := range expenses {
		if e.Deleted || seen[e.Currency] {
			continue
		}
		seen[e.Currency] = true
		currencies = append(currencies, e.Currency)
	}
	sort.Strings(currencies)
	return currencies
}
