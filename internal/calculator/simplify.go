package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DebtEdge represents a debt from one member to another.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

type position struct {
	member    string
	remaining decimal.Decimal // always positive
}

// Simplify collapses net balances into transfers using greedy
// largest-debtor/largest-creditor matching.
//
// Members within Dust of zero are ignored. Debtors and creditors are ordered
// by magnitude descending, ties by member id ascending, so identical input
// always yields identical output. Each emitted amount is rounded to two
// places; the running remainders are not.
//
// The result is minimal for this greedy strategy, not globally minimal:
// minimum-transaction settlement is NP-hard in general.
func Simplify(balances Balances) []DebtEdge {
	var debtors, creditors []position
	for member, bal := range balances {
		switch {
		case bal.LessThan(Dust.Neg()):
			debtors = append(debtors, position{member: member, remaining: bal.Abs()})
		case bal.GreaterThan(Dust):
			creditors = append(creditors, position{member: member, remaining: bal})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		edges = append(edges, DebtEdge{
			From:   debtor.member,
			To:     creditor.member,
			Amount: amount.Round(2),
		})

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThan(Dust) {
			i++
		}
		if creditor.remaining.LessThan(Dust) {
			j++
		}
	}
	return edges
}

func sortPositions(p []position) {
	sort.Slice(p, func(a, b int) bool {
		if cmp := p[a].remaining.Cmp(p[b].remaining); cmp != 0 {
			return cmp > 0
		}
		return p[a].member < p[b].member
	})
}

// FindEdge returns the edge from debtor to creditor, if any.
func FindEdge(edges []DebtEdge, debtor, creditor string) (DebtEdge, bool) {
	for _, e := range edges {
		if e.From == debtor && e.To == creditor {
			return e, true
		}
	}
	return DebtEdge{}, false
}
