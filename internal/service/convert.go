package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func groupToAPI(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
	}
}

func groupsToAPI(groups []*models.Group) []*api.Group {
	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g)
	}
	return out
}

func balancesToAPI(balances []calculator.MemberBalance) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{Member: b.Member, Paid: b.Paid, Owed: b.Owed, Net: b.Net}
	}
	return out
}

func transfersToAPI(transfers []models.Transfer) []api.Transfer {
	out := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = api.Transfer{
			Debtor:   t.Debtor,
			Creditor: t.Creditor,
			Amount:   t.Amount,
			Currency: t.Currency,
		}
	}
	return out
}

func integrityToAPI(i calculator.Integrity) api.Integrity {
	return api.Integrity{Total: i.Total, Corrupt: i.Corrupt}
}

func outstandingToAPI(blocking []ledger.Outstanding) []api.Outstanding {
	out := make([]api.Outstanding, len(blocking))
	for i, o := range blocking {
		out[i] = api.Outstanding{Member: o.Member, Currency: o.Currency, Balance: o.Balance}
	}
	return out
}

// expenseToAPI converts an expense, leaving out deleted shares.
func expenseToAPI(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Kind:        string(e.Kind),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		Payments:    []api.Share{},
		Splits:      []api.Share{},
	}
	for _, p := range e.Payments {
		if !p.Deleted {
			out.Payments = append(out.Payments, api.Share{Member: p.Member, Amount: p.Amount})
		}
	}
	for _, s := range e.Splits {
		if !s.Deleted {
			out.Splits = append(out.Splits, api.Share{Member: s.Member, Amount: s.Amount})
		}
	}
	return out
}

func notificationToAPI(n models.Notification) *api.Notification {
	return &api.Notification{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func sharesFromAPI(shares []api.Share) []calculator.Share {
	if len(shares) == 0 {
		return nil
	}
	out := make([]calculator.Share, len(shares))
	for i, s := range shares {
		out[i] = calculator.Share{Member: s.Member, Amount: s.Amount}
	}
	return out
}

// expenseInput builds the engine input. A SINGLE payment without a payer
// is paid by the caller.
func expenseInput(f api.ExpenseFields, member string) ledger.ExpenseInput {
	in := ledger.ExpenseInput{
		Description: f.Description,
		Currency:    f.Currency,
		Shares: calculator.ExpenseInput{
			Amount:       f.Amount,
			SplitMode:    calculator.SplitMode(f.SplitMode),
			Participants: f.Participants,
			ExactSplits:  sharesFromAPI(f.Splits),
			PaymentMode:  calculator.PaymentMode(f.PaymentMode),
			Payer:        f.Payer,
			Payments:     sharesFromAPI(f.Payments),
		},
	}
	if in.Shares.PaymentMode == "" {
		in.Shares.PaymentMode = calculator.PaymentSingle
	}
	if in.Shares.PaymentMode == calculator.PaymentSingle && in.Shares.Payer == "" {
		in.Shares.Payer = member
	}
	return in
}
