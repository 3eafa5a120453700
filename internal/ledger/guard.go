package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/storage"
)

// CanRemove reports whether member is settled in every currency with
// activity in the group. It only reads.
func (e *Engine) CanRemove(ctx context.Context, groupID, member string) (bool, error) {
	group, err := liveGroup(ctx, e.store, groupID)
	if err != nil {
		return false, err
	}
	if !group.HasMember(member) {
		return false, notAMember(member, groupID)
	}
	blocking, err := outstanding(ctx, e.store, groupID, []string{member})
	if err != nil {
		return false, err
	}
	return len(blocking) == 0, nil
}

// CanDeleteGroup reports whether every current member is settled in every
// currency with activity in the group. It only reads.
func (e *Engine) CanDeleteGroup(ctx context.Context, groupID string) (bool, error) {
	group, err := liveGroup(ctx, e.store, groupID)
	if err != nil {
		return false, err
	}
	blocking, err := outstanding(ctx, e.store, groupID, group.Members)
	if err != nil {
		return false, err
	}
	return len(blocking) == 0, nil
}

// Outstanding lists the non-zero balances of members in a group, by
// currency then member.
func (e *Engine) Outstanding(ctx context.Context, groupID string, members ...string) ([]Outstanding, error) {
	if _, err := liveGroup(ctx, e.store, groupID); err != nil {
		return nil, err
	}
	return outstanding(ctx, e.store, groupID, members)
}

func outstanding(ctx context.Context, l storage.Ledger, groupID string, members []string) ([]Outstanding, error) {
	expenses, err := l.ListExpenses(ctx, groupID, storage.ExpenseFilter{})
	if err != nil {
		return nil, err
	}

	var blocking []Outstanding
	for _, currency := range calculator.Currencies(expenses) {
		balances := calculator.ComputeNetBalances(expenses, currency)
		for _, member := range members {
			if !balances.IsSettled(member) {
				blocking = append(blocking, Outstanding{
					Member:   member,
					Currency: currency,
					Balance:  balances.Of(member),
				})
			}
		}
	}
	return blocking, nil
}

// requireSettled fails with an *OutstandingError when any member has a balance.
func requireSettled(ctx context.Context, l storage.Ledger, groupID string, members []string) error {
	blocking, err := outstanding(ctx, l, groupID, members)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		return &OutstandingError{Outstanding: blocking}
	}
	return nil
}
