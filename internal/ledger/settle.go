package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Settlement is the expense recorded by SettleUp.
type Settlement struct {
	Expense *models.Expense
	Amount  decimal.Decimal
}

// SettleUp records payer paying off the simplified transfer it owes target
// in currency.
//
// The transfer is looked up again from current balances: callers pick which
// edge to settle, never how much. The result is one expense with a single
// payment by payer and a single split for target, both equal to the
// transfer amount, so the expense balances by construction and the two
// members' net balances move to cancel the transfer.
//
// Settlements on one (group, currency) ledger run one at a time. The
// balance recheck happens inside the transaction that writes the
// settlement, so a concurrent duplicate fails with ErrNoDebtFound.
func (e *Engine) SettleUp(ctx context.Context, groupID, payer, target, currency string) (*Settlement, error) {
	currency, err := e.currency(currency)
	if err != nil {
		return nil, err
	}

	settlement, err := e.settleUp(ctx, groupID, payer, target, currency)
	e.metrics.Settlement(currency, settleOutcome(err))
	if err != nil {
		e.logger.InfoContext(ctx, "Settle up refused",
			"group_id", groupID,
			"payer", payer,
			"target", target,
			"currency", currency,
			"error", err)
		return nil, err
	}

	e.logger.InfoContext(ctx, "Settled up",
		"group_id", groupID,
		"expense_id", settlement.Expense.ID,
		"payer", payer,
		"target", target,
		"amount", settlement.Amount.StringFixed(2),
		"currency", currency)

	e.notify(ctx, []models.Notification{{
		Member:  target,
		Message: fmt.Sprintf("%s settled %s %s with you", payer, settlement.Amount.StringFixed(2), currency),
		Type:    models.NotificationSettlement,
		Link:    groupLink(groupID),
	}})
	return settlement, nil
}

func (e *Engine) settleUp(ctx context.Context, groupID, payer, target, currency string) (*Settlement, error) {
	group, err := liveGroup(ctx, e.store, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(target) {
		return nil, notAMember(target, groupID)
	}
	if !group.HasMember(payer) {
		return nil, notAMember(payer, groupID)
	}
	if payer == target {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrNoDebtFound)
	}

	unlock, err := e.locks.lock(ctx, ledgerKey(groupID, currency))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var settlement *Settlement
	err = e.store.InTx(ctx, func(tx storage.Ledger) error {
		if err := tx.LockLedger(ctx, groupID, currency); err != nil {
			return err
		}

		// Membership may have changed since the first look.
		group, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !group.HasMember(target) {
			return notAMember(target, groupID)
		}

		balances, err := netBalances(ctx, tx, groupID, currency)
		if err != nil {
			return err
		}
		if integrity := e.checkIntegrity(ctx, groupID, currency, balances); integrity.Corrupt {
			return &CorruptError{Currency: currency, Total: integrity.Total}
		}

		edge, ok := calculator.FindEdge(calculator.Simplify(balances), payer, target)
		if !ok {
			return fmt.Errorf("%w: %s owes %s nothing in %s", ErrNoDebtFound, payer, target, currency)
		}

		expense := &models.Expense{
			GroupID:     groupID,
			Description: "Settlement to " + target,
			Amount:      edge.Amount,
			Currency:    currency,
			Kind:        models.ExpenseKindSettlement,
			CreatedBy:   payer,
			Payments:    []models.Payment{{Member: payer, Amount: edge.Amount}},
			Splits:      []models.Split{{Member: target, Amount: edge.Amount}},
		}
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		settlement = &Settlement{Expense: expense, Amount: edge.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

func settleOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSettled
	case errors.Is(err, ErrNoDebtFound):
		return metrics.OutcomeNoDebt
	case errors.Is(err, ErrLedgerCorrupt):
		return metrics.OutcomeCorrupt
	case errors.Is(err, ErrNotAMember):
		return metrics.OutcomeNotMember
	default:
		return metrics.OutcomeError
	}
}
