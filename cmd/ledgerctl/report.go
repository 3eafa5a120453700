package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mmynk/splitledger/internal/ledger"
)

// check prints an integrity report for every live group and returns
// errImbalanced if any currency ledger does not close.
func check(ctx context.Context, e *ledger.Engine, out io.Writer) error {
	groups, err := e.ListGroups(ctx, "")
	if err != nil {
		return err
	}

	imbalanced := 0
	for _, g := range groups {
		summary, err := e.Summary(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		for _, cs := range summary.Currencies {
			if cs.Integrity.Corrupt {
				imbalanced++
			}
		}
		if err := printSummary(out, summary, false); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%d groups checked, %d imbalanced ledgers\n", len(groups), imbalanced)
	if imbalanced > 0 {
		return errImbalanced
	}
	return nil
}

// balances prints one group's balances and suggested transfers.
func balances(ctx context.Context, e *ledger.Engine, groupID string, out io.Writer) error {
	summary, err := e.Summary(ctx, groupID)
	if err != nil {
		return err
	}
	return printSummary(out, summary, true)
}

func printSummary(out io.Writer, summary *ledger.GroupSummary, withTransfers bool) error {
	fmt.Fprintf(out, "== %s (%s)\n", summary.Group.Name, summary.Group.ID)
	for _, cs := range summary.Currencies {
		status := "balanced"
		if cs.Integrity.Corrupt {
			status = fmt.Sprintf("IMBALANCED (total %s)", cs.Integrity.Total.StringFixed(2))
		}
		fmt.Fprintf(out, "-- %s: %s\n", cs.Currency, status)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "member\tpaid\towed\tnet\t")
		for _, b := range cs.Balances {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", b.Member,
				b.Paid.StringFixed(2), b.Owed.StringFixed(2), b.Net.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if withTransfers {
			for _, t := range cs.Transfers {
				fmt.Fprintf(out, "   %s pays %s %s %s\n", t.Debtor, t.Creditor, t.Amount.StringFixed(2), t.Currency)
			}
		}
	}
	return nil
}
