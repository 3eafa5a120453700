package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	engine *ledger.Engine
}

// NewLedgerService creates a LedgerService backed by engine.
func NewLedgerService(engine *ledger.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// NetBalances returns every active member's paid, owed and net totals.
func (s *LedgerService) NetBalances(ctx context.Context, req *connect.Request[api.NetBalancesRequest]) (*connect.Response[api.NetBalancesResponse], error) {
	slog.Info("NetBalances request received", "group_id", req.Msg.GroupID, "currency", req.Msg.Currency)

	if _, _, err := authorize(ctx, s.engine, req.Msg.GroupID); err != nil {
		return nil, err
	}
	currency := s.currencyOf(req.Msg.Currency)
	balances, err := s.engine.Balances(ctx, req.Msg.GroupID, currency)
	if err != nil {
		slog.Error("NetBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.NetBalancesResponse{
		Currency: currency,
		Balances: balancesToAPI(balances),
	}), nil
}

// Integrity reports whether a currency ledger closes.
func (s *LedgerService) Integrity(ctx context.Context, req *connect.Request[api.IntegrityRequest]) (*connect.Response[api.IntegrityResponse], error) {
	slog.Info("Integrity request received", "group_id", req.Msg.GroupID, "currency", req.Msg.Currency)

	if _, _, err := authorize(ctx, s.engine, req.Msg.GroupID); err != nil {
		return nil, err
	}
	currency := s.currencyOf(req.Msg.Currency)
	integrity, err := s.engine.Integrity(ctx, req.Msg.GroupID, currency)
	if err != nil {
		slog.Error("Integrity failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.IntegrityResponse{
		Currency:  currency,
		Integrity: integrityToAPI(integrity),
	}), nil
}

// Simplify returns the transfers that settle a currency ledger. A corrupt
// ledger is reported through Integrity with no transfers.
func (s *LedgerService) Simplify(ctx context.Context, req *connect.Request[api.SimplifyRequest]) (*connect.Response[api.SimplifyResponse], error) {
	slog.Info("Simplify request received", "group_id", req.Msg.GroupID, "currency", req.Msg.Currency)

	if _, _, err := authorize(ctx, s.engine, req.Msg.GroupID); err != nil {
		return nil, err
	}
	currency := s.currencyOf(req.Msg.Currency)
	resp := &api.SimplifyResponse{Currency: currency, Transfers: []api.Transfer{}}

	transfers, err := s.engine.Simplify(ctx, req.Msg.GroupID, currency)
	var corrupt *ledger.CorruptError
	switch {
	case errors.As(err, &corrupt):
		resp.Integrity = api.Integrity{Total: corrupt.Total, Corrupt: true}
	case err != nil:
		slog.Error("Simplify failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	default:
		resp.Transfers = transfersToAPI(transfers)
	}

	slog.Info("Simplify successful", "group_id", req.Msg.GroupID, "transfers", len(resp.Transfers))
	return connect.NewResponse(resp), nil
}

// SettleUp records a settlement from the caller to the target member for
// the amount the caller currently owes them.
func (s *LedgerService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	slog.Info("SettleUp request received",
		"group_id", req.Msg.GroupID,
		"target", req.Msg.Target,
		"currency", req.Msg.Currency,
	)

	member, _, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if req.Msg.Target == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("target required"))
	}

	settlement, err := s.engine.SettleUp(ctx, req.Msg.GroupID, member, req.Msg.Target, req.Msg.Currency)
	if err != nil {
		slog.Warn("SettleUp failed", "group_id", req.Msg.GroupID, "member", member, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SettleUpResponse{
		Expense: expenseToAPI(settlement.Expense),
		Amount:  settlement.Amount,
	}), nil
}

// CanRemoveMember reports whether a member is settled in every currency.
func (s *LedgerService) CanRemoveMember(ctx context.Context, req *connect.Request[api.CanRemoveMemberRequest]) (*connect.Response[api.CanRemoveMemberResponse], error) {
	slog.Info("CanRemoveMember request received", "group_id", req.Msg.GroupID, "member", req.Msg.Member)

	if _, _, err := authorize(ctx, s.engine, req.Msg.GroupID); err != nil {
		return nil, err
	}
	allowed, err := s.engine.CanRemove(ctx, req.Msg.GroupID, req.Msg.Member)
	if err != nil {
		return nil, toConnectError(err)
	}
	blocking, err := s.engine.Outstanding(ctx, req.Msg.GroupID, req.Msg.Member)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CanRemoveMemberResponse{
		Allowed:     allowed,
		Outstanding: outstandingToAPI(blocking),
	}), nil
}

// CanDeleteGroup reports whether every member is settled in every currency.
func (s *LedgerService) CanDeleteGroup(ctx context.Context, req *connect.Request[api.CanDeleteGroupRequest]) (*connect.Response[api.CanDeleteGroupResponse], error) {
	slog.Info("CanDeleteGroup request received", "group_id", req.Msg.GroupID)

	_, group, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.engine.CanDeleteGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	blocking, err := s.engine.Outstanding(ctx, group.ID, group.Members...)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CanDeleteGroupResponse{
		Allowed:     allowed,
		Outstanding: outstandingToAPI(blocking),
	}), nil
}

// GetSummary returns the group with balances, integrity and transfers for
// each of its currencies.
func (s *LedgerService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	slog.Info("GetSummary request received", "group_id", req.Msg.GroupID)

	if _, _, err := authorize(ctx, s.engine, req.Msg.GroupID); err != nil {
		return nil, err
	}
	summary, err := s.engine.Summary(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetSummary failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetSummaryResponse{Group: groupToAPI(summary.Group)}
	for _, cs := range summary.Currencies {
		resp.Currencies = append(resp.Currencies, api.CurrencySummary{
			Currency:  cs.Currency,
			Balances:  balancesToAPI(cs.Balances),
			Integrity: integrityToAPI(cs.Integrity),
			Transfers: transfersToAPI(cs.Transfers),
		})
	}
	return connect.NewResponse(resp), nil
}

// AddExpense records an expense paid and split among group members.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"currency", req.Msg.Currency,
		"split_mode", req.Msg.SplitMode,
	)

	member, _, err := authorize(ctx, s.engine, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	expense, err := s.engine.AddExpense(ctx, req.Msg.GroupID, member, expenseInput(req.Msg.ExpenseFields, member))
	if err != nil {
		slog.Warn("AddExpense failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// EditExpense replaces an expense's fields, payments and splits.
func (s *LedgerService) EditExpense(ctx context.Context, req *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EditExpenseResponse], error) {
	slog.Info("EditExpense request received", "expense_id", req.Msg.ExpenseID)

	member, err := s.authorizeExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}
	expense, err := s.engine.EditExpense(ctx, req.Msg.ExpenseID, member, expenseInput(req.Msg.ExpenseFields, member))
	if err != nil {
		slog.Warn("EditExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.EditExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// DeleteExpense soft-deletes an expense.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	member, err := s.authorizeExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.DeleteExpense(ctx, req.Msg.ExpenseID, member); err != nil {
		slog.Warn("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns a group's live expenses, optionally in one currency.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID, "currency", req.Msg.Currency)

	if _, _, err := authorize(ctx, s.engine, req.Msg.GroupID); err != nil {
		return nil, err
	}
	expenses, err := s.engine.ListExpenses(ctx, req.Msg.GroupID, req.Msg.Currency)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i := range expenses {
		out[i] = expenseToAPI(&expenses[i])
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// authorizeExpense requires the caller to be a member of the expense's group.
func (s *LedgerService) authorizeExpense(ctx context.Context, expenseID string) (string, error) {
	if _, err := caller(ctx); err != nil {
		return "", err
	}
	if expenseID == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, errors.New("expense_id required"))
	}
	expense, err := s.engine.GetExpense(ctx, expenseID)
	if err != nil {
		return "", toConnectError(err)
	}
	member, _, err := authorize(ctx, s.engine, expense.GroupID)
	return member, err
}

// currencyOf resolves an empty currency to the engine default. Invalid codes
// pass through for the engine to reject.
func (s *LedgerService) currencyOf(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return s.engine.DefaultCurrency()
	}
	return currency
}
