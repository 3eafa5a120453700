package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of the LedgerService RPCs.
const (
	LedgerServiceNetBalancesProcedure     = "/splitledger.v1.LedgerService/NetBalances"
	LedgerServiceIntegrityProcedure       = "/splitledger.v1.LedgerService/Integrity"
	LedgerServiceSimplifyProcedure        = "/splitledger.v1.LedgerService/Simplify"
	LedgerServiceSettleUpProcedure        = "/splitledger.v1.LedgerService/SettleUp"
	LedgerServiceCanRemoveMemberProcedure = "/splitledger.v1.LedgerService/CanRemoveMember"
	LedgerServiceCanDeleteGroupProcedure  = "/splitledger.v1.LedgerService/CanDeleteGroup"
	LedgerServiceGetSummaryProcedure      = "/splitledger.v1.LedgerService/GetSummary"
	LedgerServiceAddExpenseProcedure      = "/splitledger.v1.LedgerService/AddExpense"
	LedgerServiceEditExpenseProcedure     = "/splitledger.v1.LedgerService/EditExpense"
	LedgerServiceDeleteExpenseProcedure   = "/splitledger.v1.LedgerService/DeleteExpense"
	LedgerServiceListExpensesProcedure    = "/splitledger.v1.LedgerService/ListExpenses"
)

// LedgerServiceClient is a client for the LedgerService.
type LedgerServiceClient interface {
	NetBalances(context.Context, *connect.Request[api.NetBalancesRequest]) (*connect.Response[api.NetBalancesResponse], error)
	Integrity(context.Context, *connect.Request[api.IntegrityRequest]) (*connect.Response[api.IntegrityResponse], error)
	Simplify(context.Context, *connect.Request[api.SimplifyRequest]) (*connect.Response[api.SimplifyResponse], error)
	SettleUp(context.Context, *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error)
	CanRemoveMember(context.Context, *connect.Request[api.CanRemoveMemberRequest]) (*connect.Response[api.CanRemoveMemberResponse], error)
	CanDeleteGroup(context.Context, *connect.Request[api.CanDeleteGroupRequest]) (*connect.Response[api.CanDeleteGroupResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	EditExpense(context.Context, *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EditExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService. baseURL is the
// scheme and host of the server, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	c := &ledgerServiceClient{}
	c.netBalances = connect.NewClient[api.NetBalancesRequest, api.NetBalancesResponse](httpClient, baseURL+LedgerServiceNetBalancesProcedure, opts...)
	c.integrity = connect.NewClient[api.IntegrityRequest, api.IntegrityResponse](httpClient, baseURL+LedgerServiceIntegrityProcedure, opts...)
	c.simplify = connect.NewClient[api.SimplifyRequest, api.SimplifyResponse](httpClient, baseURL+LedgerServiceSimplifyProcedure, opts...)
	c.settleUp = connect.NewClient[api.SettleUpRequest, api.SettleUpResponse](httpClient, baseURL+LedgerServiceSettleUpProcedure, opts...)
	c.canRemoveMember = connect.NewClient[api.CanRemoveMemberRequest, api.CanRemoveMemberResponse](httpClient, baseURL+LedgerServiceCanRemoveMemberProcedure, opts...)
	c.canDeleteGroup = connect.NewClient[api.CanDeleteGroupRequest, api.CanDeleteGroupResponse](httpClient, baseURL+LedgerServiceCanDeleteGroupProcedure, opts...)
	c.getSummary = connect.NewClient[api.GetSummaryRequest, api.GetSummaryResponse](httpClient, baseURL+LedgerServiceGetSummaryProcedure, opts...)
	c.addExpense = connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...)
	c.editExpense = connect.NewClient[api.EditExpenseRequest, api.EditExpenseResponse](httpClient, baseURL+LedgerServiceEditExpenseProcedure, opts...)
	c.deleteExpense = connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...)
	c.listExpenses = connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...)
	return c
}

type ledgerServiceClient struct {
	netBalances     *connect.Client[api.NetBalancesRequest, api.NetBalancesResponse]
	integrity       *connect.Client[api.IntegrityRequest, api.IntegrityResponse]
	simplify        *connect.Client[api.SimplifyRequest, api.SimplifyResponse]
	settleUp        *connect.Client[api.SettleUpRequest, api.SettleUpResponse]
	canRemoveMember *connect.Client[api.CanRemoveMemberRequest, api.CanRemoveMemberResponse]
	canDeleteGroup  *connect.Client[api.CanDeleteGroupRequest, api.CanDeleteGroupResponse]
	getSummary      *connect.Client[api.GetSummaryRequest, api.GetSummaryResponse]
	addExpense      *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	editExpense     *connect.Client[api.EditExpenseRequest, api.EditExpenseResponse]
	deleteExpense   *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses    *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
}

func (c *ledgerServiceClient) NetBalances(ctx context.Context, req *connect.Request[api.NetBalancesRequest]) (*connect.Response[api.NetBalancesResponse], error) {
	return c.netBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Integrity(ctx context.Context, req *connect.Request[api.IntegrityRequest]) (*connect.Response[api.IntegrityResponse], error) {
	return c.integrity.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Simplify(ctx context.Context, req *connect.Request[api.SimplifyRequest]) (*connect.Response[api.SimplifyResponse], error) {
	return c.simplify.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CanRemoveMember(ctx context.Context, req *connect.Request[api.CanRemoveMemberRequest]) (*connect.Response[api.CanRemoveMemberResponse], error) {
	return c.canRemoveMember.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CanDeleteGroup(ctx context.Context, req *connect.Request[api.CanDeleteGroupRequest]) (*connect.Response[api.CanDeleteGroupResponse], error) {
	return c.canDeleteGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) EditExpense(ctx context.Context, req *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EditExpenseResponse], error) {
	return c.editExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server side of the LedgerService.
// It serves balances, integrity, simplification, settlement and expense entry
// for a group.
type LedgerServiceHandler interface {
	NetBalances(context.Context, *connect.Request[api.NetBalancesRequest]) (*connect.Response[api.NetBalancesResponse], error)
	Integrity(context.Context, *connect.Request[api.IntegrityRequest]) (*connect.Response[api.IntegrityResponse], error)
	Simplify(context.Context, *connect.Request[api.SimplifyRequest]) (*connect.Response[api.SimplifyResponse], error)
	SettleUp(context.Context, *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error)
	CanRemoveMember(context.Context, *connect.Request[api.CanRemoveMemberRequest]) (*connect.Response[api.CanRemoveMemberResponse], error)
	CanDeleteGroup(context.Context, *connect.Request[api.CanDeleteGroupRequest]) (*connect.Response[api.CanDeleteGroupResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	EditExpense(context.Context, *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EditExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceNetBalancesProcedure, connect.NewUnaryHandler(LedgerServiceNetBalancesProcedure, svc.NetBalances, opts...))
	mux.Handle(LedgerServiceIntegrityProcedure, connect.NewUnaryHandler(LedgerServiceIntegrityProcedure, svc.Integrity, opts...))
	mux.Handle(LedgerServiceSimplifyProcedure, connect.NewUnaryHandler(LedgerServiceSimplifyProcedure, svc.Simplify, opts...))
	mux.Handle(LedgerServiceSettleUpProcedure, connect.NewUnaryHandler(LedgerServiceSettleUpProcedure, svc.SettleUp, opts...))
	mux.Handle(LedgerServiceCanRemoveMemberProcedure, connect.NewUnaryHandler(LedgerServiceCanRemoveMemberProcedure, svc.CanRemoveMember, opts...))
	mux.Handle(LedgerServiceCanDeleteGroupProcedure, connect.NewUnaryHandler(LedgerServiceCanDeleteGroupProcedure, svc.CanDeleteGroup, opts...))
	mux.Handle(LedgerServiceGetSummaryProcedure, connect.NewUnaryHandler(LedgerServiceGetSummaryProcedure, svc.GetSummary, opts...))
	mux.Handle(LedgerServiceAddExpenseProcedure, connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(LedgerServiceEditExpenseProcedure, connect.NewUnaryHandler(LedgerServiceEditExpenseProcedure, svc.EditExpense, opts...))
	mux.Handle(LedgerServiceDeleteExpenseProcedure, connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) NetBalances(context.Context, *connect.Request[api.NetBalancesRequest]) (*connect.Response[api.NetBalancesResponse], error) {
	return nil, unimplemented(LedgerServiceNetBalancesProcedure)
}

func (UnimplementedLedgerServiceHandler) Integrity(context.Context, *connect.Request[api.IntegrityRequest]) (*connect.Response[api.IntegrityResponse], error) {
	return nil, unimplemented(LedgerServiceIntegrityProcedure)
}

func (UnimplementedLedgerServiceHandler) Simplify(context.Context, *connect.Request[api.SimplifyRequest]) (*connect.Response[api.SimplifyResponse], error) {
	return nil, unimplemented(LedgerServiceSimplifyProcedure)
}

func (UnimplementedLedgerServiceHandler) SettleUp(context.Context, *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	return nil, unimplemented(LedgerServiceSettleUpProcedure)
}

func (UnimplementedLedgerServiceHandler) CanRemoveMember(context.Context, *connect.Request[api.CanRemoveMemberRequest]) (*connect.Response[api.CanRemoveMemberResponse], error) {
	return nil, unimplemented(LedgerServiceCanRemoveMemberProcedure)
}

func (UnimplementedLedgerServiceHandler) CanDeleteGroup(context.Context, *connect.Request[api.CanDeleteGroupRequest]) (*connect.Response[api.CanDeleteGroupResponse], error) {
	return nil, unimplemented(LedgerServiceCanDeleteGroupProcedure)
}

func (UnimplementedLedgerServiceHandler) GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	return nil, unimplemented(LedgerServiceGetSummaryProcedure)
}

func (UnimplementedLedgerServiceHandler) AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceAddExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) EditExpense(context.Context, *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EditExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceEditExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceDeleteExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return nil, unimplemented(LedgerServiceListExpensesProcedure)
}
