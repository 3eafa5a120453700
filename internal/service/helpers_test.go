package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// memberHeader names the caller in tests in place of a bearer token.
const memberHeader = "X-Test-Member"

func testAuth() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if member := req.Header().Get(memberHeader); member != "" {
				ctx = middleware.WithMemberID(ctx, member)
			}
			return next(ctx, req)
		}
	}
}

type testClients struct {
	ledger        apiconnect.LedgerServiceClient
	groups        apiconnect.GroupServiceClient
	notifications apiconnect.NotificationServiceClient
	store         storage.Store
}

// setupTestServer serves all three services over a temp SQLite database.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	inbox := notify.NewInbox(store)
	engine := ledger.New(store,
		ledger.WithNotifier(inbox),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	opts := connect.WithInterceptors(testAuth())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(engine), opts))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(engine), opts))
	mux.Handle(apiconnect.NewNotificationServiceHandler(NewNotificationService(inbox), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		ledger:        apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		groups:        apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		notifications: apiconnect.NewNotificationServiceClient(http.DefaultClient, server.URL),
		store:         store,
	}
}

// as builds a request made by member.
func as[T any](member string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if member != "" {
		req.Header().Set(memberHeader, member)
	}
	return req
}

func createGroup(t *testing.T, c *testClients, creator string, members ...string) *api.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), as(creator, &api.CreateGroupRequest{
		Name:    "Roommates",
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// addEqualExpense records amount paid by payer and split equally among all
// members.
func addEqualExpense(t *testing.T, c *testClients, groupID, payer, amount string) *api.Expense {
	t.Helper()
	resp, err := c.ledger.AddExpense(context.Background(), as(payer, &api.AddExpenseRequest{
		GroupID: groupID,
		ExpenseFields: api.ExpenseFields{
			Description: "Groceries",
			Amount:      dec(amount),
			SplitMode:   "EQUAL",
			PaymentMode: "SINGLE",
		},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T", err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}

func netOf(balances []api.Balance, member string) decimal.Decimal {
	for _, b := range balances {
		if b.Member == member {
			return b.Net
		}
	}
	return decimal.Zero
}
