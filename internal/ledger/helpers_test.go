package ledger

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

// recorder captures delivered notifications.
type recorder struct {
	mu  sync.Mutex
	got []models.Notification
}

func (r *recorder) Notify(_ context.Context, ns []models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ns...)
	return nil
}

func (r *recorder) of(typ models.NotificationType) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.got {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func setupEngine(t *testing.T, store storage.Store, opts ...Option) (*Engine, *recorder) {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	rec := &recorder{}
	opts = append([]Option{
		WithNotifier(rec),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(store, opts...), rec
}

func createGroup(t *testing.T, e *Engine, creator string, members ...string) *models.Group {
	t.Helper()
	group, err := e.CreateGroup(context.Background(), "Test Group", creator, members)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// paidBy records an expense paid in full by payer and split equally among
// participants (all members when none are given).
func paidBy(t *testing.T, e *Engine, groupID, payer, amount, currency string, participants ...string) *models.Expense {
	t.Helper()
	expense, err := e.AddExpense(context.Background(), groupID, payer, ExpenseInput{
		Description: "Dinner",
		Currency:    currency,
		Shares: calculator.ExpenseInput{
			Amount:       dec(amount),
			SplitMode:    calculator.SplitEqual,
			Participants: participants,
			PaymentMode:  calculator.PaymentSingle,
			Payer:        payer,
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return expense
}

func assertBalances(t *testing.T, got calculator.Balances, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got %d balances %v, want %d", len(got), got, len(want))
	}
	for member, w := range want {
		if !got.Of(member).Equal(dec(w)) {
			t.Errorf("balance[%s] = %s, want %s", member, got.Of(member), w)
		}
	}
}
