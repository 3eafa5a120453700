package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func TestComputeNetBalances(t *testing.T) {
	tests := []struct {
		name     string
		expenses []models.Expense
		currency string
		want     map[string]string
	}{
		{
			name: "one payer three equal splits",
			expenses: []models.Expense{
				expense("USD", "300", map[string]string{"alice": "300"},
					map[string]string{"alice": "100", "bob": "100", "carol": "100"}),
			},
			currency: "USD",
			want:     map[string]string{"alice": "200", "bob": "-100", "carol": "-100"},
		},
		{
			name: "multiple payers",
			expenses: []models.Expense{
				expense("USD", "100", map[string]string{"alice": "60", "bob": "40"},
					map[string]string{"alice": "50", "bob": "50"}),
			},
			currency: "USD",
			want:     map[string]string{"alice": "10", "bob": "-10"},
		},
		{
			name: "currencies reconciled independently",
			expenses: []models.Expense{
				expense("USD", "100", map[string]string{"alice": "100"}, map[string]string{"bob": "100"}),
				expense("EUR", "50", map[string]string{"bob": "50"}, map[string]string{"alice": "50"}),
			},
			currency: "EUR",
			want:     map[string]string{"alice": "-50", "bob": "50"},
		},
		{
			name: "settled pair nets to zero",
			expenses: []models.Expense{
				expense("USD", "100", map[string]string{"alice": "100"}, map[string]string{"bob": "100"}),
				expense("USD", "100", map[string]string{"bob": "100"}, map[string]string{"alice": "100"}),
			},
			currency: "USD",
			want:     map[string]string{"alice": "0", "bob": "0"},
		},
		{
			name:     "no activity",
			expenses: nil,
			currency: "USD",
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeNetBalances(tt.expenses, tt.currency)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d members, want %d (%v)", len(got), len(tt.want), got)
			}
			for member, want := range tt.want {
				assertDecimal(t, member, got.Of(member), want)
			}
		})
	}
}

func TestComputeNetBalances_SoftDeletes(t *testing.T) {
	deletedExpense := expense("USD", "90", map[string]string{"alice": "90"}, map[string]string{"bob": "90"})
	deletedExpense.Deleted = true

	edited := expense("USD", "40", map[string]string{"alice": "40"}, map[string]string{"bob": "40"})
	edited.Payments = append(edited.Payments, models.Payment{Member: "carol", Amount: dec("40"), Deleted: true})
	edited.Splits = append(edited.Splits, models.Split{Member: "dave", Amount: dec("40"), Deleted: true})

	got := ComputeNetBalances([]models.Expense{deletedExpense, edited}, "USD")

	assertDecimal(t, "alice", got.Of("alice"), "40")
	assertDecimal(t, "bob", got.Of("bob"), "-40")
	if _, ok := got["carol"]; ok {
		t.Error("carol only has a deleted payment and should be omitted")
	}
	if _, ok := got["dave"]; ok {
		t.Error("dave only has a deleted split and should be omitted")
	}
}

func TestAggregateBalances(t *testing.T) {
	expenses := []models.Expense{
		expense("USD", "300", map[string]string{"alice": "300"},
			map[string]string{"alice": "100", "bob": "100", "carol": "100"}),
		expense("USD", "30", map[string]string{"bob": "30"},
			map[string]string{"alice": "15", "bob": "15"}),
	}

	got := AggregateBalances(expenses, "USD")
	if len(got) != 3 {
		t.Fatalf("expected 3 members, got %d", len(got))
	}
	if got[0].Member != "alice" || got[1].Member != "bob" || got[2].Member != "carol" {
		t.Errorf("expected members sorted by id, got %v", got)
	}
	assertDecimal(t, "alice paid", got[0].Paid, "300")
	assertDecimal(t, "alice owed", got[0].Owed, "115")
	assertDecimal(t, "alice net", got[0].Net, "185")
	assertDecimal(t, "bob net", got[1].Net, "-85")
	assertDecimal(t, "carol net", got[2].Net, "-100")
}

// Closure holds for any set of expenses whose payments and splits each equal
// the amount.
func TestComputeNetBalances_Closure(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e"}
	var expenses []models.Expense
	for i := 1; i <= 25; i++ {
		amount := dec("13.13").Add(decimal.NewFromInt(int64(i)).Mul(dec("7.07")))

		participants := members[:2+i%4]
		splits, err := EqualShares(amount, participants)
		if err != nil {
			t.Fatalf("EqualShares failed: %v", err)
		}
		e := models.Expense{Amount: amount, Currency: "USD"}
		e.Payments = []models.Payment{{Member: members[i%len(members)], Amount: amount}}
		for _, s := range splits {
			e.Splits = append(e.Splits, models.Split{Member: s.Member, Amount: s.Amount})
		}
		expenses = append(expenses, e)
	}

	balances := ComputeNetBalances(expenses, "USD")
	if !balances.Total().IsZero() {
		t.Errorf("sum of net balances = %s, want 0", balances.Total())
	}
	if CheckIntegrity(balances).Corrupt {
		t.Error("ledger built from valid expenses reported corrupt")
	}
}

func TestCurrencies(t *testing.T) {
	deleted := expense("GBP", "1", map[string]string{"a": "1"}, map[string]string{"a": "1"})
	deleted.Deleted = true
	expenses := []models.Expense{
		expense("USD", "1", map[string]string{"a": "1"}, map[string]string{"a": "1"}),
		expense("EUR", "1", map[string]string{"a": "1"}, map[string]string{"a": "1"}),
		expense("USD", "2", map[string]string{"a": "2"}, map[string]string{"a": "2"}),
		deleted,
	}

	got := Currencies(expenses)
	if len(got) != 2 || got[0] != "EUR" || got[1] != "USD" {
		t.Errorf("Currencies() = %v, want [EUR USD]", got)
	}
}

func TestBalances_IsSettled(t *testing.T) {
	b := Balances{"alice": dec("0.01"), "bob": dec("-0.02"), "carol": dec("-0.005")}
	if !b.IsSettled("alice") {
		t.Error("alice within dust should be settled")
	}
	if b.IsSettled("bob") {
		t.Error("bob owes 0.02 and should not be settled")
	}
	if !b.IsSettled("carol") {
		t.Error("carol within dust should be settled")
	}
	if !b.IsSettled("nobody") {
		t.Error("absent member should be settled")
	}
}
