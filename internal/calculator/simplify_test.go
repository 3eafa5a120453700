package calculator

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances Balances
		want     []DebtEdge
	}{
		{
			name:     "two debtors one creditor, tie broken by member id",
			balances: Balances{"alice": dec("200"), "carol": dec("-100"), "bob": dec("-100")},
			want: []DebtEdge{
				{From: "bob", To: "alice", Amount: dec("100")},
				{From: "carol", To: "alice", Amount: dec("100")},
			},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: Balances{"a": dec("70"), "b": dec("30"), "c": dec("-80"), "d": dec("-20")},
			want: []DebtEdge{
				{From: "c", To: "a", Amount: dec("70")},
				{From: "c", To: "b", Amount: dec("10")},
				{From: "d", To: "b", Amount: dec("20")},
			},
		},
		{
			name:     "dust is ignored",
			balances: Balances{"alice": dec("0.01"), "bob": dec("-0.01"), "carol": dec("0.004")},
			want:     nil,
		},
		{
			name:     "transfer amounts rounded to cents",
			balances: Balances{"alice": dec("33.335"), "bob": dec("-33.335")},
			want:     []DebtEdge{{From: "bob", To: "alice", Amount: dec("33.34")}},
		},
		{
			name:     "empty",
			balances: Balances{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("Simplify() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To || !got[i].Amount.Equal(tt.want[i].Amount) {
					t.Errorf("edge %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func randomBalances(r *rand.Rand, n int) Balances {
	b := make(Balances, n)
	total := decimal.Zero
	for i := 0; i < n-1; i++ {
		v := decimal.New(r.Int63n(200000)-100000, -2)
		if v.Abs().LessThanOrEqual(Dust) {
			v = decimal.New(100, -2)
		}
		b[fmt.Sprintf("m%02d", i)] = v
		total = total.Add(v)
	}
	b[fmt.Sprintf("m%02d", n-1)] = total.Neg()
	return b
}

// Applying every transfer as a balance delta brings each member back to zero.
func TestSimplify_RestoresZero(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		balances := randomBalances(r, 2+r.Intn(9))
		edges := Simplify(balances)

		after := make(Balances, len(balances))
		for m, v := range balances {
			after[m] = v
		}
		for _, e := range edges {
			if !e.Amount.IsPositive() {
				t.Fatalf("round %d: non-positive transfer %v", round, e)
			}
			after[e.From] = after[e.From].Add(e.Amount)
			after[e.To] = after[e.To].Sub(e.Amount)
		}
		for m, v := range after {
			if v.Abs().GreaterThan(Dust) {
				t.Errorf("round %d: member %s left with %s after transfers %v", round, m, v, edges)
			}
		}
		if len(edges) > len(balances)-1 && len(balances) > 0 {
			t.Errorf("round %d: %d transfers for %d members", round, len(edges), len(balances))
		}
	}
}

func TestSimplify_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		balances := randomBalances(r, 8)
		first := Simplify(balances)
		for k := 0; k < 5; k++ {
			// Map iteration order differs between calls.
			if again := Simplify(balances); !reflect.DeepEqual(first, again) {
				t.Fatalf("round %d: Simplify not deterministic:\n%v\n%v", round, first, again)
			}
		}
	}
}

func TestFindEdge(t *testing.T) {
	edges := []DebtEdge{
		{From: "bob", To: "alice", Amount: dec("10")},
		{From: "carol", To: "alice", Amount: dec("5")},
	}

	if e, ok := FindEdge(edges, "carol", "alice"); !ok || !e.Amount.Equal(dec("5")) {
		t.Errorf("FindEdge(carol, alice) = %v, %v", e, ok)
	}
	if _, ok := FindEdge(edges, "bob", "carol"); ok {
		t.Error("FindEdge(bob, carol) should not find an edge")
	}
	if _, ok := FindEdge(edges, "alice", "bob"); ok {
		t.Error("FindEdge should respect direction")
	}
}

func TestCheckIntegrity(t *testing.T) {
	tests := []struct {
		name      string
		balances  Balances
		wantTotal string
		corrupt   bool
	}{
		{name: "balanced", balances: Balances{"a": dec("200"), "b": dec("-100"), "c": dec("-100")}, wantTotal: "0"},
		{name: "within tolerance", balances: Balances{"a": dec("10.03"), "b": dec("-10")}, wantTotal: "0.03"},
		{name: "at tolerance", balances: Balances{"a": dec("10.05"), "b": dec("-10")}, wantTotal: "0.05"},
		{name: "splits short by ten", balances: Balances{"a": dec("100"), "b": dec("-90")}, wantTotal: "10", corrupt: true},
		{name: "negative drift", balances: Balances{"a": dec("-0.06")}, wantTotal: "-0.06", corrupt: true},
		{name: "empty", balances: Balances{}, wantTotal: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckIntegrity(tt.balances)
			assertDecimal(t, "total", got.Total, tt.wantTotal)
			if got.Corrupt != tt.corrupt {
				t.Errorf("Corrupt = %v, want %v", got.Corrupt, tt.corrupt)
			}
			if got.OK() == tt.corrupt {
				t.Errorf("OK() = %v, want %v", got.OK(), !tt.corrupt)
			}
		})
	}
}
