package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// expense builds a live expense from member->amount maps.
func expense(currency, amount string, paid, owed map[string]string) models.Expense {
	e := models.Expense{Amount: dec(amount), Currency: currency}
	for m, a := range paid {
		e.Payments = append(e.Payments, models.Payment{Member: m, Amount: dec(a)})
	}
	for m, a := range owed {
		e.Splits = append(e.Splits, models.Split{Member: m, Amount: dec(a)})
	}
	return e
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}
