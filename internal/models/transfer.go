package models

import "github.com/shopspring/decimal"

// Transfer is one leg of the simplified debt graph: Debtor pays Creditor Amount.
// Transfers are derived on demand and never persisted.
type Transfer struct {
	Debtor   string
	Creditor string
	Amount   decimal.Decimal
	Currency string
}
