// Package models defines the core domain values for the group ledger.
//
// # Ledger Facts
//
// The ledger never stores "A owes B" directly. Instead every Expense is
// decomposed into facts:
//   - Payment: a member contributed an amount toward an expense
//   - Split: a member is responsible for an amount of an expense
//
// Net balances and transfers are derived from these facts on every request
// and are never persisted.
//
// # Soft Deletes
//
// Expenses, Payments and Splits carry a Deleted flag. Deleted records stay in
// storage and are excluded from every aggregation. A deleted Expense excludes
// its Payments and Splits even when they are not individually flagged.
//
// # Identity
//
// Members are opaque string ids owned by an external identity provider.
// Groups use UUIDs; ledger records use prefixed TypeIDs (exp_, pay_, spl_).
package models
