// Package id generates the prefixed identifiers used for ledger records.
//
// Identifiers are TypeIDs ("prefix_suffix"): K-sortable (UUIDv7-based),
// globally unique and URL-safe.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record type encoded in an identifier.
type Prefix string

const (
	PrefixExpense      Prefix = "exp"
	PrefixPayment      Prefix = "pay"
	PrefixSplit        Prefix = "spl"
	PrefixNotification Prefix = "ntf"
)

// New generates a new identifier with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

// Check parses s and verifies that its prefix matches expected.
func Check(s string, expected Prefix) error {
	if s == "" {
		return fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return fmt.Errorf("id: parse %q: %w", s, err)
	}
	if Prefix(tid.Prefix()) != expected {
		return fmt.Errorf("id: expected prefix %q, got %q", expected, tid.Prefix())
	}
	return nil
}
