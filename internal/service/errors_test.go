package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"corrupt ledger", &ledger.CorruptError{Currency: "USD"}, connect.CodeDataLoss},
		{"no debt", ledger.ErrNoDebtFound, connect.CodeFailedPrecondition},
		{"outstanding", &ledger.OutstandingError{}, connect.CodeFailedPrecondition},
		{"conflict", fmt.Errorf("%w: expense exp_1", ledger.ErrConflict), connect.CodeAborted},
		{"not found", fmt.Errorf("group g: %w", storage.ErrNotFound), connect.CodeNotFound},
		{"invalid currency", ledger.ErrInvalidCurrency, connect.CodeInvalidArgument},
		{"deadline", context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{"unknown", errors.New("boom"), connect.CodeInternal},
		{"already mapped", connect.NewError(connect.CodePermissionDenied, errNotMember), connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connect.CodeOf(toConnectError(tt.err)); got != tt.want {
				t.Errorf("toConnectError(%v) code = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if err := toConnectError(nil); err != nil {
		t.Errorf("toConnectError(nil) = %v, want nil", err)
	}
}
