package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errNoCaller  = errors.New("caller identity required")
	errNotMember = errors.New("caller is not a member of this group")
)

// toConnectError maps engine and storage errors onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, ledger.ErrLedgerCorrupt):
		code = connect.CodeDataLoss
	case errors.Is(err, ledger.ErrNoDebtFound),
		errors.Is(err, ledger.ErrOutstandingBalance):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, ledger.ErrConflict):
		code = connect.CodeAborted
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, ledger.ErrNotAMember),
		errors.Is(err, ledger.ErrInvalidCurrency),
		errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, calculator.ErrInvalidShares),
		errors.Is(err, calculator.ErrNoMembers),
		errors.Is(err, calculator.ErrNonPositive):
		code = connect.CodeInvalidArgument
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}
	return connect.NewError(code, err)
}

// caller returns the authenticated member.
func caller(ctx context.Context) (string, error) {
	member := middleware.GetMemberID(ctx)
	if member == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNoCaller)
	}
	return member, nil
}

// authorize loads a live group and requires the caller to be a member.
func authorize(ctx context.Context, engine *ledger.Engine, groupID string) (string, *models.Group, error) {
	member, err := caller(ctx)
	if err != nil {
		return "", nil, err
	}
	if groupID == "" {
		return "", nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group_id required"))
	}
	group, err := engine.GetGroup(ctx, groupID)
	if err != nil {
		return "", nil, toConnectError(err)
	}
	if !group.HasMember(member) {
		return "", nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return member, group, nil
}
