package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// NotificationService implements the Connect NotificationService over the
// stored inbox.
type NotificationService struct {
	apiconnect.UnimplementedNotificationServiceHandler
	inbox *notify.Inbox
}

func NewNotificationService(inbox *notify.Inbox) *NotificationService {
	return &NotificationService{inbox: inbox}
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := s.inbox.List(ctx, member, req.Msg.UnreadOnly)
	if err != nil {
		slog.Error("ListNotifications failed", "member", member, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListNotificationsResponse{Notifications: make([]*api.Notification, len(notifications))}
	for i, n := range notifications {
		resp.Notifications[i] = notificationToAPI(n)
		if !n.Read {
			resp.UnreadCount++
		}
	}
	return connect.NewResponse(resp), nil
}

// MarkRead marks one of the caller's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.NotificationID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("notification_id required"))
	}

	if err := s.inbox.MarkRead(ctx, member, req.Msg.NotificationID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MarkReadResponse{}), nil
}

// MarkAllRead marks every notification of the caller read.
func (s *NotificationService) MarkAllRead(ctx context.Context, req *connect.Request[api.MarkAllReadRequest]) (*connect.Response[api.MarkAllReadResponse], error) {
	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.inbox.MarkAllRead(ctx, member)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Marked notifications read", "member", member, "updated", updated)
	return connect.NewResponse(&api.MarkAllReadResponse{Updated: updated}), nil
}
