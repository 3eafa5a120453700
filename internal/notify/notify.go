// Package notify delivers member notifications produced by ledger writes.
package notify

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Notifier delivers notifications. Implementations may fill in the ID and
// CreatedAt of each element in place.
type Notifier interface {
	Notify(ctx context.Context, notifications []models.Notification) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, []models.Notification) error { return nil }

// Multi fans out to each notifier in order. Every notifier is tried; the
// errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notifications []models.Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, notifications); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Inbox stores notifications so members can list them later.
type Inbox struct {
	store storage.Ledger
}

func NewInbox(store storage.Ledger) *Inbox {
	return &Inbox{store: store}
}

func (i *Inbox) Notify(ctx context.Context, notifications []models.Notification) error {
	for k := range notifications {
		if err := i.store.CreateNotification(ctx, &notifications[k]); err != nil {
			return err
		}
	}
	return nil
}

// List returns member's notifications, newest first.
func (i *Inbox) List(ctx context.Context, member string, unreadOnly bool) ([]models.Notification, error) {
	return i.store.ListNotifications(ctx, member, unreadOnly)
}

// MarkRead marks one of member's notifications read.
func (i *Inbox) MarkRead(ctx context.Context, member, notificationID string) error {
	return i.store.MarkNotificationRead(ctx, member, notificationID)
}

// MarkAllRead marks all of member's notifications read and reports how many
// changed.
func (i *Inbox) MarkAllRead(ctx context.Context, member string) (int64, error) {
	return i.store.MarkAllNotificationsRead(ctx, member)
}
