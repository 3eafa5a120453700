package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/id"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateNotification persists a notification.
func (l *ledger) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = id.New(id.PrefixNotification)
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}

	_, err := l.exec(ctx,
		`INSERT INTO notifications (id, member, message, type, is_read, link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Member, n.Message, string(n.Type), n.Read, n.Link, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns member's notifications, newest first.
func (l *ledger) ListNotifications(ctx context.Context, member string, unreadOnly bool) ([]models.Notification, error) {
	query := "SELECT id, member, message, type, is_read, link, created_at FROM notifications WHERE member = ?"
	args := []any{member}
	if unreadOnly {
		query += " AND is_read = ?"
		args = append(args, false)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := l.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.Member, &n.Message, &typ, &n.Read, &n.Link, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead marks one of member's notifications read.
func (l *ledger) MarkNotificationRead(ctx context.Context, member, notificationID string) error {
	res, err := l.exec(ctx,
		"UPDATE notifications SET is_read = ? WHERE id = ? AND member = ?",
		true, notificationID, member,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(res, "notification", notificationID)
}

// MarkAllNotificationsRead marks every unread notification of member read.
func (l *ledger) MarkAllNotificationsRead(ctx context.Context, member string) (int64, error) {
	res, err := l.exec(ctx,
		"UPDATE notifications SET is_read = ? WHERE member = ? AND is_read = ?",
		true, member, false,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
