package models

// NotificationType classifies a member notification.
type NotificationType string

const (
	NotificationGroupAdd   NotificationType = "GROUP_ADD"
	NotificationExpenseAdd NotificationType = "EXPENSE_ADD"
	NotificationSettlement NotificationType = "SETTLEMENT"
	NotificationSystem     NotificationType = "SYSTEM"
)

// Notification is a message delivered to a member's inbox.
type Notification struct {
	// ID is the unique identifier for the notification (TypeID, prefix "ntf").
	ID string

	// Member is the recipient.
	Member string

	// Message is the human-readable text.
	Message string

	// Type classifies the notification.
	Type NotificationType

	// Read is set once the member has seen the notification.
	Read bool

	// Link points to the related object (e.g. "/groups/<id>").
	Link string

	// CreatedAt is the Unix timestamp when the notification was created.
	CreatedAt int64
}
