package models

import (
	"time"
)

// Notification type constants
const (
	NotificationTypeMonthClosed  = "month_closed"
	NotificationTypeMonthReopen  = "month_reopened"
	NotificationTypeModeFallback = "mode_fallback"
	NotificationTypeModeReset    = "mode_reset"
	NotificationTypeRollback     = "report_rollback"
)

// Notification is a toast-level notice shown to administrators
type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsRead returns true if notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkAsRead marks the notification as read
func (n *Notification) MarkAsRead(at time.Time) {
	n.ReadAt = &at
}
