package models

import "time"

const (
	NotificationTitleScheduled = "Match Scheduled"
	NotificationTitleReminder  = "Match Reminder"
)

type Notification struct {
	ID           int        `json:"id" db:"id"`
	UserID       int        `json:"user_id" db:"user_id"`
	Title        string     `json:"title" db:"title"`
	Message      string     `json:"message" db:"message"`
	MatchID      *int       `json:"match_id,omitempty" db:"match_id"`
	ScheduledFor time.Time  `json:"scheduled_for" db:"scheduled_for"`
	Sent         bool       `json:"sent" db:"sent"`
	SentAt       *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Due reports whether the dispatcher should pick the notification up at now.
func (n *Notification) Due(now time.Time) bool {
	return !n.Sent && !n.ScheduledFor.After(now)
}

type DeviceToken struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Token      string    `json:"token" db:"token"`
	Platform   string    `json:"platform" db:"platform"`
	LastSeenAt time.Time `json:"last_seen_at" db:"last_seen_at"`
}
