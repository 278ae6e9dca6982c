package models

import "time"

// SentFile tracks a file delivered to a user, so the cleanup job can
// remove the message once its retention window has passed
type SentFile struct {
	ID        int64
	ChatID    int64
	MessageID int
	MovieID   int64
	Quality   string
	SentAt    time.Time
	DeleteAt  time.Time
}
