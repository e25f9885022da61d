package models

import "time"

type OutboxKind string

const (
	OutboxEmail    OutboxKind = "email"
	OutboxCalendar OutboxKind = "calendar"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSent       OutboxStatus = "sent"
	OutboxFailed     OutboxStatus = "failed"
)

// OutboxMessage is a pending external notification (email or calendar event).
// Rows are written inside the business transaction that caused them and
// dispatched asynchronously, so a SaaS outage never fails a user request.
type OutboxMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Kind    OutboxKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Payload string       `gorm:"type:text;not null" json:"payload"`
	Status  OutboxStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`

	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt *time.Time `gorm:"index" json:"nextAttemptAt"`
	LockedBy      string     `gorm:"size:64" json:"-"`
	LockedAt      *time.Time `json:"-"`
	LastError     string     `gorm:"type:text" json:"lastError,omitempty"`
}
