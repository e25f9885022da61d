package notify

import (
	"encoding/json"
	"time"

	"solardesk/internal/models"

	"gorm.io/gorm"
)

type EmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type CalendarPayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	CrewName    string     `json:"crewName,omitempty"`
	CrewColor   string     `json:"crewColor,omitempty"`
}

// EnqueueEmail records an email in the outbox inside the caller's
// transaction. The dispatcher picks it up after commit.
func EnqueueEmail(tx *gorm.DB, payload EmailPayload) error {
	if len(payload.To) == 0 {
		return nil
	}
	return enqueue(tx, models.OutboxEmail, payload)
}

// EnqueueCalendarEvent records a calendar event in the outbox.
func EnqueueCalendarEvent(tx *gorm.DB, payload CalendarPayload) error {
	return enqueue(tx, models.OutboxCalendar, payload)
}

func enqueue(tx *gorm.DB, kind models.OutboxKind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := models.OutboxMessage{
		Kind:    kind,
		Payload: string(raw),
		Status:  models.OutboxPending,
	}
	return tx.Create(&msg).Error
}
