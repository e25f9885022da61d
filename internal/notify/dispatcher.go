package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"solardesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dispatcher drains the notification outbox: it claims due messages in a
// transaction, sends them through the email/calendar clients and retries
// failures with exponential backoff until MaxAttempts.
type Dispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	Email        EmailSender
	Calendar     CalendarSender
	DispatcherID string

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

func NewDispatcher(db *gorm.DB, logger *logrus.Logger, email EmailSender, calendar CalendarSender) *Dispatcher {
	return &Dispatcher{
		DB:             db,
		Logger:         logger,
		Email:          email,
		Calendar:       calendar,
		DispatcherID:   uuid.NewString(),
		BatchSize:      25,
		PollInterval:   2 * time.Second,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    10,
		InitialBackoff: 5 * time.Second,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.DispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *Dispatcher) DispatchOnce(ctx context.Context) {
	claimed := d.claim(ctx)
	for i := range claimed {
		d.deliver(ctx, &claimed[i])
	}
}

// claim marks a batch of messages as processing under this dispatcher's id.
// Eligible: pending messages that are due, plus processing messages whose
// lock went stale (a dispatcher died mid-batch). Each row is taken with a
// guarded single-row update that repeats the eligibility predicate, so a
// concurrent dispatcher racing for the same row loses on RowsAffected.
func (d *Dispatcher) claim(ctx context.Context) []models.OutboxMessage {
	now := time.Now()
	staleBefore := now.Add(-d.LockTimeout)
	eligible := "(status = ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)) OR (status = ? AND locked_at < ?)"

	var candidates []models.OutboxMessage
	err := d.DB.WithContext(ctx).
		Where(eligible, models.OutboxPending, now, models.OutboxProcessing, staleBefore).
		Order("id asc").
		Limit(d.BatchSize).
		Find(&candidates).Error
	if err != nil {
		d.Logger.WithFields(logrus.Fields{"dispatcher": d.DispatcherID}).
			Error("outbox claim failed: " + err.Error())
		return nil
	}

	claimed := candidates[:0]
	for i := range candidates {
		res := d.DB.WithContext(ctx).Model(&models.OutboxMessage{}).
			Where("id = ? AND ("+eligible+")",
				candidates[i].ID, models.OutboxPending, now, models.OutboxProcessing, staleBefore).
			Updates(map[string]interface{}{
				"status":    models.OutboxProcessing,
				"locked_by": d.DispatcherID,
				"locked_at": now,
			})
		if res.Error != nil {
			d.Logger.WithFields(logrus.Fields{"dispatcher": d.DispatcherID, "message_id": candidates[i].ID}).
				Error("outbox claim failed: " + res.Error.Error())
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		claimed = append(claimed, candidates[i])
	}
	return claimed
}

func (d *Dispatcher) deliver(ctx context.Context, msg *models.OutboxMessage) {
	err := d.send(ctx, msg)
	if err == nil {
		uerr := d.DB.Model(&models.OutboxMessage{}).Where("id = ?", msg.ID).
			Updates(map[string]interface{}{
				"status":     models.OutboxSent,
				"last_error": "",
			}).Error
		if uerr != nil {
			d.Logger.WithFields(logrus.Fields{"message_id": msg.ID}).
				Error("outbox mark sent failed: " + uerr.Error())
		}
		return
	}

	attempts := msg.Attempts + 1
	updates := map[string]interface{}{
		"attempts":   attempts,
		"last_error": err.Error(),
	}
	if attempts >= d.MaxAttempts {
		updates["status"] = models.OutboxFailed
	} else {
		backoff := d.InitialBackoff << (attempts - 1)
		if backoff > 10*time.Minute {
			backoff = 10 * time.Minute
		}
		updates["status"] = models.OutboxPending
		updates["next_attempt_at"] = time.Now().Add(backoff)
	}

	d.Logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"kind":       msg.Kind,
		"attempts":   attempts,
	}).Warn("outbox delivery failed: " + err.Error())

	uerr := d.DB.Model(&models.OutboxMessage{}).Where("id = ?", msg.ID).Updates(updates).Error
	if uerr != nil {
		d.Logger.WithFields(logrus.Fields{"message_id": msg.ID}).
			Error("outbox retry bookkeeping failed: " + uerr.Error())
	}
}

func (d *Dispatcher) send(ctx context.Context, msg *models.OutboxMessage) error {
	switch msg.Kind {
	case models.OutboxEmail:
		if d.Email == nil {
			return fmt.Errorf("no email sender configured")
		}
		var payload EmailPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			return err
		}
		return d.Email.Send(ctx, payload)
	case models.OutboxCalendar:
		if d.Calendar == nil {
			return fmt.Errorf("no calendar sender configured")
		}
		var payload CalendarPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			return err
		}
		return d.Calendar.CreateEvent(ctx, payload)
	default:
		return fmt.Errorf("unknown outbox kind %q", msg.Kind)
	}
}
