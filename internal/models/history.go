package models

import "time"

// Change types used in project history entries.
const (
	ChangeStatus      = "status_change"
	ChangeFieldUpdate = "field_update"
	ChangeCrewAssign  = "crew_assigned"
	ChangeSchedule    = "schedule_change"
	ChangeNote        = "note"
	ChangeFile        = "file"
	ChangeReclamation = "reclamation"
	ChangeInvoice     = "invoice"
	ChangeCreate      = "create"
)

// Note priorities for history entries of type "note".
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ProjectHistoryEntry is an append-only audit record: what changed on a
// project, who changed it and what the value was before and after. Nothing
// in the codebase updates or deletes one of these rows.
type ProjectHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ProjectID uint   `gorm:"index;not null" json:"projectId"`
	UserID    uint   `gorm:"index" json:"userId"`
	UserName  string `gorm:"size:255" json:"userName"`

	ChangeType  string `gorm:"size:30;not null" json:"changeType"`
	FieldName   string `gorm:"size:50" json:"fieldName,omitempty"`
	OldValue    string `gorm:"size:255" json:"oldValue,omitempty"`
	NewValue    string `gorm:"size:255" json:"newValue,omitempty"`
	Description string `gorm:"type:text" json:"description"`

	// Priority was historically encoded as a "(priority: high)" suffix in
	// Description; the migration backfill moved it into this field.
	Priority *string `gorm:"size:10" json:"priority,omitempty"`
}

// Actions recorded in the reclamation sub-log.
const (
	ReclamationActionCreated    = "created"
	ReclamationActionReassigned = "reassigned"
	ReclamationActionAccepted   = "accepted"
	ReclamationActionStarted    = "started"
	ReclamationActionCompleted  = "completed"
	ReclamationActionCancelled  = "cancelled"
)

// ReclamationHistoryEntry is the append-only sub-log of actions taken on a
// single reclamation.
type ReclamationHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ReclamationID uint   `gorm:"index;not null" json:"reclamationId"`
	UserID        uint   `gorm:"index" json:"userId"`
	UserName      string `gorm:"size:255" json:"userName"`
	Action        string `gorm:"size:30;not null" json:"action"`
	Details       string `gorm:"type:text" json:"details"`
}
