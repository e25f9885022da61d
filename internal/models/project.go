package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	StatusNew           ProjectStatus = "new"
	StatusScheduled     ProjectStatus = "scheduled"
	StatusInProgress    ProjectStatus = "in_progress"
	StatusWorkCompleted ProjectStatus = "work_completed"
	StatusSendInvoice   ProjectStatus = "send_invoice"
	StatusInvoiced      ProjectStatus = "invoiced"
	StatusInvoiceSent   ProjectStatus = "invoice_sent"
	StatusPaid          ProjectStatus = "paid"
	StatusReclamation   ProjectStatus = "reclamation"
	StatusArchived      ProjectStatus = "archived"
	StatusCancelled     ProjectStatus = "cancelled"
)

// CompletedStatuses is the set of states in which installation work is done
// and a reclamation may be opened against the project.
var CompletedStatuses = []ProjectStatus{
	StatusWorkCompleted,
	StatusSendInvoice,
	StatusInvoiced,
	StatusInvoiceSent,
	StatusPaid,
}

func IsCompletedStatus(s ProjectStatus) bool {
	for _, c := range CompletedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

func IsValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case StatusNew, StatusScheduled, StatusInProgress, StatusWorkCompleted,
		StatusSendInvoice, StatusInvoiced, StatusInvoiceSent, StatusPaid,
		StatusReclamation, StatusArchived, StatusCancelled:
		return true
	}
	return false
}

// Project is a work order. Projects are never deleted; they leave the active
// pipeline through the archived or cancelled status.
type Project struct {
	gorm.Model
	FirmID   uint   `gorm:"index;not null" json:"firmId"`
	Firm     Firm   `json:"-"`
	ClientID uint   `gorm:"index;not null" json:"clientId"`
	Client   Client `json:"client,omitempty"`
	CrewID   *uint  `gorm:"index" json:"crewId"`
	Crew     *Crew  `json:"crew,omitempty"`

	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(30);not null;default:new" json:"status"`

	ScheduledStart *time.Time `json:"scheduledStart"`
	ScheduledEnd   *time.Time `json:"scheduledEnd"`

	// On-site contact for the installation crew; often differs from the
	// client's billing contact.
	InstallContactName  string `gorm:"size:255" json:"installContactName"`
	InstallContactPhone string `gorm:"size:50" json:"installContactPhone"`
	InstallAddress      string `gorm:"size:255" json:"installAddress"`

	ContractAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"contractAmount"`

	// Version is bumped on every status change; status updates are
	// compare-and-swap on it so concurrent edits surface as conflicts
	// instead of silently racing.
	Version uint `gorm:"not null;default:0" json:"version"`
}
