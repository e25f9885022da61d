package models

import (
	"time"

	"gorm.io/gorm"
)

type ReclamationStatus string

const (
	ReclamationPending    ReclamationStatus = "pending"
	ReclamationAccepted   ReclamationStatus = "accepted"
	ReclamationInProgress ReclamationStatus = "in_progress"
	ReclamationCompleted  ReclamationStatus = "completed"
	ReclamationCancelled  ReclamationStatus = "cancelled"
)

func (s ReclamationStatus) Terminal() bool {
	return s == ReclamationCompleted || s == ReclamationCancelled
}

// Reclamation is a post-completion defect report on a project. While one is
// open the parent project sits in the "reclamation" status; completing or
// cancelling it moves the project back to "work_completed".
type Reclamation struct {
	gorm.Model
	ProjectID uint    `gorm:"index;not null" json:"projectId"`
	Project   Project `json:"-"`
	CrewID    uint    `gorm:"index;not null" json:"crewId"`
	Crew      Crew    `json:"crew,omitempty"`

	Description string            `gorm:"type:text;not null" json:"description"`
	Deadline    *time.Time        `json:"deadline"`
	Status      ReclamationStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	CreatedByID uint `json:"createdById"`
}
