package models

import (
	"time"

	"gorm.io/gorm"
)

type Crew struct {
	gorm.Model
	FirmID uint `gorm:"index;not null" json:"firmId"`
	Firm   Firm `json:"-"`

	Name string `gorm:"size:255;not null" json:"name"`
	// Color is used by the scheduling calendar on the client side.
	Color string `gorm:"size:20" json:"color"`

	Members []CrewMember `json:"members,omitempty"`
}

type CrewMemberRole string

const (
	MemberWorker  CrewMemberRole = "worker"
	MemberForeman CrewMemberRole = "foreman"
)

type CrewMember struct {
	gorm.Model
	CrewID uint `gorm:"index;not null" json:"crewId"`
	Crew   Crew `json:"-"`

	Name     string         `gorm:"size:255;not null" json:"name"`
	Email    string         `gorm:"size:255;index" json:"email"`
	Phone    string         `gorm:"size:50" json:"phone"`
	Role     CrewMemberRole `gorm:"type:varchar(20);not null;default:worker" json:"role"`
	Archived bool           `gorm:"not null;default:false" json:"archived"`

	// PinCode is the worker login credential: a 6-digit decimal code, valid
	// until revoked or overwritten by a regenerate. Nil means no active PIN.
	PinCode        *string    `gorm:"size:6" json:"-"`
	PinGeneratedAt *time.Time `json:"pinGeneratedAt,omitempty"`
}

func (m *CrewMember) HasActivePin() bool {
	return m.PinCode != nil && *m.PinCode != ""
}
