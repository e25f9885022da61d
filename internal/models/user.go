package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleLeiter UserRole = "leiter"
)

// User is a staff account (office side). Field workers are CrewMembers
// and authenticate through the worker PIN flow instead.
type User struct {
	gorm.Model
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Name         string   `gorm:"size:255" json:"name"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`

	// FirmID scopes a leiter to a single firm. Zero means unscoped (admins).
	FirmID uint `json:"firmId"`
}

func (u *User) CanAccessFirm(firmID uint) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.FirmID != 0 && u.FirmID == firmID
}
