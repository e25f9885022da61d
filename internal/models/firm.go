package models

import "gorm.io/gorm"

// Firm is a tenant organization; clients, crews and projects hang off it.
type Firm struct {
	gorm.Model
	Name         string `gorm:"size:255;not null" json:"name"`
	Address      string `gorm:"size:255" json:"address"`
	ContactName  string `gorm:"size:255" json:"contactName"`
	ContactEmail string `gorm:"size:255" json:"contactEmail"`
	ContactPhone string `gorm:"size:50" json:"contactPhone"`
}
