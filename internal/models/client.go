package models

import "gorm.io/gorm"

type Client struct {
	gorm.Model
	FirmID uint `gorm:"index;not null" json:"firmId"`
	Firm   Firm `json:"-"`

	Name         string `gorm:"size:255;not null" json:"name"`
	ContactName  string `gorm:"size:255" json:"contactName"`
	ContactEmail string `gorm:"size:255" json:"contactEmail"`
	ContactPhone string `gorm:"size:50" json:"contactPhone"`
	Address      string `gorm:"size:255" json:"address"`
	Notes        string `gorm:"type:text" json:"notes"`

	Projects []Project `json:"-"`
}
