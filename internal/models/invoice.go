package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Invoice mirrors the document created at the external billing provider for
// a project. The billing sync worker keeps it, and the project status, in
// step with the provider.
type Invoice struct {
	gorm.Model
	ProjectID uint    `gorm:"uniqueIndex;not null" json:"projectId"`
	Project   Project `json:"-"`

	ExternalID string          `gorm:"size:100;index" json:"externalId"`
	Number     string          `gorm:"size:50" json:"number"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Status     InvoiceStatus   `gorm:"type:varchar(20);not null;default:draft" json:"status"`

	SentAt *time.Time `json:"sentAt"`
	PaidAt *time.Time `json:"paidAt"`
}
