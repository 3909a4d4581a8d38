package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the verification state of a recorded payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusReject  PaymentStatus = "Reject"
)

// Payment records money handed over against an invoice. A payment stays
// Pending until an authorized approver verifies it; several Paid
// payments may together cover one invoice.
type Payment struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	InvoiceID  int64           `gorm:"index;not null" json:"invoice_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	ProofURL   string          `gorm:"size:512" json:"proof_url"`
	Status     PaymentStatus   `gorm:"size:16;not null;default:Pending;index" json:"status"`
	ApprovedBy *int64          `json:"approved_by"`
	Note       string          `gorm:"size:256" json:"note"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`

	// Associations
	Invoice Invoice `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
