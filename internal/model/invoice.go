package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "Pending"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// Invoice is a billing document for one contract covering one period.
// Meter values, unit prices and flat fees are snapshotted at creation so
// that later Settings changes never alter historical invoices. Snapshot
// fields are immutable after create; corrections are a cancellation plus
// a replacement invoice, never in-place mutation.
type Invoice struct {
	ID         int64 `gorm:"primaryKey" json:"id"`
	ContractID int64 `gorm:"index;not null;uniqueIndex:idx_invoice_contract_period" json:"contract_id"`
	Month      int   `gorm:"not null;uniqueIndex:idx_invoice_contract_period" json:"month"`
	Year       int   `gorm:"not null;uniqueIndex:idx_invoice_contract_period" json:"year"`

	// Meter snapshot
	PrevWater    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"prev_water"`
	CurrWater    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"curr_water"`
	PrevElectric decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"prev_electric"`
	CurrElectric decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"curr_electric"`

	// Rate snapshot
	WaterUnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"water_unit_price"`
	ElectricUnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"electric_unit_price"`
	CommonFee         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"common_fee"`
	ParkingFee        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"parking_fee"`
	InternetFee       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"internet_fee"`
	CleaningFee       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cleaning_fee"`
	OtherFees         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"other_fees"`

	// Computed totals
	RentTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rent_total"`
	WaterTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"water_total"`
	ElectricTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"electric_total"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	Status    InvoiceStatus `gorm:"size:16;not null;default:Pending;index" json:"status"`
	DueDate   time.Time     `gorm:"not null" json:"due_date"`
	IssuedAt  time.Time     `gorm:"not null" json:"issued_at"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`

	// Associations
	Contract Contract  `gorm:"constraint:OnDelete:CASCADE" json:"contract,omitempty"`
	Payments []Payment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}
