package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract binds a tenant to a room with agreed rent and deposit for a
// date range. At most one contract per tenant may be active; the store
// enforces this with a check inside the move-in transaction.
type Contract struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	TenantID  int64           `gorm:"index;not null" json:"tenant_id"`
	RoomID    int64           `gorm:"index;not null" json:"room_id"`
	RentPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rent_price"`
	Deposit   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"deposit"`
	StartDate time.Time       `gorm:"not null" json:"start_date"`
	EndDate   *time.Time      `json:"end_date"`
	Active    bool            `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`

	// Associations
	Tenant Tenant `gorm:"constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Room   Room   `gorm:"constraint:OnDelete:CASCADE" json:"room,omitempty"`
}
