package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterReading is one recorded water/electric counter pair for a room.
// Readings are ordered by ReadingDate per room; the "previous" reading
// for billing is the latest one strictly before the target date.
type MeterReading struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	RoomID      int64           `gorm:"index:idx_meter_room_date;not null" json:"room_id"`
	ReadingDate time.Time       `gorm:"index:idx_meter_room_date;not null" json:"reading_date"`
	Water       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"water"`
	Electric    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"electric"`
	RecordedBy  int64           `gorm:"not null" json:"recorded_by"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
