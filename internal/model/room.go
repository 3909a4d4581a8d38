package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoomType distinguishes air-conditioned rooms from fan rooms.
type RoomType string

const (
	RoomTypeAC  RoomType = "AC"
	RoomTypeFan RoomType = "Fan"
)

// RoomStatus is the occupancy state of a room.
type RoomStatus string

const (
	RoomStatusVacant   RoomStatus = "Vacant"
	RoomStatusOccupied RoomStatus = "Occupied"
)

// Room represents a single rentable room in the dormitory.
type Room struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	RoomNumber string          `gorm:"uniqueIndex;size:32;not null" json:"room_number"`
	Building   string          `gorm:"size:32" json:"building"`
	Floor      int             `gorm:"not null" json:"floor"`
	Type       RoomType        `gorm:"size:8;not null" json:"type"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Status     RoomStatus      `gorm:"size:16;not null;default:Vacant" json:"status"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`

	// Associations
	MeterReadings []MeterReading `gorm:"foreignKey:RoomID" json:"-"`
}
