package model

import "time"

// TenantStatus tracks where a tenant is in their stay lifecycle.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "Active"
	TenantStatusPending   TenantStatus = "Pending"
	TenantStatusMovingOut TenantStatus = "MovingOut"
)

// Tenant represents a person renting (or about to rent) a room.
// RoomID is nil until the tenant has been assigned a room at move-in.
// UserID links the tenant to their portal login account, when one exists.
type Tenant struct {
	ID        int64        `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"size:128;not null" json:"name"`
	Phone     string       `gorm:"size:32" json:"phone"`
	Email     string       `gorm:"size:128" json:"email"`
	RoomID    *int64       `gorm:"index" json:"room_id"`
	UserID    *int64       `gorm:"index" json:"user_id"`
	Status    TenantStatus `gorm:"size:16;not null;default:Pending" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`

	// Associations
	Room *Room `gorm:"constraint:OnDelete:SET NULL" json:"room,omitempty"`
}
