package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceStatus is the workflow state of a maintenance request.
type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "pending"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

// MaintenanceRequest is a repair ticket reported for a room. AssignedTo
// is the technician user working the ticket, nil until assigned.
type MaintenanceRequest struct {
	ID                 int64             `gorm:"primaryKey" json:"id"`
	RoomID             int64             `gorm:"index;not null" json:"room_id"`
	ReportedBy         int64             `gorm:"not null" json:"reported_by"`
	Title              string            `gorm:"size:128;not null" json:"title"`
	Description        string            `gorm:"size:1024" json:"description"`
	AssignedTo         *int64            `gorm:"index" json:"assigned_to"`
	Status             MaintenanceStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	Expense            *decimal.Decimal  `gorm:"type:numeric(12,2)" json:"expense"`
	CompletionProofURL string            `gorm:"size:512" json:"completion_proof_url"`
	CreatedAt          time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null" json:"updated_at"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
