package model

import "time"

// Role is a named permission set. Each capability is a plain boolean
// column so permission checks are a single row load, no joins.
type Role struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null" json:"name"`
	Key  string `gorm:"uniqueIndex;size:32;not null" json:"key"`

	ManageRooms       bool `gorm:"not null;default:false" json:"manage_rooms"`
	ManageTenants     bool `gorm:"not null;default:false" json:"manage_tenants"`
	ManageContracts   bool `gorm:"not null;default:false" json:"manage_contracts"`
	RecordReadings    bool `gorm:"not null;default:false" json:"record_readings"`
	ManageInvoices    bool `gorm:"not null;default:false" json:"manage_invoices"`
	VerifyPayments    bool `gorm:"not null;default:false" json:"verify_payments"`
	ManageMaintenance bool `gorm:"not null;default:false" json:"manage_maintenance"`
	ManageUsers       bool `gorm:"not null;default:false" json:"manage_users"`
	ManageRoles       bool `gorm:"not null;default:false" json:"manage_roles"`
	ManageSettings    bool `gorm:"not null;default:false" json:"manage_settings"`
	TenantPortal      bool `gorm:"not null;default:false" json:"tenant_portal"`
	TechnicianJobs    bool `gorm:"not null;default:false" json:"technician_jobs"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Users []User `gorm:"foreignKey:RoleID" json:"-"`
}

// User is an account that can log in. PasswordHash is a bcrypt hash and
// never leaves the server.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	DisplayName  string    `gorm:"size:128;not null" json:"display_name"`
	RoleID       int64     `gorm:"index;not null" json:"role_id"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Role Role `gorm:"constraint:OnDelete:RESTRICT" json:"role,omitempty"`
}
