package auth

import "dorm-manager-backend/internal/model"

// Capability names one guarded functional area. Every protected route
// is gated by exactly one capability.
type Capability string

const (
	CapManageRooms       Capability = "manage_rooms"
	CapManageTenants     Capability = "manage_tenants"
	CapManageContracts   Capability = "manage_contracts"
	CapRecordReadings    Capability = "record_readings"
	CapManageInvoices    Capability = "manage_invoices"
	CapVerifyPayments    Capability = "verify_payments"
	CapManageMaintenance Capability = "manage_maintenance"
	CapManageUsers       Capability = "manage_users"
	CapManageRoles       Capability = "manage_roles"
	CapManageSettings    Capability = "manage_settings"
	CapTenantPortal      Capability = "tenant_portal"
	CapTechnicianJobs    Capability = "technician_jobs"
)

// Well-known role keys used for seeding and front-door redirection.
const (
	RoleKeyAdmin      = "admin"
	RoleKeyStaff      = "staff"
	RoleKeyTechnician = "technician"
	RoleKeyTenant     = "tenant"
)

// RoleAllows reports whether the role grants the capability.
func RoleAllows(r model.Role, c Capability) bool {
	switch c {
	case CapManageRooms:
		return r.ManageRooms
	case CapManageTenants:
		return r.ManageTenants
	case CapManageContracts:
		return r.ManageContracts
	case CapRecordReadings:
		return r.RecordReadings
	case CapManageInvoices:
		return r.ManageInvoices
	case CapVerifyPayments:
		return r.VerifyPayments
	case CapManageMaintenance:
		return r.ManageMaintenance
	case CapManageUsers:
		return r.ManageUsers
	case CapManageRoles:
		return r.ManageRoles
	case CapManageSettings:
		return r.ManageSettings
	case CapTenantPortal:
		return r.TenantPortal
	case CapTechnicianJobs:
		return r.TechnicianJobs
	}
	return false
}

// RedirectFor maps a role key to the front-door landing path: tenants
// go to the tenant portal, technicians to their job list, every other
// authenticated role to the admin dashboard.
func RedirectFor(roleKey string) string {
	switch roleKey {
	case RoleKeyTenant:
		return "/portal"
	case RoleKeyTechnician:
		return "/jobs"
	default:
		return "/admin"
	}
}
