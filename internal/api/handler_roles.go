package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
)

// RoleResponse is a role together with how many users hold it.
type RoleResponse struct {
	model.Role
	MemberCount int64 `json:"member_count"`
}

// GetRoles handles the GET /api/roles request.
func GetRoles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var roles []model.Role
		if err := db.Order("id").Find(&roles).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve roles"})
			return
		}

		// One aggregate query for the membership counts.
		type AggRow struct {
			RoleID int64
			Count  int64
		}
		var aggs []AggRow
		if err := db.
			Model(&model.User{}).
			Select("role_id as role_id, COUNT(*) as count").
			Group("role_id").
			Scan(&aggs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate users"})
			return
		}

		aggMap := make(map[int64]int64, len(aggs))
		for _, a := range aggs {
			aggMap[a.RoleID] = a.Count
		}

		responses := make([]RoleResponse, 0, len(roles))
		for _, role := range roles {
			responses = append(responses, RoleResponse{
				Role:        role,
				MemberCount: aggMap[role.ID],
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

type roleRequest struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required,lowercase"`

	ManageRooms       bool `json:"manage_rooms"`
	ManageTenants     bool `json:"manage_tenants"`
	ManageContracts   bool `json:"manage_contracts"`
	RecordReadings    bool `json:"record_readings"`
	ManageInvoices    bool `json:"manage_invoices"`
	VerifyPayments    bool `json:"verify_payments"`
	ManageMaintenance bool `json:"manage_maintenance"`
	ManageUsers       bool `json:"manage_users"`
	ManageRoles       bool `json:"manage_roles"`
	ManageSettings    bool `json:"manage_settings"`
	TenantPortal      bool `json:"tenant_portal"`
	TechnicianJobs    bool `json:"technician_jobs"`
}

func (req roleRequest) toModel() model.Role {
	return model.Role{
		Name:              req.Name,
		Key:               req.Key,
		ManageRooms:       req.ManageRooms,
		ManageTenants:     req.ManageTenants,
		ManageContracts:   req.ManageContracts,
		RecordReadings:    req.RecordReadings,
		ManageInvoices:    req.ManageInvoices,
		VerifyPayments:    req.VerifyPayments,
		ManageMaintenance: req.ManageMaintenance,
		ManageUsers:       req.ManageUsers,
		ManageRoles:       req.ManageRoles,
		ManageSettings:    req.ManageSettings,
		TenantPortal:      req.TenantPortal,
		TechnicianJobs:    req.TechnicianJobs,
	}
}

// CreateRole handles the POST /api/roles request.
func (h *Handler) CreateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.toModel()
	if err := h.store.DB().Create(&role).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// UpdateRole handles the PUT /api/roles/:id request. The change takes
// effect on the next request of every member, since permissions are
// loaded per request.
func (h *Handler) UpdateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var role model.Role
	if err := h.store.DB().First(&role, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updated := req.toModel()
	updated.ID = role.ID
	if err := h.store.DB().Model(&role).Select("*").Omit("id", "created_at").Updates(updated).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
