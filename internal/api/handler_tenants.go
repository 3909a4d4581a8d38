package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
)

// GetTenants handles the GET /api/tenants request.
func GetTenants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Room").Order("name")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var tenants []model.Tenant
		if err := query.Find(&tenants).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tenants"})
			return
		}
		c.JSON(http.StatusOK, tenants)
	}
}

// GetTenant handles the GET /api/tenants/:id request.
func GetTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var tenant model.Tenant
		if err := db.Preload("Room").First(&tenant, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, tenant)
	}
}

type tenantRequest struct {
	Name   string             `json:"name" binding:"required"`
	Phone  string             `json:"phone"`
	Email  string             `json:"email" binding:"omitempty,email"`
	UserID *int64             `json:"user_id"`
	Status model.TenantStatus `json:"status" binding:"omitempty,oneof=Active Pending MovingOut"`
}

// CreateTenant handles the POST /api/tenants request. New tenants start
// Pending; room assignment happens through the contract flow.
func (h *Handler) CreateTenant(c *gin.Context) {
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenant := model.Tenant{
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		UserID: req.UserID,
		Status: model.TenantStatusPending,
	}
	if err := h.store.DB().Create(&tenant).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

// UpdateTenant handles the PUT /api/tenants/:id request. Room linkage
// is owned by the contract flow and cannot be edited here.
func (h *Handler) UpdateTenant(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req tenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tenant model.Tenant
	if err := h.store.DB().First(&tenant, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updates := map[string]any{
		"name":    req.Name,
		"phone":   req.Phone,
		"email":   req.Email,
		"user_id": req.UserID,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if err := h.store.DB().Model(&tenant).Updates(updates).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// DeleteTenant handles the DELETE /api/tenants/:id request. Tenants
// with an active contract cannot be deleted.
func (h *Handler) DeleteTenant(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var tenant model.Tenant
	if err := h.store.DB().First(&tenant, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var activeContracts int64
	if err := h.store.DB().Model(&model.Contract{}).
		Where("tenant_id = ? AND active", id).
		Count(&activeContracts).Error; err != nil {
		storeError(c, err)
		return
	}
	if activeContracts > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "tenant has an active contract"})
		return
	}

	if err := h.store.DB().Delete(&tenant).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
