package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/mw"
)

// GetMaintenances handles the GET /api/maintenances request with
// optional status and room filters.
func GetMaintenances(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at DESC")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if roomID := c.Query("room_id"); roomID != "" {
			query = query.Where("room_id = ?", roomID)
		}

		var requests []model.MaintenanceRequest
		if err := query.Find(&requests).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve maintenance requests"})
			return
		}
		c.JSON(http.StatusOK, requests)
	}
}

// GetMaintenance handles the GET /api/maintenances/:id request.
func GetMaintenance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var request model.MaintenanceRequest
		if err := db.First(&request, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, request)
	}
}

type maintenanceRequest struct {
	RoomID      int64  `json:"room_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CreateMaintenance handles the POST /api/maintenances request.
func (h *Handler) CreateMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request := model.MaintenanceRequest{
		RoomID:      req.RoomID,
		ReportedBy:  mw.CurrentUser(c).ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.MaintenanceStatusPending,
	}
	if err := h.store.DB().Create(&request).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

type assignRequest struct {
	TechnicianID int64 `json:"technician_id" binding:"required"`
}

// AssignMaintenance handles the POST /api/maintenances/:id/assign
// request: hands the ticket to a technician and moves it in progress.
// The technician is notified through the push worker pool.
func (h *Handler) AssignMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request model.MaintenanceRequest
	if err := h.store.DB().First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if request.Status == model.MaintenanceStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "request is already completed"})
		return
	}

	var technician model.User
	if err := h.store.DB().Preload("Role").First(&technician, req.TechnicianID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "technician not found"})
		return
	}
	if !technician.Role.TechnicianJobs {
		c.JSON(http.StatusConflict, gin.H{"error": "user is not a technician"})
		return
	}

	updates := map[string]any{
		"assigned_to": req.TechnicianID,
		"status":      model.MaintenanceStatusInProgress,
	}
	if err := h.store.DB().Model(&request).Updates(updates).Error; err != nil {
		storeError(c, err)
		return
	}

	h.notify(&req.TechnicianID, "New maintenance job: "+request.Title)
	c.JSON(http.StatusOK, request)
}

type completeRequest struct {
	Expense            *decimal.Decimal `json:"expense"`
	CompletionProofURL string           `json:"completion_proof_url"`
}

// CompleteMaintenance handles the POST /api/maintenances/:id/complete request.
func (h *Handler) CompleteMaintenance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request model.MaintenanceRequest
	if err := h.store.DB().First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updates := map[string]any{
		"status":               model.MaintenanceStatusCompleted,
		"completion_proof_url": req.CompletionProofURL,
	}
	if req.Expense != nil {
		updates["expense"] = *req.Expense
	}
	if err := h.store.DB().Model(&request).Updates(updates).Error; err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// TechnicianJobs handles the GET /api/jobs request: the authenticated
// technician's open tickets.
func (h *Handler) TechnicianJobs(c *gin.Context) {
	user := mw.CurrentUser(c)

	var requests []model.MaintenanceRequest
	err := h.store.DB().
		Where("assigned_to = ? AND status <> ?", user.ID, model.MaintenanceStatusCompleted).
		Order("created_at").
		Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, requests)
}
