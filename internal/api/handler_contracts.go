package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
)

// GetContracts handles the GET /api/contracts request.
func GetContracts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Tenant").Preload("Room").Order("created_at DESC")
		if c.Query("active") == "true" {
			query = query.Where("active")
		}

		var contracts []model.Contract
		if err := query.Find(&contracts).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contracts"})
			return
		}
		c.JSON(http.StatusOK, contracts)
	}
}

// GetContract handles the GET /api/contracts/:id request.
func GetContract(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var contract model.Contract
		if err := db.Preload("Tenant").Preload("Room").First(&contract, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

type contractRequest struct {
	TenantID  int64           `json:"tenant_id" binding:"required"`
	RoomID    int64           `json:"room_id" binding:"required"`
	RentPrice decimal.Decimal `json:"rent_price" binding:"required"`
	Deposit   decimal.Decimal `json:"deposit"`
	StartDate time.Time       `json:"start_date" binding:"required"`
	EndDate   *time.Time      `json:"end_date"`
}

// CreateContract handles the POST /api/contracts request: the move-in.
// The store transaction occupies the room, activates the tenant and
// refuses double move-ins.
func (h *Handler) CreateContract(c *gin.Context) {
	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract := model.Contract{
		TenantID:  req.TenantID,
		RoomID:    req.RoomID,
		RentPrice: req.RentPrice,
		Deposit:   req.Deposit,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := h.store.MoveIn(c.Request.Context(), &contract); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

type terminateRequest struct {
	EndDate *time.Time `json:"end_date"`
}

// TerminateContract handles the POST /api/contracts/:id/terminate
// request: the move-out. The end date defaults to now.
func (h *Handler) TerminateContract(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req terminateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	endDate := time.Now().UTC()
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	contract, err := h.store.Terminate(c.Request.Context(), id, endDate)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}
