package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/mw"
	"dorm-manager-backend/internal/store"
)

// GetInvoices handles the GET /api/invoices request with optional
// contract and status filters.
func GetInvoices(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Payments").Order("year DESC, month DESC")
		if contractID := c.Query("contract_id"); contractID != "" {
			query = query.Where("contract_id = ?", contractID)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var invoices []model.Invoice
		if err := query.Find(&invoices).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoices"})
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

// GetInvoice handles the GET /api/invoices/:id request.
func GetInvoice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var invoice model.Invoice
		if err := db.Preload("Payments").Preload("Contract.Tenant").First(&invoice, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

type createInvoiceRequest struct {
	ContractID int64 `json:"contract_id" binding:"required"`
	Month      int   `json:"month" binding:"required,min=1,max=12"`
	Year       int   `json:"year" binding:"required,min=2000"`
}

// CreateInvoice handles the POST /api/invoices request. The store
// snapshots the meter pair and live rates inside one transaction; the
// tenant is notified through the push worker pool.
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	invoice, err := h.store.CreateInvoice(c.Request.Context(), store.CreateInvoiceParams{
		ContractID: req.ContractID,
		Month:      req.Month,
		Year:       req.Year,
		DueDate:    now.AddDate(0, 0, h.cfg.Billing.DueDays),
		IssuedAt:   now,
	})
	if err != nil {
		storeError(c, err)
		return
	}

	if userID := h.tenantUserForContract(invoice.ContractID); userID != nil {
		h.notify(userID, fmt.Sprintf("Invoice %04d-%02d issued: %s", invoice.Year, invoice.Month, invoice.TotalAmount.StringFixed(2)))
	}
	c.JSON(http.StatusCreated, invoice)
}

// CancelInvoice handles the POST /api/invoices/:id/cancel request.
func (h *Handler) CancelInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.store.CancelInvoice(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// PortalInvoices handles the GET /api/portal/invoices request: the
// tenant's own invoices, resolved through their linked tenant record.
func (h *Handler) PortalInvoices(c *gin.Context) {
	user := mw.CurrentUser(c)

	var tenant model.Tenant
	if err := h.store.DB().Where("user_id = ?", user.ID).First(&tenant).Error; err != nil {
		c.JSON(http.StatusOK, []model.Invoice{})
		return
	}

	var invoices []model.Invoice
	err := h.store.DB().
		Joins("JOIN contracts ON contracts.id = invoices.contract_id").
		Where("contracts.tenant_id = ?", tenant.ID).
		Preload("Payments").
		Order("year DESC, month DESC").
		Find(&invoices).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// tenantUserForContract resolves the portal account of the tenant on a
// contract, nil when the tenant has no linked login.
func (h *Handler) tenantUserForContract(contractID int64) *int64 {
	var contract model.Contract
	if err := h.store.DB().Preload("Tenant").First(&contract, contractID).Error; err != nil {
		return nil
	}
	return contract.Tenant.UserID
}
