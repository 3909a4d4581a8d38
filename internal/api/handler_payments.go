package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
	"dorm-manager-backend/internal/mw"
)

// GetPayments handles the GET /api/payments request with optional
// invoice and status filters.
func GetPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at DESC")
		if invoiceID := c.Query("invoice_id"); invoiceID != "" {
			query = query.Where("invoice_id = ?", invoiceID)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var payments []model.Payment
		if err := query.Find(&payments).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payments"})
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

type createPaymentRequest struct {
	InvoiceID int64           `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	PaidAt    *time.Time      `json:"paid_at"`
	ProofURL  string          `json:"proof_url"`
	Note      string          `json:"note"`
}

// CreatePayment handles the POST /api/payments request. The payment
// stays Pending until an approver verifies it.
func (h *Handler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment := model.Payment{
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		PaidAt:    paidAt,
		ProofURL:  req.ProofURL,
		Note:      req.Note,
	}
	if err := h.store.RecordPayment(c.Request.Context(), &payment); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// VerifyPayment handles the POST /api/payments/:id/verify request.
// Verification is idempotent; the tenant is notified the one time the
// invoice transitions to Paid.
func (h *Handler) VerifyPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	approver := mw.CurrentUser(c)
	result, err := h.store.VerifyPayment(c.Request.Context(), id, approver.ID)
	if err != nil {
		storeError(c, err)
		return
	}

	if result.InvoicePaid {
		if userID := h.tenantUserForContract(result.Invoice.ContractID); userID != nil {
			h.notify(userID, fmt.Sprintf("Invoice %04d-%02d is fully paid. Thank you!",
				result.Invoice.Year, result.Invoice.Month))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":      result.Payment,
		"invoice_paid": result.InvoicePaid,
	})
}

// RejectPayment handles the POST /api/payments/:id/reject request.
func (h *Handler) RejectPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	approver := mw.CurrentUser(c)
	payment, err := h.store.RejectPayment(c.Request.Context(), id, approver.ID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
