package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/model"
)

// PaymentResult is the outcome of a verification. InvoicePaid is true
// only when this verification transitioned the invoice to Paid, so the
// caller can notify exactly once.
type PaymentResult struct {
	Payment     *model.Payment
	Invoice     *model.Invoice
	InvoicePaid bool
}

// RecordPayment stores a payment against an invoice. The payment stays
// Pending until an approver verifies it. Cancelled invoices refuse new
// payments.
func (s *gormStore) RecordPayment(ctx context.Context, payment *model.Payment) error {
	var invoice model.Invoice
	if err := s.db.WithContext(ctx).First(&invoice, payment.InvoiceID).Error; err != nil {
		return notFound(err)
	}
	if invoice.Status == model.InvoiceStatusCancelled {
		return ErrInvoiceNotBillable
	}

	payment.Status = model.PaymentStatusPending
	payment.ApprovedBy = nil
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record payment for invoice %d: %w", payment.InvoiceID, err)
	}
	return nil
}

// VerifyPayment marks a payment Paid and, when the sum of paid payments
// covers the invoice total, transitions the invoice to Paid exactly
// once. Re-verifying an already-paid payment is a no-op, not an error.
// A rejected payment cannot be verified.
func (s *gormStore) VerifyPayment(ctx context.Context, paymentID, approverID int64) (*PaymentResult, error) {
	result := &PaymentResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment model.Payment
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return notFound(err)
		}

		var invoice model.Invoice
		if err := tx.First(&invoice, payment.InvoiceID).Error; err != nil {
			return notFound(err)
		}

		switch payment.Status {
		case model.PaymentStatusPaid:
			// Idempotent re-verification.
			result.Payment = &payment
			result.Invoice = &invoice
			return nil
		case model.PaymentStatusReject:
			return ErrPaymentRejected
		}

		updates := map[string]any{
			"status":      model.PaymentStatusPaid,
			"approved_by": approverID,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to verify payment %d: %w", paymentID, err)
		}

		paidTotal, err := sumPaidPayments(tx, invoice.ID)
		if err != nil {
			return err
		}

		if paidTotal.GreaterThanOrEqual(invoice.TotalAmount) && invoice.Status != model.InvoiceStatusPaid {
			if err := tx.Model(&invoice).Update("status", model.InvoiceStatusPaid).Error; err != nil {
				return fmt.Errorf("failed to mark invoice %d paid: %w", invoice.ID, err)
			}
			result.InvoicePaid = true
		}

		result.Payment = &payment
		result.Invoice = &invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RejectPayment marks a pending payment rejected; the invoice is left
// untouched. Already-rejected payments are a no-op.
func (s *gormStore) RejectPayment(ctx context.Context, paymentID, approverID int64) (*model.Payment, error) {
	var payment model.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return notFound(err)
		}
		if payment.Status == model.PaymentStatusReject {
			return nil
		}
		if payment.Status == model.PaymentStatusPaid {
			return ErrPaymentVerified
		}

		updates := map[string]any{
			"status":      model.PaymentStatusReject,
			"approved_by": approverID,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to reject payment %d: %w", paymentID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// sumPaidPayments totals the verified payments against an invoice using
// decimal arithmetic in Go rather than SQL SUM, so sqlite and postgres
// agree on exact cents.
func sumPaidPayments(tx *gorm.DB, invoiceID int64) (decimal.Decimal, error) {
	var payments []model.Payment
	if err := tx.Where("invoice_id = ? AND status = ?", invoiceID, model.PaymentStatusPaid).
		Find(&payments).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments for invoice %d: %w", invoiceID, err)
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}
