package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dorm-manager-backend/internal/billing"
	"dorm-manager-backend/internal/model"
)

// CreateInvoiceParams identifies the contract period to bill and when
// payment is due.
type CreateInvoiceParams struct {
	ContractID int64
	Month      int
	Year       int
	DueDate    time.Time
	IssuedAt   time.Time
}

// CreateInvoice assembles and persists one invoice in a single
// transaction: duplicate-period guard, meter pair lookup, live rate
// snapshot, decimal totals. The created invoice's snapshot fields are
// never updated afterwards; corrections go through CancelInvoice plus a
// replacement invoice.
func (s *gormStore) CreateInvoice(ctx context.Context, p CreateInvoiceParams) (*model.Invoice, error) {
	periodStart := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	var invoice model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract model.Contract
		if err := tx.First(&contract, p.ContractID).Error; err != nil {
			return notFound(err)
		}
		if !contract.Active {
			return ErrContractInactive
		}

		var dup int64
		if err := tx.Model(&model.Invoice{}).
			Where("contract_id = ? AND month = ? AND year = ?", p.ContractID, p.Month, p.Year).
			Count(&dup).Error; err != nil {
			return fmt.Errorf("failed to check for duplicate invoice: %w", err)
		}
		if dup > 0 {
			return ErrDuplicateInvoice
		}

		var curr model.MeterReading
		err := tx.Where("room_id = ? AND reading_date >= ? AND reading_date < ?",
			contract.RoomID, periodStart, periodEnd).
			Order("reading_date DESC").
			First(&curr).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCurrentReading
			}
			return fmt.Errorf("failed to load current reading for room %d: %w", contract.RoomID, err)
		}

		// The previous reading is the latest one strictly before the
		// current reading. A first-ever reading bills zero usage.
		pair := billing.MeterPair{
			PrevWater:    curr.Water,
			CurrWater:    curr.Water,
			PrevElectric: curr.Electric,
			CurrElectric: curr.Electric,
		}
		var prev model.MeterReading
		err = tx.Where("room_id = ? AND reading_date < ?", contract.RoomID, curr.ReadingDate).
			Order("reading_date DESC").
			First(&prev).Error
		switch {
		case err == nil:
			pair.PrevWater = prev.Water
			pair.PrevElectric = prev.Electric
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load previous reading for room %d: %w", contract.RoomID, err)
		}

		rates, err := loadRates(ctx, tx)
		if err != nil {
			return err
		}

		totals := billing.Assemble(contract.RentPrice, pair, rates)

		invoice = model.Invoice{
			ContractID:        p.ContractID,
			Month:             p.Month,
			Year:              p.Year,
			PrevWater:         pair.PrevWater,
			CurrWater:         pair.CurrWater,
			PrevElectric:      pair.PrevElectric,
			CurrElectric:      pair.CurrElectric,
			WaterUnitPrice:    rates.WaterUnitPrice,
			ElectricUnitPrice: rates.ElectricUnitPrice,
			CommonFee:         rates.CommonFee,
			ParkingFee:        rates.ParkingFee,
			InternetFee:       rates.InternetFee,
			CleaningFee:       rates.CleaningFee,
			OtherFees:         rates.OtherFees,
			RentTotal:         totals.RentTotal,
			WaterTotal:        totals.WaterTotal,
			ElectricTotal:     totals.ElectricTotal,
			TotalAmount:       totals.TotalAmount,
			Status:            model.InvoiceStatusPending,
			DueDate:           p.DueDate,
			IssuedAt:          p.IssuedAt,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CancelInvoice marks a pending or overdue invoice cancelled. Paid and
// already-cancelled invoices are refused; a paid invoice is corrected
// with an offsetting invoice, never mutated.
func (s *gormStore) CancelInvoice(ctx context.Context, invoiceID int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, invoiceID).Error; err != nil {
			return notFound(err)
		}
		if invoice.Status != model.InvoiceStatusPending && invoice.Status != model.InvoiceStatusOverdue {
			return ErrInvoiceNotBillable
		}
		if err := tx.Model(&invoice).Update("status", model.InvoiceStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel invoice %d: %w", invoiceID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkOverdueInvoices flips pending invoices past their due date to
// overdue and returns how many rows changed.
func (s *gormStore) MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("status = ? AND due_date < ?", model.InvoiceStatusPending, now).
		Update("status", model.InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", result.Error)
	}
	return result.RowsAffected, nil
}
