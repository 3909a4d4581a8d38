package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dorm-manager-backend/internal/billing"
	"dorm-manager-backend/internal/model"
)

// Sentinel errors for domain rule violations. Handlers map these to
// HTTP statuses; everything else is a persistence failure.
var (
	ErrNotFound           = errors.New("record not found")
	ErrRoomOccupied       = errors.New("room is already occupied")
	ErrActiveContract     = errors.New("tenant already has an active contract")
	ErrDuplicateInvoice   = errors.New("invoice already exists for this contract and period")
	ErrNoCurrentReading   = errors.New("no meter reading recorded for the billing period")
	ErrInvoiceNotBillable = errors.New("invoice is cancelled or already paid")
	ErrPaymentRejected    = errors.New("payment was rejected and cannot be verified")
	ErrPaymentVerified    = errors.New("payment is already verified and cannot be rejected")
	ErrContractInactive   = errors.New("contract is not active")
)

// Store defines the interface for all database operations that involve
// more than a single-row read or write. Simple listing stays in the
// handlers; everything transactional lives here.
type Store interface {
	DB() *gorm.DB

	// Settings
	Rates(ctx context.Context) (billing.Rates, error)

	// Meter readings
	PreviousReading(ctx context.Context, roomID int64, before time.Time) (*model.MeterReading, error)
	CreateReading(ctx context.Context, reading *model.MeterReading) error

	// Contracts
	MoveIn(ctx context.Context, contract *model.Contract) error
	Terminate(ctx context.Context, contractID int64, endDate time.Time) (*model.Contract, error)

	// Invoices
	CreateInvoice(ctx context.Context, p CreateInvoiceParams) (*model.Invoice, error)
	CancelInvoice(ctx context.Context, invoiceID int64) (*model.Invoice, error)
	MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error)

	// Payments
	RecordPayment(ctx context.Context, payment *model.Payment) error
	VerifyPayment(ctx context.Context, paymentID, approverID int64) (*PaymentResult, error)
	RejectPayment(ctx context.Context, paymentID, approverID int64) (*model.Payment, error)

	// Users
	SetUserActive(ctx context.Context, userID int64, active bool) (*model.User, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for read-only handler queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// notFound converts gorm's record-not-found into the store sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
