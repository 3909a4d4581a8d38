package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dorm-manager-backend/internal/model"
)

// newTestDB opens a per-test in-memory SQLite database with the full
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Room{},
		&model.Tenant{},
		&model.Contract{},
		&model.MeterReading{},
		&model.Invoice{},
		&model.Payment{},
		&model.MaintenanceRequest{},
		&model.Setting{},
		&model.PushSubscription{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// seedBilling prepares room 404 with an active contract and the rate
// settings from the reference scenario.
func seedBilling(t *testing.T, db *gorm.DB) (room model.Room, contract model.Contract) {
	t.Helper()

	room = model.Room{RoomNumber: "404", Floor: 4, Type: model.RoomTypeAC, Price: d("4500"), Status: model.RoomStatusOccupied}
	require.NoError(t, db.Create(&room).Error)

	tenant := model.Tenant{Name: "Somchai", Status: model.TenantStatusActive, RoomID: &room.ID}
	require.NoError(t, db.Create(&tenant).Error)

	contract = model.Contract{
		TenantID:  tenant.ID,
		RoomID:    room.ID,
		RentPrice: d("4500"),
		Deposit:   d("9000"),
		StartDate: date(2025, time.January, 1),
		Active:    true,
	}
	require.NoError(t, db.Create(&contract).Error)

	settings := []model.Setting{
		{Key: SettingWaterUnitPrice, Value: "18"},
		{Key: SettingElectricUnitPrice, Value: "8"},
		{Key: SettingCommonFee, Value: "300"},
	}
	require.NoError(t, db.Create(&settings).Error)

	return room, contract
}

func TestCreateInvoiceReferenceScenario(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room, contract := seedBilling(t, db)

	readings := []model.MeterReading{
		{RoomID: room.ID, ReadingDate: date(2025, time.May, 28), Water: d("100"), Electric: d("200"), RecordedBy: 1},
		{RoomID: room.ID, ReadingDate: date(2025, time.June, 28), Water: d("135"), Electric: d("250"), RecordedBy: 1},
	}
	require.NoError(t, db.Create(&readings).Error)

	invoice, err := s.CreateInvoice(ctx, CreateInvoiceParams{
		ContractID: contract.ID,
		Month:      6,
		Year:       2025,
		DueDate:    date(2025, time.July, 5),
		IssuedAt:   date(2025, time.June, 28),
	})
	require.NoError(t, err)

	assert.True(t, invoice.WaterTotal.Equal(d("630")), "water total %s", invoice.WaterTotal)
	assert.True(t, invoice.ElectricTotal.Equal(d("400")), "electric total %s", invoice.ElectricTotal)
	assert.True(t, invoice.RentTotal.Equal(d("4500")))
	assert.True(t, invoice.TotalAmount.Equal(d("5830")), "total %s", invoice.TotalAmount)
	assert.Equal(t, model.InvoiceStatusPending, invoice.Status)
	assert.True(t, invoice.PrevWater.Equal(d("100")))
	assert.True(t, invoice.CurrWater.Equal(d("135")))
}

func TestCreateInvoiceSnapshotSurvivesSettingsChange(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room, contract := seedBilling(t, db)

	readings := []model.MeterReading{
		{RoomID: room.ID, ReadingDate: date(2025, time.May, 28), Water: d("100"), Electric: d("200"), RecordedBy: 1},
		{RoomID: room.ID, ReadingDate: date(2025, time.June, 28), Water: d("135"), Electric: d("250"), RecordedBy: 1},
	}
	require.NoError(t, db.Create(&readings).Error)

	invoice, err := s.CreateInvoice(ctx, CreateInvoiceParams{
		ContractID: contract.ID, Month: 6, Year: 2025,
		DueDate: date(2025, time.July, 5), IssuedAt: date(2025, time.June, 28),
	})
	require.NoError(t, err)

	// Raise the water price after the invoice was issued.
	require.NoError(t, db.Model(&model.Setting{}).
		Where("key = ?", SettingWaterUnitPrice).
		Update("value", "99").Error)

	var reloaded model.Invoice
	require.NoError(t, db.First(&reloaded, invoice.ID).Error)
	assert.True(t, reloaded.WaterUnitPrice.Equal(d("18")), "snapshot price changed to %s", reloaded.WaterUnitPrice)
	assert.True(t, reloaded.TotalAmount.Equal(d("5830")))
}

func TestCreateInvoiceDuplicatePeriod(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room, contract := seedBilling(t, db)
	reading := model.MeterReading{RoomID: room.ID, ReadingDate: date(2025, time.June, 28), Water: d("135"), Electric: d("250"), RecordedBy: 1}
	require.NoError(t, db.Create(&reading).Error)

	params := CreateInvoiceParams{
		ContractID: contract.ID, Month: 6, Year: 2025,
		DueDate: date(2025, time.July, 5), IssuedAt: date(2025, time.June, 28),
	}
	_, err := s.CreateInvoice(ctx, params)
	require.NoError(t, err)

	_, err = s.CreateInvoice(ctx, params)
	assert.ErrorIs(t, err, ErrDuplicateInvoice)
}

func TestCreateInvoiceFirstReadingBillsZeroUsage(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room, contract := seedBilling(t, db)
	reading := model.MeterReading{RoomID: room.ID, ReadingDate: date(2025, time.June, 28), Water: d("135"), Electric: d("250"), RecordedBy: 1}
	require.NoError(t, db.Create(&reading).Error)

	invoice, err := s.CreateInvoice(ctx, CreateInvoiceParams{
		ContractID: contract.ID, Month: 6, Year: 2025,
		DueDate: date(2025, time.July, 5), IssuedAt: date(2025, time.June, 28),
	})
	require.NoError(t, err)

	assert.True(t, invoice.WaterTotal.IsZero())
	assert.True(t, invoice.ElectricTotal.IsZero())
	// Rent 4500 + common fee 300 only.
	assert.True(t, invoice.TotalAmount.Equal(d("4800")), "total %s", invoice.TotalAmount)
}

func TestCreateInvoiceNoReadingInPeriod(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)

	_, contract := seedBilling(t, db)

	_, err := s.CreateInvoice(context.Background(), CreateInvoiceParams{
		ContractID: contract.ID, Month: 6, Year: 2025,
		DueDate: date(2025, time.July, 5), IssuedAt: date(2025, time.June, 28),
	})
	assert.ErrorIs(t, err, ErrNoCurrentReading)
}

func createTestInvoice(t *testing.T, db *gorm.DB, s Store) model.Invoice {
	t.Helper()

	room, contract := seedBilling(t, db)
	readings := []model.MeterReading{
		{RoomID: room.ID, ReadingDate: date(2025, time.May, 28), Water: d("100"), Electric: d("200"), RecordedBy: 1},
		{RoomID: room.ID, ReadingDate: date(2025, time.June, 28), Water: d("135"), Electric: d("250"), RecordedBy: 1},
	}
	require.NoError(t, db.Create(&readings).Error)

	invoice, err := s.CreateInvoice(context.Background(), CreateInvoiceParams{
		ContractID: contract.ID, Month: 6, Year: 2025,
		DueDate: date(2025, time.July, 5), IssuedAt: date(2025, time.June, 28),
	})
	require.NoError(t, err)
	return *invoice
}

func TestVerifyPaymentTransitionsInvoiceExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)

	payment := model.Payment{InvoiceID: invoice.ID, Amount: d("5830"), PaidAt: date(2025, time.July, 1)}
	require.NoError(t, s.RecordPayment(ctx, &payment))
	assert.Equal(t, model.PaymentStatusPending, payment.Status)

	result, err := s.VerifyPayment(ctx, payment.ID, 99)
	require.NoError(t, err)
	assert.True(t, result.InvoicePaid, "first verification should pay the invoice")

	var reloaded model.Invoice
	require.NoError(t, db.First(&reloaded, invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusPaid, reloaded.Status)

	// Idempotent re-verification: no error, no second transition.
	result, err = s.VerifyPayment(ctx, payment.ID, 99)
	require.NoError(t, err)
	assert.False(t, result.InvoicePaid)
	assert.Equal(t, model.PaymentStatusPaid, result.Payment.Status)
}

func TestVerifyPaymentPartialPaymentsAccumulate(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)

	first := model.Payment{InvoiceID: invoice.ID, Amount: d("3000"), PaidAt: date(2025, time.July, 1)}
	second := model.Payment{InvoiceID: invoice.ID, Amount: d("2830"), PaidAt: date(2025, time.July, 2)}
	require.NoError(t, s.RecordPayment(ctx, &first))
	require.NoError(t, s.RecordPayment(ctx, &second))

	result, err := s.VerifyPayment(ctx, first.ID, 99)
	require.NoError(t, err)
	assert.False(t, result.InvoicePaid, "3000 of 5830 should not pay the invoice")

	var reloaded model.Invoice
	require.NoError(t, db.First(&reloaded, invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusPending, reloaded.Status)

	result, err = s.VerifyPayment(ctx, second.ID, 99)
	require.NoError(t, err)
	assert.True(t, result.InvoicePaid, "cumulative 5830 should pay the invoice")

	require.NoError(t, db.First(&reloaded, invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusPaid, reloaded.Status)
}

func TestRejectPaymentLeavesInvoiceUnpaid(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)

	payment := model.Payment{InvoiceID: invoice.ID, Amount: d("5830"), PaidAt: date(2025, time.July, 1)}
	require.NoError(t, s.RecordPayment(ctx, &payment))

	rejected, err := s.RejectPayment(ctx, payment.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusReject, rejected.Status)

	var reloaded model.Invoice
	require.NoError(t, db.First(&reloaded, invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusPending, reloaded.Status)

	// A rejected payment cannot later be verified.
	_, err = s.VerifyPayment(ctx, payment.ID, 99)
	assert.ErrorIs(t, err, ErrPaymentRejected)
}

func TestRejectVerifiedPayment(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)

	payment := model.Payment{InvoiceID: invoice.ID, Amount: d("5830"), PaidAt: date(2025, time.July, 1)}
	require.NoError(t, s.RecordPayment(ctx, &payment))

	_, err := s.VerifyPayment(ctx, payment.ID, 99)
	require.NoError(t, err)

	// Verification is final; the money has been accepted against the
	// invoice and rejecting it now would desync the paid total.
	_, err = s.RejectPayment(ctx, payment.ID, 99)
	assert.ErrorIs(t, err, ErrPaymentVerified)

	var reloaded model.Payment
	require.NoError(t, db.First(&reloaded, payment.ID).Error)
	assert.Equal(t, model.PaymentStatusPaid, reloaded.Status)
}

func TestRecordPaymentAgainstCancelledInvoice(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)
	_, err := s.CancelInvoice(ctx, invoice.ID)
	require.NoError(t, err)

	payment := model.Payment{InvoiceID: invoice.ID, Amount: d("5830"), PaidAt: date(2025, time.July, 1)}
	err = s.RecordPayment(ctx, &payment)
	assert.ErrorIs(t, err, ErrInvoiceNotBillable)
}

func TestCancelInvoiceRefusesPaid(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)
	payment := model.Payment{InvoiceID: invoice.ID, Amount: d("5830"), PaidAt: date(2025, time.July, 1)}
	require.NoError(t, s.RecordPayment(ctx, &payment))
	_, err := s.VerifyPayment(ctx, payment.ID, 99)
	require.NoError(t, err)

	_, err = s.CancelInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotBillable)
}

func TestMarkOverdueInvoices(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	invoice := createTestInvoice(t, db, s)

	// Before the due date nothing changes.
	n, err := s.MarkOverdueInvoices(ctx, date(2025, time.July, 4))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.MarkOverdueInvoices(ctx, date(2025, time.July, 6))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var reloaded model.Invoice
	require.NoError(t, db.First(&reloaded, invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusOverdue, reloaded.Status)

	// The sweep is idempotent.
	n, err = s.MarkOverdueInvoices(ctx, date(2025, time.July, 7))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMoveInGuards(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room := model.Room{RoomNumber: "101", Floor: 1, Type: model.RoomTypeFan, Price: d("3000"), Status: model.RoomStatusVacant}
	require.NoError(t, db.Create(&room).Error)
	tenant := model.Tenant{Name: "Malee", Status: model.TenantStatusPending}
	require.NoError(t, db.Create(&tenant).Error)

	contract := model.Contract{
		TenantID: tenant.ID, RoomID: room.ID,
		RentPrice: d("3000"), Deposit: d("6000"),
		StartDate: date(2025, time.June, 1),
	}
	require.NoError(t, s.MoveIn(ctx, &contract))

	var reloadedRoom model.Room
	require.NoError(t, db.First(&reloadedRoom, room.ID).Error)
	assert.Equal(t, model.RoomStatusOccupied, reloadedRoom.Status)

	var reloadedTenant model.Tenant
	require.NoError(t, db.First(&reloadedTenant, tenant.ID).Error)
	assert.Equal(t, model.TenantStatusActive, reloadedTenant.Status)
	require.NotNil(t, reloadedTenant.RoomID)
	assert.Equal(t, room.ID, *reloadedTenant.RoomID)

	// Same tenant cannot take a second room while the contract is active.
	otherRoom := model.Room{RoomNumber: "102", Floor: 1, Type: model.RoomTypeFan, Price: d("3000"), Status: model.RoomStatusVacant}
	require.NoError(t, db.Create(&otherRoom).Error)
	second := model.Contract{
		TenantID: tenant.ID, RoomID: otherRoom.ID,
		RentPrice: d("3000"), Deposit: d("6000"),
		StartDate: date(2025, time.July, 1),
	}
	assert.ErrorIs(t, s.MoveIn(ctx, &second), ErrActiveContract)

	// An occupied room cannot be taken by another tenant.
	otherTenant := model.Tenant{Name: "Anan", Status: model.TenantStatusPending}
	require.NoError(t, db.Create(&otherTenant).Error)
	third := model.Contract{
		TenantID: otherTenant.ID, RoomID: room.ID,
		RentPrice: d("3000"), Deposit: d("6000"),
		StartDate: date(2025, time.July, 1),
	}
	assert.ErrorIs(t, s.MoveIn(ctx, &third), ErrRoomOccupied)
}

func TestTerminateContract(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room := model.Room{RoomNumber: "201", Floor: 2, Type: model.RoomTypeAC, Price: d("4000"), Status: model.RoomStatusVacant}
	require.NoError(t, db.Create(&room).Error)
	tenant := model.Tenant{Name: "Nok", Status: model.TenantStatusPending}
	require.NoError(t, db.Create(&tenant).Error)

	contract := model.Contract{
		TenantID: tenant.ID, RoomID: room.ID,
		RentPrice: d("4000"), Deposit: d("8000"),
		StartDate: date(2025, time.January, 1),
	}
	require.NoError(t, s.MoveIn(ctx, &contract))

	terminated, err := s.Terminate(ctx, contract.ID, date(2025, time.June, 30))
	require.NoError(t, err)
	assert.False(t, terminated.Active)

	var reloadedRoom model.Room
	require.NoError(t, db.First(&reloadedRoom, room.ID).Error)
	assert.Equal(t, model.RoomStatusVacant, reloadedRoom.Status)

	var reloadedTenant model.Tenant
	require.NoError(t, db.First(&reloadedTenant, tenant.ID).Error)
	assert.Equal(t, model.TenantStatusMovingOut, reloadedTenant.Status)
	assert.Nil(t, reloadedTenant.RoomID)

	// Terminating twice fails.
	_, err = s.Terminate(ctx, contract.ID, date(2025, time.July, 1))
	assert.ErrorIs(t, err, ErrContractInactive)
}

func TestPreviousReading(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	room := model.Room{RoomNumber: "301", Floor: 3, Type: model.RoomTypeAC, Price: d("4000"), Status: model.RoomStatusVacant}
	require.NoError(t, db.Create(&room).Error)

	readings := []model.MeterReading{
		{RoomID: room.ID, ReadingDate: date(2025, time.April, 28), Water: d("80"), Electric: d("150"), RecordedBy: 1},
		{RoomID: room.ID, ReadingDate: date(2025, time.May, 28), Water: d("100"), Electric: d("200"), RecordedBy: 1},
	}
	require.NoError(t, db.Create(&readings).Error)

	prev, err := s.PreviousReading(ctx, room.ID, date(2025, time.June, 28))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.True(t, prev.Water.Equal(d("100")), "latest reading before the date wins")

	prev, err = s.PreviousReading(ctx, room.ID, date(2025, time.April, 1))
	require.NoError(t, err)
	assert.Nil(t, prev, "no reading before the first one")
}
