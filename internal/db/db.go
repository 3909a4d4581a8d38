package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dorm-manager-backend/config"
	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
}

// Seed inserts the built-in roles and a first admin account when the
// users table is empty. Existing installations are left untouched.
func Seed(db *gorm.DB, adminPassword string) error {
	var userCount int64
	if err := db.Model(&model.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}
	if adminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be set for the first boot")
	}

	roles := []model.Role{
		{
			Name: "Administrator", Key: auth.RoleKeyAdmin,
			ManageRooms: true, ManageTenants: true, ManageContracts: true,
			RecordReadings: true, ManageInvoices: true, VerifyPayments: true,
			ManageMaintenance: true, ManageUsers: true, ManageRoles: true,
			ManageSettings: true,
		},
		{
			Name: "Staff", Key: auth.RoleKeyStaff,
			ManageRooms: true, ManageTenants: true, ManageContracts: true,
			RecordReadings: true, ManageInvoices: true, VerifyPayments: true,
			ManageMaintenance: true,
		},
		{
			Name: "Technician", Key: auth.RoleKeyTechnician,
			ManageMaintenance: true, TechnicianJobs: true,
		},
		{
			Name: "Tenant", Key: auth.RoleKeyTenant,
			TenantPortal: true,
		},
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&roles).Error; err != nil {
			return fmt.Errorf("failed to seed roles: %w", err)
		}

		admin := model.User{
			Username:     "admin",
			PasswordHash: hash,
			DisplayName:  "Administrator",
			RoleID:       roles[0].ID,
			Active:       true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}

		log.Println("Seeded built-in roles and the admin account.")
		return nil
	})
}
