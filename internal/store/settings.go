package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dorm-manager-backend/internal/billing"
	"dorm-manager-backend/internal/model"
)

// Setting keys for the billing rate configuration.
const (
	SettingWaterUnitPrice    = "water_unit_price"
	SettingElectricUnitPrice = "electric_unit_price"
	SettingCommonFee         = "common_fee"
	SettingParkingFee        = "parking_fee"
	SettingInternetFee       = "internet_fee"
	SettingCleaningFee       = "cleaning_fee"
	SettingOtherFees         = "other_fees"
)

// Rates loads the live rate configuration from the settings table.
// Missing keys default to zero so a fresh install can issue rent-only
// invoices before prices are configured.
func (s *gormStore) Rates(ctx context.Context) (billing.Rates, error) {
	return loadRates(ctx, s.db)
}

func loadRates(ctx context.Context, db *gorm.DB) (billing.Rates, error) {
	var settings []model.Setting
	if err := db.WithContext(ctx).Find(&settings).Error; err != nil {
		return billing.Rates{}, fmt.Errorf("failed to load settings: %w", err)
	}

	values := make(map[string]decimal.Decimal, len(settings))
	for _, setting := range settings {
		v, err := decimal.NewFromString(setting.Value)
		if err != nil {
			return billing.Rates{}, fmt.Errorf("setting %q has non-numeric value %q: %w", setting.Key, setting.Value, err)
		}
		values[setting.Key] = v
	}

	return billing.Rates{
		WaterUnitPrice:    values[SettingWaterUnitPrice],
		ElectricUnitPrice: values[SettingElectricUnitPrice],
		CommonFee:         values[SettingCommonFee],
		ParkingFee:        values[SettingParkingFee],
		InternetFee:       values[SettingInternetFee],
		CleaningFee:       values[SettingCleaningFee],
		OtherFees:         values[SettingOtherFees],
	}, nil
}
