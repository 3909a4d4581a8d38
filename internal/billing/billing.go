package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rates is a point-in-time snapshot of the unit prices and flat fees
// used to assemble one invoice. Invoices copy these values at creation;
// later settings changes never touch an existing invoice.
type Rates struct {
	WaterUnitPrice    decimal.Decimal
	ElectricUnitPrice decimal.Decimal
	CommonFee         decimal.Decimal
	ParkingFee        decimal.Decimal
	InternetFee       decimal.Decimal
	CleaningFee       decimal.Decimal
	OtherFees         decimal.Decimal
}

// MeterPair carries the previous and current counter values for both
// meters of a room.
type MeterPair struct {
	PrevWater    decimal.Decimal
	CurrWater    decimal.Decimal
	PrevElectric decimal.Decimal
	CurrElectric decimal.Decimal
}

// WaterUsage returns current minus previous water counter value.
func (p MeterPair) WaterUsage() decimal.Decimal {
	return p.CurrWater.Sub(p.PrevWater)
}

// ElectricUsage returns current minus previous electric counter value.
func (p MeterPair) ElectricUsage() decimal.Decimal {
	return p.CurrElectric.Sub(p.PrevElectric)
}

// Totals is the computed money breakdown for one invoice.
type Totals struct {
	RentTotal     decimal.Decimal
	WaterTotal    decimal.Decimal
	ElectricTotal decimal.Decimal
	TotalAmount   decimal.Decimal
}

// Assemble computes the invoice totals for one contract period:
//
//	water_total    = (curr_water - prev_water) * water_unit_price
//	electric_total = (curr_electric - prev_electric) * electric_unit_price
//	total_amount   = rent + water_total + electric_total + flat fees
//
// All arithmetic is exact decimal; the caller persists the result
// alongside the meter and rate snapshot.
func Assemble(rent decimal.Decimal, pair MeterPair, r Rates) Totals {
	waterTotal := pair.WaterUsage().Mul(r.WaterUnitPrice)
	electricTotal := pair.ElectricUsage().Mul(r.ElectricUnitPrice)

	total := rent.
		Add(waterTotal).
		Add(electricTotal).
		Add(r.CommonFee).
		Add(r.ParkingFee).
		Add(r.InternetFee).
		Add(r.CleaningFee).
		Add(r.OtherFees)

	return Totals{
		RentTotal:     rent,
		WaterTotal:    waterTotal,
		ElectricTotal: electricTotal,
		TotalAmount:   total,
	}
}

// Warning codes surfaced by usage validation.
const (
	WarnRollback = "meter_rollback"
	WarnAbnormal = "abnormal_usage"
)

// Warning is a confirmable validation finding. Warnings never block a
// save; the operator must resubmit with an explicit confirmation flag.
type Warning struct {
	Code    string `json:"code"`
	Meter   string `json:"meter"`
	Message string `json:"message"`
}

// Limits are the upper-bound sanity thresholds above which usage is
// flagged as abnormally high.
type Limits struct {
	Water    decimal.Decimal
	Electric decimal.Decimal
}

// CheckUsage validates a meter pair against the rollback and abnormal
// usage rules and returns the warnings found, one per meter per rule.
func CheckUsage(pair MeterPair, limits Limits) []Warning {
	var warnings []Warning

	check := func(meter string, prev, curr, limit decimal.Decimal) {
		usage := curr.Sub(prev)
		if usage.IsNegative() {
			warnings = append(warnings, Warning{
				Code:  WarnRollback,
				Meter: meter,
				Message: fmt.Sprintf("%s meter went backwards: previous %s, current %s",
					meter, prev.String(), curr.String()),
			})
			return
		}
		if limit.IsPositive() && usage.GreaterThan(limit) {
			warnings = append(warnings, Warning{
				Code:  WarnAbnormal,
				Meter: meter,
				Message: fmt.Sprintf("%s usage %s exceeds the warning limit %s",
					meter, usage.String(), limit.String()),
			})
		}
	}

	check("water", pair.PrevWater, pair.CurrWater, limits.Water)
	check("electric", pair.PrevElectric, pair.CurrElectric, limits.Electric)

	return warnings
}
