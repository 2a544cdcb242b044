package core

import "math"

// AggregateTotals holds the summed monetary fields for one scope. Derived,
// never persisted; recomputed from source records on every request.
type AggregateTotals struct {
	TotalFuelCost    float64 `json:"totalFuelCost"`
	TotalExpenseCost float64 `json:"totalExpenseCost"`
	TotalIncome      float64 `json:"totalIncome"`
}

// Round2 rounds to 2 decimal places for display-stable currency totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimal places. Distance-denominated unit prices need
// finer precision than currency totals.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ComputeTotals sums cost and income amounts across the three collections.
// A non-empty vehicleID scopes each collection to that vehicle; an empty
// vehicleID means portfolio scope (everything). Records flagged invalid by
// the normalizer are skipped, so an empty or fully malformed scope yields
// all-zero totals rather than an error. Intermediate sums keep full
// precision; only the outputs are rounded.
func ComputeTotals(fuel []FuelRecord, expenses []ExpenseRecord, income []IncomeRecord, vehicleID string) AggregateTotals {
	var fuelCost, expenseCost, incomeTotal float64

	for _, r := range fuel {
		if r.Invalid {
			continue
		}
		if vehicleID != "" && !MatchesVehicle(r.VehicleID, vehicleID) {
			continue
		}
		fuelCost += r.Cost
	}
	for _, r := range expenses {
		if r.Invalid {
			continue
		}
		if vehicleID != "" && !MatchesVehicle(r.VehicleID, vehicleID) {
			continue
		}
		expenseCost += r.Amount
	}
	for _, r := range income {
		if r.Invalid {
			continue
		}
		if vehicleID != "" && !MatchesVehicle(r.VehicleID, vehicleID) {
			continue
		}
		incomeTotal += r.Amount
	}

	return AggregateTotals{
		TotalFuelCost:    Round2(fuelCost),
		TotalExpenseCost: Round2(expenseCost),
		TotalIncome:      Round2(incomeTotal),
	}
}
