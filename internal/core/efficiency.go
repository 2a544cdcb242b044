package core

// EfficiencyMetrics relates money to distance traveled for one vehicle.
// Invariant: ProfitPerDistance = IncomePerDistance - CostPerDistance, and
// every distance-denominated field is zero when TotalDistance is zero.
type EfficiencyMetrics struct {
	CostPerDistance   float64 `json:"costPerDistance"`
	IncomePerDistance float64 `json:"incomePerDistance"`
	ProfitPerDistance float64 `json:"profitPerDistance"`
	TotalDistance     float64 `json:"totalDistance"`
}

// ComputeEfficiency derives per-distance cost, income, and profit for a
// single vehicle. Distance is the spread between the highest and lowest
// odometer reading across the vehicle's fuel records, not a per-entry
// delta sum, so out-of-order entry and partial fill-ups do not corrupt it.
// Fewer than two fuel records, or a non-positive spread (decreasing or
// otherwise corrupted odometer data), yields the all-zero result instead
// of a division by zero or a negative rate.
func ComputeEfficiency(vehicleID string, fuel []FuelRecord, expenses []ExpenseRecord, income []IncomeRecord) EfficiencyMetrics {
	var minOdo, maxOdo int64
	count := 0
	for _, r := range fuel {
		if r.Invalid || !MatchesVehicle(r.VehicleID, vehicleID) {
			continue
		}
		if count == 0 || r.Odometer < minOdo {
			minOdo = r.Odometer
		}
		if count == 0 || r.Odometer > maxOdo {
			maxOdo = r.Odometer
		}
		count++
	}

	distance := maxOdo - minOdo
	if count < 2 || distance <= 0 {
		return EfficiencyMetrics{}
	}

	totals := ComputeTotals(fuel, expenses, income, vehicleID)
	costs := totals.TotalFuelCost + totals.TotalExpenseCost
	dist := float64(distance)

	costPer := Round4(costs / dist)
	incomePer := Round4(totals.TotalIncome / dist)

	return EfficiencyMetrics{
		CostPerDistance:   costPer,
		IncomePerDistance: incomePer,
		ProfitPerDistance: Round4(incomePer - costPer),
		TotalDistance:     dist,
	}
}
