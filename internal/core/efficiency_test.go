package core

import "testing"

func TestComputeEfficiencyOdometerSpread(t *testing.T) {
	// Two fill-ups, odometer 1000 -> 1500, total fuel cost 95.
	fuel := []FuelRecord{
		{ID: "f1", VehicleID: "v1", Cost: 45, Currency: "EUR", Date: "2024-01-10", Volume: 30, Unit: Liters, Odometer: 1000},
		{ID: "f2", VehicleID: "v1", Cost: 50, Currency: "EUR", Date: "2024-02-11", Volume: 33, Unit: Liters, Odometer: 1500},
	}

	got := ComputeEfficiency("v1", fuel, nil, nil)
	if got.TotalDistance != 500 {
		t.Fatalf("distance = %v, want 500", got.TotalDistance)
	}
	if !approx(got.CostPerDistance, 0.19) {
		t.Fatalf("cost/km = %v, want 0.19", got.CostPerDistance)
	}
	if !approx(got.IncomePerDistance, 0) {
		t.Fatalf("income/km = %v, want 0", got.IncomePerDistance)
	}
	if !approx(got.ProfitPerDistance, -0.19) {
		t.Fatalf("profit/km = %v, want -0.19", got.ProfitPerDistance)
	}
}

func TestComputeEfficiencyOutOfOrderEntries(t *testing.T) {
	// Entries recorded out of chronological order still yield max-min.
	fuel := []FuelRecord{
		{ID: "f1", VehicleID: "v1", Cost: 20, Currency: "EUR", Date: "2024-03-01", Volume: 10, Unit: Liters, Odometer: 2400},
		{ID: "f2", VehicleID: "v1", Cost: 20, Currency: "EUR", Date: "2024-01-01", Volume: 10, Unit: Liters, Odometer: 2000},
		{ID: "f3", VehicleID: "v1", Cost: 20, Currency: "EUR", Date: "2024-02-01", Volume: 10, Unit: Liters, Odometer: 2250},
	}
	got := ComputeEfficiency("v1", fuel, nil, nil)
	if got.TotalDistance != 400 {
		t.Fatalf("distance = %v, want 400", got.TotalDistance)
	}
}

func TestComputeEfficiencyDegenerateScopes(t *testing.T) {
	single := []FuelRecord{
		{ID: "f1", VehicleID: "v1", Cost: 45, Currency: "EUR", Date: "2024-01-10", Volume: 30, Unit: Liters, Odometer: 1000},
	}
	flat := []FuelRecord{
		{ID: "f1", VehicleID: "v1", Cost: 45, Currency: "EUR", Date: "2024-01-10", Volume: 30, Unit: Liters, Odometer: 1000},
		{ID: "f2", VehicleID: "v1", Cost: 50, Currency: "EUR", Date: "2024-01-20", Volume: 30, Unit: Liters, Odometer: 1000},
	}

	cases := []struct {
		name      string
		vehicleID string
		fuel      []FuelRecord
	}{
		{"no fuel records", "v1", nil},
		{"single fuel record", "v1", single},
		{"zero odometer spread", "v1", flat},
		{"no records for scope", "v9", single},
		{"empty scope id", "", single},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeEfficiency(tc.vehicleID, tc.fuel, nil, nil)
			if got != (EfficiencyMetrics{}) {
				t.Fatalf("expected all-zero metrics, got %+v", got)
			}
		})
	}
}

func TestComputeEfficiencyProfitInvariant(t *testing.T) {
	fuel := []FuelRecord{
		{ID: "f1", VehicleID: "v1", Cost: 80.37, Currency: "EUR", Date: "2024-01-10", Volume: 40, Unit: Liters, Odometer: 52000},
		{ID: "f2", VehicleID: "v1", Cost: 73.11, Currency: "EUR", Date: "2024-01-24", Volume: 38, Unit: Liters, Odometer: 52730},
	}
	expenses := []ExpenseRecord{
		{ID: "e1", VehicleID: "v1", Amount: 210.4, Currency: "EUR", Date: "2024-01-15"},
	}
	income := []IncomeRecord{
		{ID: "i1", VehicleID: "v1", Amount: 950, Currency: "EUR", Date: "2024-01-31"},
	}

	got := ComputeEfficiency("v1", fuel, expenses, income)
	if got.TotalDistance != 730 {
		t.Fatalf("distance = %v, want 730", got.TotalDistance)
	}
	if !approx(got.ProfitPerDistance, Round4(got.IncomePerDistance-got.CostPerDistance)) {
		t.Fatalf("profit/km %v != income/km - cost/km (%v - %v)", got.ProfitPerDistance, got.IncomePerDistance, got.CostPerDistance)
	}
}
