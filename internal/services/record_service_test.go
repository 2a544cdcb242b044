package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fleetledger/internal/core"
	"fleetledger/internal/ports"
	"fleetledger/internal/storage"
)

func newTestService(t *testing.T) *RecordService {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	svc := NewRecordService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRecordService_CreateFuel_GeneratesID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := core.FuelRecord{
		VehicleID: "v-1",
		Cost:      60,
		Currency:  "EUR",
		Date:      "2024-01-10",
		Volume:    40,
		Unit:      core.Liters,
		Odometer:  1000,
	}
	if err := svc.CreateFuel(ctx, rec); err != nil {
		t.Fatalf("CreateFuel() error = %v", err)
	}

	fuel, err := svc.storage.ListFuel(ctx, "v-1")
	if err != nil {
		t.Fatalf("ListFuel() error = %v", err)
	}
	if len(fuel) != 1 {
		t.Fatalf("expected 1 fuel record, got %d", len(fuel))
	}
	if fuel[0].ID == "" {
		t.Error("expected a generated record ID")
	}
}

func TestRecordService_CreateExpense_RejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  core.ExpenseRecord
	}{
		{
			name: "negative amount",
			rec:  core.ExpenseRecord{VehicleID: "v-1", Amount: -5, Currency: "EUR", Date: "2024-01-10", Category: "repair"},
		},
		{
			name: "missing vehicle",
			rec:  core.ExpenseRecord{Amount: 5, Currency: "EUR", Date: "2024-01-10", Category: "repair"},
		},
		{
			name: "bad date",
			rec:  core.ExpenseRecord{VehicleID: "v-1", Amount: 5, Currency: "EUR", Date: "10/01/2024", Category: "repair"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreateExpense(ctx, tt.rec); err == nil {
				t.Error("CreateExpense() should reject invalid record")
			}
		})
	}

	expenses, err := svc.storage.ListExpenses(ctx, "")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("no records should be stored, got %d", len(expenses))
	}
}

func TestRecordService_DeleteIncome(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := core.IncomeRecord{
		ID:        "i-1",
		VehicleID: "v-1",
		Amount:    150,
		Currency:  "USD",
		Date:      "2024-04-01",
		Source:    "rideshare",
	}
	if err := svc.CreateIncome(ctx, rec); err != nil {
		t.Fatalf("CreateIncome() error = %v", err)
	}

	if err := svc.DeleteIncome(ctx, "i-1"); err != nil {
		t.Fatalf("DeleteIncome() error = %v", err)
	}

	income, err := svc.storage.ListIncome(ctx, "v-1")
	if err != nil {
		t.Fatalf("ListIncome() error = %v", err)
	}
	if len(income) != 0 {
		t.Errorf("deleted record should not be listed, got %d", len(income))
	}

	if err := svc.DeleteIncome(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("DeleteIncome(missing) error = %v, want ErrNotFound", err)
	}
}
