package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fleetledger/internal/core"
	"fleetledger/internal/ports"
)

func TestNewFromFiles_MissingFilesAreSkipped(t *testing.T) {
	store, err := NewFromFiles(t.TempDir())
	if err != nil {
		t.Fatalf("NewFromFiles() error = %v", err)
	}

	vehicles, err := store.ListVehicles(context.Background())
	if err != nil {
		t.Fatalf("ListVehicles() error = %v", err)
	}
	if len(vehicles) != 0 {
		t.Errorf("expected empty store, got %d vehicles", len(vehicles))
	}
}

func TestNewFromFiles_NormalizesMessyRecords(t *testing.T) {
	dir := t.TempDir()
	seed := `[
		{"id": "f-1", "vehicleId": "v-1", "cost": 50, "currency": "EUR", "date": "2024-01-10", "volume": 40, "volumeUnit": "liters", "odometerReading": 1000},
		{"_id": 77, "vehicleId": "v-1", "cost": "62.5", "currency": "EUR", "date": "2024-02-10", "volume": 41, "volumeUnit": "liters", "odometerReading": 1600},
		{"id": "f-3", "vehicleId": "v-1", "cost": "n/a", "currency": "EUR", "date": "2024-03-10", "volume": 39, "volumeUnit": "liters", "odometerReading": 2200}
	]`
	if err := os.WriteFile(filepath.Join(dir, "fuel.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles() error = %v", err)
	}

	fuel, err := store.ListFuel(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("ListFuel() error = %v", err)
	}
	if len(fuel) != 3 {
		t.Fatalf("expected 3 fuel records, got %d", len(fuel))
	}

	if fuel[1].ID != "77" {
		t.Errorf("fallback _id not applied, got ID %q", fuel[1].ID)
	}
	if fuel[1].Cost != 62.5 {
		t.Errorf("numeric string cost not parsed, got %v", fuel[1].Cost)
	}
	if fuel[1].Invalid {
		t.Error("record with numeric string cost should be valid")
	}
	if !fuel[2].Invalid {
		t.Error("record with non-numeric cost should carry the invalid flag")
	}
}

func TestStore_CRUD(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateVehicle(ctx, core.Vehicle{ID: "v-1", Name: "Panda"}); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}
	if err := store.CreateVehicle(ctx, core.Vehicle{ID: "v-1", Name: "Dup"}); err == nil {
		t.Error("duplicate vehicle ID should be rejected")
	}

	rec := core.IncomeRecord{
		ID:        "i-1",
		VehicleID: "v-1",
		Amount:    120,
		Currency:  "EUR",
		Date:      "2024-05-01",
		Source:    "delivery",
	}
	if err := store.CreateIncome(ctx, rec); err != nil {
		t.Fatalf("CreateIncome() error = %v", err)
	}

	income, err := store.ListIncome(ctx, "v-1")
	if err != nil || len(income) != 1 {
		t.Fatalf("ListIncome() = %v records, err %v", len(income), err)
	}

	if err := store.DeleteIncome(ctx, "i-1"); err != nil {
		t.Fatalf("DeleteIncome() error = %v", err)
	}
	if err := store.DeleteIncome(ctx, "i-1"); err != ports.ErrNotFound {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	if _, err := store.GetVehicle(ctx, "missing"); err != ports.ErrNotFound {
		t.Errorf("GetVehicle(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	store := New()
	err := store.CreateFuel(context.Background(), core.FuelRecord{
		ID:       "f-1",
		Cost:     10,
		Currency: "EUR",
		Date:     "2024-01-01",
		Volume:   5,
		Unit:     core.Liters,
	})
	if err == nil {
		t.Error("fuel record without vehicle ID should be rejected")
	}
}
