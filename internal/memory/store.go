// Package memory is an in-memory backend seeded from JSON files. It is
// meant for local development and tests; nothing is persisted.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fleetledger/internal/core"
	"fleetledger/internal/ports"
)

type Store struct {
	mu       sync.RWMutex
	vehicles []core.Vehicle
	fuel     []core.FuelRecord
	expenses []core.ExpenseRecord
	income   []core.IncomeRecord
}

var (
	_ ports.VehicleReader = (*Store)(nil)
	_ ports.VehicleWriter = (*Store)(nil)
	_ ports.RecordReader  = (*Store)(nil)
	_ ports.RecordWriter  = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// NewFromFiles loads seed data from JSON files in base: vehicles.json,
// fuel.json, expenses.json and income.json. Missing files are skipped;
// malformed rows are normalized by the record decoders and kept with
// their invalid flag set.
func NewFromFiles(base string) (*Store, error) {
	s := New()

	if err := readSeed(filepath.Join(base, "vehicles.json"), &s.vehicles); err != nil {
		return nil, err
	}
	if err := readSeed(filepath.Join(base, "fuel.json"), &s.fuel); err != nil {
		return nil, err
	}
	if err := readSeed(filepath.Join(base, "expenses.json"), &s.expenses); err != nil {
		return nil, err
	}
	if err := readSeed(filepath.Join(base, "income.json"), &s.income); err != nil {
		return nil, err
	}

	return s, nil
}

func readSeed(path string, dst any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return nil
}

func (s *Store) ListVehicles(_ context.Context) ([]core.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Vehicle(nil), s.vehicles...), nil
}

func (s *Store) GetVehicle(_ context.Context, id string) (core.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return core.Vehicle{}, ports.ErrNotFound
}

func (s *Store) CreateVehicle(_ context.Context, v core.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vehicles {
		if existing.ID == v.ID {
			return fmt.Errorf("vehicle %s already exists", v.ID)
		}
	}
	s.vehicles = append(s.vehicles, v)
	return nil
}

func (s *Store) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.vehicles {
		if v.ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (s *Store) ListFuel(_ context.Context, vehicleID string) ([]core.FuelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.FuelRecord, 0, len(s.fuel))
	for _, r := range s.fuel {
		if vehicleID == "" || core.MatchesVehicle(r.VehicleID, vehicleID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListExpenses(_ context.Context, vehicleID string) ([]core.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.ExpenseRecord, 0, len(s.expenses))
	for _, r := range s.expenses {
		if vehicleID == "" || core.MatchesVehicle(r.VehicleID, vehicleID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListIncome(_ context.Context, vehicleID string) ([]core.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.IncomeRecord, 0, len(s.income))
	for _, r := range s.income {
		if vehicleID == "" || core.MatchesVehicle(r.VehicleID, vehicleID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) CreateFuel(_ context.Context, r core.FuelRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuel = append(s.fuel, r)
	return nil
}

func (s *Store) CreateExpense(_ context.Context, r core.ExpenseRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, r)
	return nil
}

func (s *Store) CreateIncome(_ context.Context, r core.IncomeRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.income = append(s.income, r)
	return nil
}

func (s *Store) DeleteFuel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.fuel {
		if r.ID == id {
			s.fuel = append(s.fuel[:i], s.fuel[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.expenses {
		if r.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.income {
		if r.ID == id {
			s.income = append(s.income[:i], s.income[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}
