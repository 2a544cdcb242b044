package sheets

import (
	"context"
	"fmt"
	"sync"

	"fleetledger/internal/core"
	"fleetledger/internal/ports"
)

// MemoryExporter is an in-process stand-in for the spreadsheet used in
// tests and local development without Google credentials.
type MemoryExporter struct {
	mu       sync.Mutex
	Fuel     []core.FuelRecord
	Expenses []core.ExpenseRecord
	Income   []core.IncomeRecord
}

var _ ports.RecordExporter = (*MemoryExporter)(nil)

func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{}
}

// AppendFuel stores the record and returns a synthetic row reference.
func (m *MemoryExporter) AppendFuel(_ context.Context, r core.FuelRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fuel = append(m.Fuel, r)
	return fmt.Sprintf("mem:fuel:%d", len(m.Fuel)), nil
}

// AppendExpense stores the record and returns a synthetic row reference.
func (m *MemoryExporter) AppendExpense(_ context.Context, r core.ExpenseRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expenses = append(m.Expenses, r)
	return fmt.Sprintf("mem:expense:%d", len(m.Expenses)), nil
}

// AppendIncome stores the record and returns a synthetic row reference.
func (m *MemoryExporter) AppendIncome(_ context.Context, r core.IncomeRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Income = append(m.Income, r)
	return fmt.Sprintf("mem:income:%d", len(m.Income)), nil
}
