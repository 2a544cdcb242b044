package adapters

import (
	"context"

	"fleetledger/internal/core"
	"fleetledger/internal/ports"
	"fleetledger/internal/services"
	"fleetledger/internal/storage"
)

// SQLiteAdapter joins the repository and the record service behind the
// ports interfaces. Reads go straight to SQLite; writes go through the
// service so sync messages are published.
type SQLiteAdapter struct {
	storage *storage.Repository
	service *services.RecordService
}

var (
	_ ports.VehicleReader = (*SQLiteAdapter)(nil)
	_ ports.VehicleWriter = (*SQLiteAdapter)(nil)
	_ ports.RecordReader  = (*SQLiteAdapter)(nil)
	_ ports.RecordWriter  = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.Repository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	return a.storage.ListVehicles(ctx)
}

func (a *SQLiteAdapter) GetVehicle(ctx context.Context, id string) (core.Vehicle, error) {
	return a.storage.GetVehicle(ctx, id)
}

func (a *SQLiteAdapter) CreateVehicle(ctx context.Context, v core.Vehicle) error {
	return a.storage.CreateVehicle(ctx, v)
}

func (a *SQLiteAdapter) DeleteVehicle(ctx context.Context, id string) error {
	return a.storage.DeleteVehicle(ctx, id)
}

func (a *SQLiteAdapter) ListFuel(ctx context.Context, vehicleID string) ([]core.FuelRecord, error) {
	return a.storage.ListFuel(ctx, vehicleID)
}

func (a *SQLiteAdapter) ListExpenses(ctx context.Context, vehicleID string) ([]core.ExpenseRecord, error) {
	return a.storage.ListExpenses(ctx, vehicleID)
}

func (a *SQLiteAdapter) ListIncome(ctx context.Context, vehicleID string) ([]core.IncomeRecord, error) {
	return a.storage.ListIncome(ctx, vehicleID)
}

func (a *SQLiteAdapter) CreateFuel(ctx context.Context, r core.FuelRecord) error {
	return a.service.CreateFuel(ctx, r)
}

func (a *SQLiteAdapter) CreateExpense(ctx context.Context, r core.ExpenseRecord) error {
	return a.service.CreateExpense(ctx, r)
}

func (a *SQLiteAdapter) CreateIncome(ctx context.Context, r core.IncomeRecord) error {
	return a.service.CreateIncome(ctx, r)
}

func (a *SQLiteAdapter) DeleteFuel(ctx context.Context, id string) error {
	return a.service.DeleteFuel(ctx, id)
}

func (a *SQLiteAdapter) DeleteExpense(ctx context.Context, id string) error {
	return a.service.DeleteExpense(ctx, id)
}

func (a *SQLiteAdapter) DeleteIncome(ctx context.Context, id string) error {
	return a.service.DeleteIncome(ctx, id)
}
