// Package ports declares the interfaces between the HTTP layer and the
// outbound adapters (storage backends and the sheets export).
package ports

import (
	"context"
	"errors"

	"fleetledger/internal/core"
)

// ErrNotFound is returned by readers and deleters when no row matches.
var ErrNotFound = errors.New("not found")

type (
	VehicleReader interface {
		ListVehicles(ctx context.Context) ([]core.Vehicle, error)
		GetVehicle(ctx context.Context, id string) (core.Vehicle, error)
	}

	VehicleWriter interface {
		CreateVehicle(ctx context.Context, v core.Vehicle) error
		DeleteVehicle(ctx context.Context, id string) error
	}

	// RecordReader supplies the three record collections the analytics
	// engine consumes. An empty vehicleID means the full collection.
	RecordReader interface {
		ListFuel(ctx context.Context, vehicleID string) ([]core.FuelRecord, error)
		ListExpenses(ctx context.Context, vehicleID string) ([]core.ExpenseRecord, error)
		ListIncome(ctx context.Context, vehicleID string) ([]core.IncomeRecord, error)
	}

	RecordWriter interface {
		CreateFuel(ctx context.Context, r core.FuelRecord) error
		CreateExpense(ctx context.Context, r core.ExpenseRecord) error
		CreateIncome(ctx context.Context, r core.IncomeRecord) error
		DeleteFuel(ctx context.Context, id string) error
		DeleteExpense(ctx context.Context, id string) error
		DeleteIncome(ctx context.Context, id string) error
	}

	// RecordExporter appends record rows to the external export
	// destination. Implementations return an opaque row reference for
	// logging.
	RecordExporter interface {
		AppendFuel(ctx context.Context, r core.FuelRecord) (rowRef string, err error)
		AppendExpense(ctx context.Context, r core.ExpenseRecord) (rowRef string, err error)
		AppendIncome(ctx context.Context, r core.IncomeRecord) (rowRef string, err error)
	}
)
