// Package storage implements the SQLite persistence layer for vehicles
// and the three financial record collections.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fleetledger/internal/core"
	"fleetledger/internal/ports"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// recordTable maps a record kind to its table name. Kinds come from a
// closed set; anything else is a programmer error.
func recordTable(kind core.RecordKind) (string, error) {
	switch kind {
	case core.KindFuel:
		return "fuel_records", nil
	case core.KindExpense:
		return "expense_records", nil
	case core.KindIncome:
		return "income_records", nil
	default:
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
}

// Vehicles

func (r *Repository) CreateVehicle(ctx context.Context, v core.Vehicle) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, name, make, model, year, photo_url) VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Make, v.Model, v.Year, v.PhotoURL)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	slog.InfoContext(ctx, "Vehicle saved", "vehicle_id", v.ID, "name", v.Name)
	return nil
}

func (r *Repository) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, make, model, year, photo_url FROM vehicles WHERE deleted = 0 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []core.Vehicle
	for rows.Next() {
		var v core.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Make, &v.Model, &v.Year, &v.PhotoURL); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *Repository) GetVehicle(ctx context.Context, id string) (core.Vehicle, error) {
	var v core.Vehicle
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, make, model, year, photo_url FROM vehicles WHERE id = ? AND deleted = 0`, id).
		Scan(&v.ID, &v.Name, &v.Make, &v.Model, &v.Year, &v.PhotoURL)
	if err == sql.ErrNoRows {
		return core.Vehicle{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r *Repository) DeleteVehicle(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vehicles SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return requireRow(res)
}

// Fuel records

func (r *Repository) CreateFuel(ctx context.Context, rec core.FuelRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fuel_records (id, vehicle_id, cost, currency, date, volume, volume_unit, odometer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VehicleID, rec.Cost, rec.Currency, rec.Date, rec.Volume, string(rec.Unit), rec.Odometer)
	if err != nil {
		return fmt.Errorf("insert fuel record: %w", err)
	}
	slog.InfoContext(ctx, "Fuel record saved",
		"record_id", rec.ID, "vehicle_id", rec.VehicleID, "amount", rec.Cost, "currency", rec.Currency)
	return nil
}

func (r *Repository) ListFuel(ctx context.Context, vehicleID string) ([]core.FuelRecord, error) {
	query := `SELECT id, vehicle_id, cost, currency, date, volume, volume_unit, odometer
		FROM fuel_records WHERE deleted = 0`
	args := []any{}
	if vehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fuel records: %w", err)
	}
	defer rows.Close()

	var records []core.FuelRecord
	for rows.Next() {
		var rec core.FuelRecord
		var unit string
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Cost, &rec.Currency, &rec.Date, &rec.Volume, &unit, &rec.Odometer); err != nil {
			return nil, fmt.Errorf("scan fuel record: %w", err)
		}
		rec.Unit = core.VolumeUnit(unit)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) GetFuel(ctx context.Context, id string) (core.FuelRecord, error) {
	var rec core.FuelRecord
	var unit string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, vehicle_id, cost, currency, date, volume, volume_unit, odometer
		 FROM fuel_records WHERE id = ? AND deleted = 0`, id).
		Scan(&rec.ID, &rec.VehicleID, &rec.Cost, &rec.Currency, &rec.Date, &rec.Volume, &unit, &rec.Odometer)
	if err == sql.ErrNoRows {
		return core.FuelRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return core.FuelRecord{}, fmt.Errorf("get fuel record: %w", err)
	}
	rec.Unit = core.VolumeUnit(unit)
	return rec, nil
}

func (r *Repository) DeleteFuel(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE fuel_records SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("delete fuel record: %w", err)
	}
	return requireRow(res)
}

// Expense records

func (r *Repository) CreateExpense(ctx context.Context, rec core.ExpenseRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_records (id, vehicle_id, amount, currency, date, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VehicleID, rec.Amount, rec.Currency, rec.Date, rec.Category)
	if err != nil {
		return fmt.Errorf("insert expense record: %w", err)
	}
	slog.InfoContext(ctx, "Expense record saved",
		"record_id", rec.ID, "vehicle_id", rec.VehicleID, "amount", rec.Amount, "currency", rec.Currency)
	return nil
}

func (r *Repository) ListExpenses(ctx context.Context, vehicleID string) ([]core.ExpenseRecord, error) {
	query := `SELECT id, vehicle_id, amount, currency, date, category
		FROM expense_records WHERE deleted = 0`
	args := []any{}
	if vehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expense records: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		var rec core.ExpenseRecord
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Amount, &rec.Currency, &rec.Date, &rec.Category); err != nil {
			return nil, fmt.Errorf("scan expense record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.ExpenseRecord, error) {
	var rec core.ExpenseRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, vehicle_id, amount, currency, date, category
		 FROM expense_records WHERE id = ? AND deleted = 0`, id).
		Scan(&rec.ID, &rec.VehicleID, &rec.Amount, &rec.Currency, &rec.Date, &rec.Category)
	if err == sql.ErrNoRows {
		return core.ExpenseRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense record: %w", err)
	}
	return rec, nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE expense_records SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("delete expense record: %w", err)
	}
	return requireRow(res)
}

// Income records

func (r *Repository) CreateIncome(ctx context.Context, rec core.IncomeRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO income_records (id, vehicle_id, amount, currency, date, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VehicleID, rec.Amount, rec.Currency, rec.Date, rec.Source)
	if err != nil {
		return fmt.Errorf("insert income record: %w", err)
	}
	slog.InfoContext(ctx, "Income record saved",
		"record_id", rec.ID, "vehicle_id", rec.VehicleID, "amount", rec.Amount, "currency", rec.Currency)
	return nil
}

func (r *Repository) ListIncome(ctx context.Context, vehicleID string) ([]core.IncomeRecord, error) {
	query := `SELECT id, vehicle_id, amount, currency, date, source
		FROM income_records WHERE deleted = 0`
	args := []any{}
	if vehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list income records: %w", err)
	}
	defer rows.Close()

	var records []core.IncomeRecord
	for rows.Next() {
		var rec core.IncomeRecord
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Amount, &rec.Currency, &rec.Date, &rec.Source); err != nil {
			return nil, fmt.Errorf("scan income record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) GetIncome(ctx context.Context, id string) (core.IncomeRecord, error) {
	var rec core.IncomeRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, vehicle_id, amount, currency, date, source
		 FROM income_records WHERE id = ? AND deleted = 0`, id).
		Scan(&rec.ID, &rec.VehicleID, &rec.Amount, &rec.Currency, &rec.Date, &rec.Source)
	if err == sql.ErrNoRows {
		return core.IncomeRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("get income record: %w", err)
	}
	return rec, nil
}

func (r *Repository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE income_records SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("delete income record: %w", err)
	}
	return requireRow(res)
}

// Export bookkeeping

// MarkSynced flags a record as exported so startup catch-up skips it.
func (r *Repository) MarkSynced(ctx context.Context, kind core.RecordKind, id string) error {
	table, err := recordTable(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET synced = 1 WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("mark %s record synced: %w", kind, err)
	}
	return nil
}

// ListUnsyncedIDs returns up to limit record IDs that were never exported.
func (r *Repository) ListUnsyncedIDs(ctx context.Context, kind core.RecordKind, limit int) ([]string, error) {
	table, err := recordTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE synced = 0 AND deleted = 0 ORDER BY created_at LIMIT ?`, table), limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced %s records: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
