package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fleetledger/internal/amqp"
	"fleetledger/internal/core"
	"fleetledger/internal/sheets"
	"fleetledger/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewSyncWorker_BatchSizeDefault(t *testing.T) {
	w := NewSyncWorker(nil, nil, 0)
	if w.batchSize != 25 {
		t.Errorf("expected default batch size 25, got %d", w.batchSize)
	}

	w = NewSyncWorker(nil, nil, 10)
	if w.batchSize != 10 {
		t.Errorf("expected batch size 10, got %d", w.batchSize)
	}
}

func TestSyncWorker_IsRunning(t *testing.T) {
	w := NewSyncWorker(nil, nil, 10)
	if w.IsRunning() {
		t.Error("worker should not be running initially")
	}
}

func TestSyncWorker_StartTwice(t *testing.T) {
	w := NewSyncWorker(nil, nil, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.StartCatchupLoop(ctx, time.Hour); err != nil {
		t.Fatalf("first StartCatchupLoop() error = %v", err)
	}
	if err := w.StartCatchupLoop(ctx, time.Hour); err == nil {
		t.Error("expected error when starting already running loop")
	}

	if err := w.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestSyncWorker_StopNotRunning(t *testing.T) {
	w := NewSyncWorker(nil, nil, 10)

	if err := w.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestSyncWorker_HandleSyncMessage(t *testing.T) {
	repo := newTestRepo(t)
	exporter := sheets.NewMemoryExporter()
	w := NewSyncWorker(repo, exporter, 10)

	ctx := context.Background()
	rec := core.FuelRecord{
		ID:        "f-1",
		VehicleID: "v-1",
		Cost:      52.30,
		Currency:  "EUR",
		Date:      "2024-03-10",
		Volume:    38.5,
		Unit:      core.Liters,
		Odometer:  120500,
	}
	if err := repo.CreateFuel(ctx, rec); err != nil {
		t.Fatalf("CreateFuel() error = %v", err)
	}

	msg := amqp.NewRecordSyncMessage(core.KindFuel, "f-1", 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	if len(exporter.Fuel) != 1 {
		t.Fatalf("expected 1 exported fuel record, got %d", len(exporter.Fuel))
	}
	if exporter.Fuel[0].ID != "f-1" {
		t.Errorf("exported record ID = %s, want f-1", exporter.Fuel[0].ID)
	}

	ids, err := repo.ListUnsyncedIDs(ctx, core.KindFuel, 10)
	if err != nil {
		t.Fatalf("ListUnsyncedIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("record should be marked synced, still unsynced: %v", ids)
	}
}

func TestSyncWorker_HandleSyncMessage_UnknownKind(t *testing.T) {
	w := NewSyncWorker(newTestRepo(t), sheets.NewMemoryExporter(), 10)

	msg := &amqp.RecordSyncMessage{Kind: "mystery", ID: "x-1", Version: 1}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Error("expected error for unknown record kind")
	}
}

func TestSyncWorker_HandleDeleteMessage_SkipsWithoutDeleter(t *testing.T) {
	w := NewSyncWorker(newTestRepo(t), sheets.NewMemoryExporter(), 10)

	msg := amqp.NewRecordDeleteMessage(core.KindExpense, "e-1")
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Errorf("HandleDeleteMessage() should skip without error, got %v", err)
	}
}

func TestSyncWorker_StartupSyncCheck(t *testing.T) {
	repo := newTestRepo(t)
	exporter := sheets.NewMemoryExporter()
	w := NewSyncWorker(repo, exporter, 10)

	ctx := context.Background()
	if err := repo.CreateExpense(ctx, core.ExpenseRecord{
		ID:        "e-1",
		VehicleID: "v-1",
		Amount:    80,
		Currency:  "EUR",
		Date:      "2024-02-01",
		Category:  "insurance",
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if err := repo.CreateIncome(ctx, core.IncomeRecord{
		ID:        "i-1",
		VehicleID: "v-1",
		Amount:    240,
		Currency:  "EUR",
		Date:      "2024-02-03",
		Source:    "delivery",
	}); err != nil {
		t.Fatalf("CreateIncome() error = %v", err)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}

	if len(exporter.Expenses) != 1 || len(exporter.Income) != 1 {
		t.Errorf("expected 1 expense and 1 income exported, got %d and %d",
			len(exporter.Expenses), len(exporter.Income))
	}

	for _, kind := range []core.RecordKind{core.KindExpense, core.KindIncome} {
		ids, err := repo.ListUnsyncedIDs(ctx, kind, 10)
		if err != nil {
			t.Fatalf("ListUnsyncedIDs(%s) error = %v", kind, err)
		}
		if len(ids) != 0 {
			t.Errorf("%s records should be synced, still pending: %v", kind, ids)
		}
	}
}
