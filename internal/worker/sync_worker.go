// Package worker exports records from the local database to the
// spreadsheet. It is driven by AMQP messages, with a periodic catch-up
// sweep as a backup in case messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fleetledger/internal/amqp"
	"fleetledger/internal/core"
	"fleetledger/internal/ports"
	"fleetledger/internal/storage"
)

// SyncWorker moves records from SQLite to the export destination.
type SyncWorker struct {
	storage   *storage.Repository
	exporter  ports.RecordExporter
	batchSize int

	// Lifecycle of the catch-up loop.
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncWorker(storage *storage.Repository, exporter ports.RecordExporter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &SyncWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"kind", msg.Kind,
		"id", msg.ID,
		"version", msg.Version)

	return w.exportRecord(ctx, msg.Kind, msg.ID)
}

// HandleDeleteMessage processes a single record delete message from AMQP.
// The export destination is append-only; exporters that can clear rows
// implement an optional deleter interface.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.RecordDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"kind", msg.Kind,
		"id", msg.ID)

	deleter, ok := w.exporter.(interface {
		DeleteRow(ctx context.Context, kind core.RecordKind, id string) error
	})
	if !ok {
		slog.WarnContext(ctx, "Exporter cannot delete rows, skipping",
			"kind", msg.Kind, "id", msg.ID)
		return nil
	}

	if err := deleter.DeleteRow(ctx, msg.Kind, msg.ID); err != nil {
		return fmt.Errorf("delete exported row: %w", err)
	}

	slog.InfoContext(ctx, "Deleted exported row", "kind", msg.Kind, "id", msg.ID)
	return nil
}

// StartupSyncCheck exports any records left unsynced while the worker was
// down. It uses a larger batch than the periodic sweep.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	total, synced, failed := 0, 0, 0

	for _, kind := range []core.RecordKind{core.KindFuel, core.KindExpense, core.KindIncome} {
		ids, err := w.storage.ListUnsyncedIDs(ctx, kind, w.batchSize*5)
		if err != nil {
			return fmt.Errorf("list unsynced %s records: %w", kind, err)
		}
		total += len(ids)

		for _, id := range ids {
			if err := w.exportRecord(ctx, kind, id); err != nil {
				slog.ErrorContext(ctx, "Failed to sync record during startup",
					"kind", kind, "id", id, "error", err)
				failed++
				continue
			}
			synced++
		}
	}

	if total == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", total,
		"synced", synced,
		"errors", failed)

	return nil
}

// ProcessPending exports one batch of unsynced records per kind. This is
// the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	for _, kind := range []core.RecordKind{core.KindFuel, core.KindExpense, core.KindIncome} {
		ids, err := w.storage.ListUnsyncedIDs(ctx, kind, w.batchSize)
		if err != nil {
			return fmt.Errorf("list unsynced %s records: %w", kind, err)
		}

		if len(ids) == 0 {
			continue
		}

		slog.InfoContext(ctx, "Processing pending records", "kind", kind, "count", len(ids))

		for _, id := range ids {
			if err := w.exportRecord(ctx, kind, id); err != nil {
				slog.ErrorContext(ctx, "Failed to sync pending record",
					"kind", kind, "id", id, "error", err)
			}
		}
	}

	return nil
}

// StartCatchupLoop runs ProcessPending on the given interval until Stop or
// context cancellation. Returns an error if already running.
func (w *SyncWorker) StartCatchupLoop(ctx context.Context, interval time.Duration) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("catch-up loop is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx, interval)

	slog.InfoContext(ctx, "Catch-up loop started",
		"interval", interval,
		"batch_size", w.batchSize)

	return nil
}

// Stop stops the catch-up loop and waits for completion.
func (w *SyncWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Catch-up loop stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Catch-up loop stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning reports whether the catch-up loop is active.
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *SyncWorker) runLoop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Catch-up sweep failed", "error", err)
			}
		}
	}
}

// exportRecord fetches the record by kind and appends it to the export
// destination, then marks it synced. Export failures leave the record
// unsynced so the next sweep retries it.
func (w *SyncWorker) exportRecord(ctx context.Context, kind core.RecordKind, id string) error {
	var (
		ref string
		err error
	)

	switch kind {
	case core.KindFuel:
		var rec core.FuelRecord
		rec, err = w.storage.GetFuel(ctx, id)
		if err == nil {
			ref, err = w.exporter.AppendFuel(ctx, rec)
		}
	case core.KindExpense:
		var rec core.ExpenseRecord
		rec, err = w.storage.GetExpense(ctx, id)
		if err == nil {
			ref, err = w.exporter.AppendExpense(ctx, rec)
		}
	case core.KindIncome:
		var rec core.IncomeRecord
		rec, err = w.storage.GetIncome(ctx, id)
		if err == nil {
			ref, err = w.exporter.AppendIncome(ctx, rec)
		}
	default:
		return fmt.Errorf("unknown record kind: %s", kind)
	}

	if err != nil {
		return fmt.Errorf("export %s record %s: %w", kind, id, err)
	}

	if err := w.storage.MarkSynced(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark record as synced",
			"kind", kind, "id", id, "error", err)
		// The export itself succeeded, don't requeue.
	}

	slog.InfoContext(ctx, "Synced record",
		"kind", kind,
		"id", id,
		"row_ref", ref)

	return nil
}
