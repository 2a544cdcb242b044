package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fleetledger/internal/amqp"
	"fleetledger/internal/core"
	"fleetledger/internal/storage"
)

// RecordService orchestrates record writes across SQLite and AMQP.
// The database is the source of truth; sync messages are best effort
// and the worker catches up from the unsynced queue if they are lost.
type RecordService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewRecordService(storage *storage.Repository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateFuel validates and saves a fuel record, then publishes a sync message.
func (s *RecordService) CreateFuel(ctx context.Context, r core.FuelRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate fuel record: %w", err)
	}

	if err := s.storage.CreateFuel(ctx, r); err != nil {
		return fmt.Errorf("save fuel record: %w", err)
	}

	s.publishSync(ctx, core.KindFuel, r.ID)
	return nil
}

// CreateExpense validates and saves an expense record, then publishes a sync message.
func (s *RecordService) CreateExpense(ctx context.Context, r core.ExpenseRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate expense record: %w", err)
	}

	if err := s.storage.CreateExpense(ctx, r); err != nil {
		return fmt.Errorf("save expense record: %w", err)
	}

	s.publishSync(ctx, core.KindExpense, r.ID)
	return nil
}

// CreateIncome validates and saves an income record, then publishes a sync message.
func (s *RecordService) CreateIncome(ctx context.Context, r core.IncomeRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate income record: %w", err)
	}

	if err := s.storage.CreateIncome(ctx, r); err != nil {
		return fmt.Errorf("save income record: %w", err)
	}

	s.publishSync(ctx, core.KindIncome, r.ID)
	return nil
}

// DeleteFuel soft deletes a fuel record and publishes a delete message.
func (s *RecordService) DeleteFuel(ctx context.Context, id string) error {
	if err := s.storage.DeleteFuel(ctx, id); err != nil {
		return fmt.Errorf("delete fuel record: %w", err)
	}
	s.publishDelete(ctx, core.KindFuel, id)
	return nil
}

// DeleteExpense soft deletes an expense record and publishes a delete message.
func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense record: %w", err)
	}
	s.publishDelete(ctx, core.KindExpense, id)
	return nil
}

// DeleteIncome soft deletes an income record and publishes a delete message.
func (s *RecordService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.storage.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income record: %w", err)
	}
	s.publishDelete(ctx, core.KindIncome, id)
	return nil
}

func (s *RecordService) publishSync(ctx context.Context, kind core.RecordKind, id string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message",
			"kind", kind, "id", id)
		return
	}

	// Version 1 for new records. Don't fail the request on publish
	// errors, the record is saved locally.
	if err := s.amqpClient.PublishRecordSync(ctx, kind, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"kind", kind, "id", id, "error", err)
	}
}

func (s *RecordService) publishDelete(ctx context.Context, kind core.RecordKind, id string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message",
			"kind", kind, "id", id)
		return
	}

	if err := s.amqpClient.PublishRecordDelete(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"kind", kind, "id", id, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
