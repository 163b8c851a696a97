package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"padaria/internal/amqp"
	"padaria/internal/core"
	"padaria/internal/store"
	"padaria/internal/storage"
)

// OrderMirror is the sheet-side surface the worker writes through.
type OrderMirror interface {
	UpsertOrder(ctx context.Context, o core.Order) error
	RemoveOrder(ctx context.Context, id string) error
}

// SyncWorker mirrors order changes from SQLite to Google Sheets.
type SyncWorker struct {
	storage   *storage.Repository
	mirror    OrderMirror
	batchSize int
}

func NewSyncWorker(repo *storage.Repository, mirror OrderMirror, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   repo,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleChangeMessage processes a single order change message from AMQP.
func (w *SyncWorker) HandleChangeMessage(ctx context.Context, msg *amqp.OrderChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"id", msg.ID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDeleted {
		if err := w.mirror.RemoveOrder(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove order from sheet: %w", err)
		}
		return nil
	}

	order, err := w.storage.GetOrder(ctx, msg.ID)
	if errors.Is(err, store.ErrOrderNotFound) {
		// Deleted before we got to it; nothing left to mirror.
		slog.WarnContext(ctx, "Order gone before sync, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get order from storage: %w", err)
	}

	return w.mirrorOrder(ctx, order)
}

// ProcessPendingOrders mirrors any orders still marked pending. This is the
// backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingOrders(ctx context.Context) error {
	pending, err := w.storage.PendingSyncOrders(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending orders: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending orders", "count", len(pending))

	for _, order := range pending {
		if err := w.mirrorOrder(ctx, order); err != nil {
			slog.ErrorContext(ctx, "Failed to sync order", "id", order.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck mirrors pending orders at worker startup, with a larger
// batch to recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSyncOrders(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending orders for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending orders found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending orders on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, order := range pending {
		if err := w.mirrorOrder(ctx, order); err != nil {
			slog.ErrorContext(ctx, "Failed to sync order during startup",
				"id", order.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) mirrorOrder(ctx context.Context, order core.Order) error {
	if err := w.mirror.UpsertOrder(ctx, order); err != nil {
		if markErr := w.storage.MarkOrderSyncError(ctx, order.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", order.ID, "error", markErr)
		}
		return fmt.Errorf("upsert order in sheet: %w", err)
	}

	if err := w.storage.MarkOrderSynced(ctx, order.ID); err != nil {
		// The mirror write worked, so don't fail the message.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", order.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced order",
		"id", order.ID,
		"client", order.ClientName,
		"date", order.RequestDate)

	return nil
}
