// Package worker applies transaction events to the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"

	"casalgastos/internal/amqp"
	applog "casalgastos/internal/log"
	"casalgastos/internal/sheets"
)

// Consumer delivers events until its context is cancelled.
type Consumer interface {
	Consume(ctx context.Context, prefetch int, handler amqp.Handler) error
}

// MirrorWorker keeps a sheets.Mirror in step with the transactions table.
type MirrorWorker struct {
	mirror   sheets.Mirror
	prefetch int
	logger   *applog.Logger
}

func NewMirrorWorker(mirror sheets.Mirror, prefetch int, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		mirror:   mirror,
		prefetch: prefetch,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// Run consumes events until ctx is done.
func (w *MirrorWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "Mirror worker started", "prefetch", w.prefetch)
	err := c.Consume(ctx, w.prefetch, w.Handle)
	w.logger.InfoContext(ctx, "Mirror worker stopped", "reason", err)
	return err
}

// Handle applies one event. Errors make the broker redeliver the event, so
// both operations are idempotent on the mirror side.
func (w *MirrorWorker) Handle(ctx context.Context, e *amqp.TransactionEvent) error {
	switch e.Type {
	case amqp.EventTransactionCreated:
		tx, err := e.ToTransaction()
		if err != nil {
			return fmt.Errorf("decode transaction %s: %w", e.Transaction.ID, err)
		}
		if err := w.mirror.Upsert(ctx, tx); err != nil {
			return fmt.Errorf("mirror transaction %s: %w", tx.ID, err)
		}
		w.logger.InfoContext(ctx, "Transaction mirrored",
			applog.FieldTransactionID, tx.ID,
			applog.FieldFamilyID, tx.FamilyID,
			applog.FieldAmountCents, tx.Amount.Cents)
	case amqp.EventTransactionDeleted:
		if err := w.mirror.Delete(ctx, e.Transaction.ID); err != nil {
			return fmt.Errorf("remove mirrored transaction %s: %w", e.Transaction.ID, err)
		}
		w.logger.InfoContext(ctx, "Mirrored transaction removed",
			applog.FieldTransactionID, e.Transaction.ID,
			applog.FieldFamilyID, e.Transaction.FamilyID)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event", applog.FieldEventType, string(e.Type))
	}
	return nil
}
