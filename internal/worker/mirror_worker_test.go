package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"casalgastos/internal/amqp"
	"casalgastos/internal/core"
	"casalgastos/internal/sheets/memory"
)

// replayConsumer hands a fixed list of events to the handler.
type replayConsumer struct {
	events []*amqp.TransactionEvent
	errs   []error
}

func (r *replayConsumer) Consume(ctx context.Context, _ int, h amqp.Handler) error {
	for _, e := range r.events {
		r.errs = append(r.errs, h(ctx, e))
	}
	return context.Canceled
}

func TestMirrorWorker_AppliesEvents(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tx := core.Transaction{
		ID: "tx-1", FamilyID: "family-1", CreatedBy: "user-1",
		Amount: core.Money{Cents: 2000}, Date: core.NewDate(2024, 6, 15),
		CategoryID: "cat-1", PaymentMethod: core.PaymentPix,
	}
	other := tx
	other.ID = "tx-2"

	mirror := memory.New()
	c := &replayConsumer{events: []*amqp.TransactionEvent{
		amqp.NewTransactionCreated(tx, now),
		amqp.NewTransactionCreated(other, now),
		amqp.NewTransactionDeleted("family-1", "tx-1", now),
		amqp.NewTransactionDeleted("family-1", "tx-1", now),
		{Type: "transaction.archived", Transaction: amqp.TransactionPayload{ID: "tx-2"}},
	}}

	err := NewMirrorWorker(mirror, 10, nil).Run(context.Background(), c)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v", err)
	}
	for i, err := range c.errs {
		if err != nil {
			t.Errorf("event %d: %v", i, err)
		}
	}

	rows := mirror.Rows()
	if len(rows) != 2 || rows[1][0] != "tx-2" || rows[1][6] != "20.00" {
		t.Fatalf("rows = %v", rows)
	}
}

type failingMirror struct{}

func (failingMirror) Upsert(context.Context, core.Transaction) error { return errors.New("quota exceeded") }
func (failingMirror) Delete(context.Context, string) error           { return errors.New("quota exceeded") }

func TestMirrorWorker_ErrorsRequeue(t *testing.T) {
	w := NewMirrorWorker(failingMirror{}, 1, nil)
	now := time.Now()

	created := amqp.NewTransactionCreated(core.Transaction{ID: "tx-1", Date: core.NewDate(2024, 6, 1)}, now)
	if err := w.Handle(context.Background(), created); err == nil {
		t.Error("expected upsert error")
	}
	if err := w.Handle(context.Background(), amqp.NewTransactionDeleted("f", "tx-1", now)); err == nil {
		t.Error("expected delete error")
	}

	bad := &amqp.TransactionEvent{Type: amqp.EventTransactionCreated, Transaction: amqp.TransactionPayload{ID: "tx-1", Date: "junk"}}
	if err := w.Handle(context.Background(), bad); err == nil {
		t.Error("expected decode error")
	}
}
