// Package adapters decorates a data backend with side effects the core does
// not know about.
package adapters

import (
	"context"
	"time"

	"casalgastos/internal/amqp"
	"casalgastos/internal/backend"
	"casalgastos/internal/core"
	applog "casalgastos/internal/log"
)

// EventPublisher sends transaction events to the broker.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, e *amqp.TransactionEvent) error
}

// PublishingBackend forwards every call to the wrapped backend and publishes a
// TransactionEvent after each successful insert or delete. Publishing is best
// effort: a broker failure is logged and never fails the mutation.
type PublishingBackend struct {
	backend.Backend
	publisher EventPublisher
	logger    *applog.Logger
	now       func() time.Time
}

func NewPublishingBackend(b backend.Backend, p EventPublisher, logger *applog.Logger) *PublishingBackend {
	if logger == nil {
		logger = applog.Discard()
	}
	return &PublishingBackend{
		Backend:   b,
		publisher: p,
		logger:    logger.WithComponent(applog.ComponentAMQP),
		now:       time.Now,
	}
}

func (b *PublishingBackend) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	stored, err := b.Backend.InsertTransaction(ctx, tx)
	if err != nil {
		return stored, err
	}
	b.publish(ctx, amqp.NewTransactionCreated(stored, b.now()))
	return stored, nil
}

func (b *PublishingBackend) DeleteTransaction(ctx context.Context, familyID, id string) error {
	if err := b.Backend.DeleteTransaction(ctx, familyID, id); err != nil {
		return err
	}
	b.publish(ctx, amqp.NewTransactionDeleted(familyID, id, b.now()))
	return nil
}

func (b *PublishingBackend) publish(ctx context.Context, e *amqp.TransactionEvent) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.PublishTransactionEvent(context.WithoutCancel(ctx), e); err != nil {
		b.logger.WarnContext(ctx, "Failed to publish transaction event",
			applog.FieldEventType, string(e.Type),
			applog.FieldTransactionID, e.Transaction.ID,
			applog.FieldError, err)
	}
}
