package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casalgastos/internal/core"
)

// EventType names what happened to a transaction.
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionDeleted EventType = "transaction.deleted"
)

// TransactionPayload is the wire form of a transaction. Deleted events only
// carry ID and FamilyID.
type TransactionPayload struct {
	ID            string `json:"id"`
	FamilyID      string `json:"family_id"`
	CreatedBy     string `json:"created_by,omitempty"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
	Date          string `json:"date,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Description   string `json:"description,omitempty"`
}

// TransactionEvent is published after every successful insert or delete.
type TransactionEvent struct {
	Type        EventType          `json:"type"`
	Transaction TransactionPayload `json:"transaction"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func NewTransactionCreated(tx core.Transaction, at time.Time) *TransactionEvent {
	return &TransactionEvent{
		Type: EventTransactionCreated,
		Transaction: TransactionPayload{
			ID:            tx.ID,
			FamilyID:      tx.FamilyID,
			CreatedBy:     tx.CreatedBy,
			AmountCents:   tx.Amount.Cents,
			Date:          tx.Date.String(),
			CategoryID:    tx.CategoryID,
			PaymentMethod: string(tx.PaymentMethod),
			Description:   tx.Description,
		},
		OccurredAt: at.UTC(),
	}
}

func NewTransactionDeleted(familyID, id string, at time.Time) *TransactionEvent {
	return &TransactionEvent{
		Type:        EventTransactionDeleted,
		Transaction: TransactionPayload{ID: id, FamilyID: familyID},
		OccurredAt:  at.UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Validate checks the fields a consumer relies on.
func (e *TransactionEvent) Validate() error {
	switch e.Type {
	case EventTransactionCreated, EventTransactionDeleted:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Transaction.ID == "" {
		return errors.New("transaction id is required")
	}
	if e.Type == EventTransactionCreated {
		if _, err := core.ParseDate(e.Transaction.Date); err != nil {
			return fmt.Errorf("transaction date: %w", err)
		}
	}
	return nil
}

// ToTransaction rebuilds the core record carried by a created event.
func (e *TransactionEvent) ToTransaction() (core.Transaction, error) {
	date, err := core.ParseDate(e.Transaction.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	p := e.Transaction
	return core.Transaction{
		ID:            p.ID,
		FamilyID:      p.FamilyID,
		CreatedBy:     p.CreatedBy,
		Amount:        core.Money{Cents: p.AmountCents},
		Date:          date,
		CategoryID:    p.CategoryID,
		PaymentMethod: core.PaymentMethod(p.PaymentMethod),
		Description:   p.Description,
	}, nil
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
