package services

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"casalgastos/internal/backend"
	"casalgastos/internal/core"
	applog "casalgastos/internal/log"
)

// Store is the part of the backend the ledger reads and writes.
type Store interface {
	backend.CategoryReader
	backend.TransactionReader
	backend.TransactionWriter
}

// Snapshot is one month of a family's data, ready to render.
type Snapshot struct {
	Window       core.MonthWindow
	Categories   []core.Category
	Transactions []core.Transaction
	Summary      core.Summary
}

// AddInput is the raw entry form.
type AddInput struct {
	Amount        string
	CategoryID    string
	PaymentMethod string
	Date          string
	Description   string
}

// Ledger loads monthly data and applies mutations for a family.
type Ledger struct {
	store   Store
	timeout time.Duration
	logger  *applog.Logger
	events  *applog.StructuredLogger
}

func NewLedger(store Store, timeout time.Duration, logger *applog.Logger) *Ledger {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &Ledger{
		store:   store,
		timeout: timeout,
		logger:  logger,
		events:  applog.NewStructuredLogger(logger),
	}
}

// Load reads categories and the month's transactions concurrently. Both reads
// must succeed; any failure is returned as *core.DataFetchError.
func (l *Ledger) Load(ctx context.Context, familyID string, w core.MonthWindow) (Snapshot, error) {
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	var (
		cats []core.Category
		txs  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = l.store.ListCategories(gctx, familyID)
		if err != nil {
			return &core.DataFetchError{Op: "categories", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = l.store.ListTransactions(gctx, familyID, w)
		if err != nil {
			return &core.DataFetchError{Op: "transactions", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.ErrorContext(ctx, "Load failed",
			applog.FieldFamilyID, familyID,
			applog.FieldMonth, w.Label(),
			applog.FieldError, err)
		return Snapshot{}, err
	}

	l.logger.DebugContext(ctx, "Month loaded",
		applog.FieldFamilyID, familyID,
		applog.FieldMonth, w.Label(),
		"categories", len(cats),
		"transactions", len(txs))

	return Snapshot{
		Window:       w,
		Categories:   cats,
		Transactions: txs,
		Summary:      core.Summarize(txs, cats),
	}, nil
}

// Validate turns the form into a transaction for actor. It never touches the backend.
func (in AddInput) Validate(actor core.Profile) (core.Transaction, error) {
	cents, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, &core.ValidationError{Field: "amount", Err: err}
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, &core.ValidationError{Field: "date", Err: err}
	}
	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" {
		return core.Transaction{}, &core.ValidationError{Field: "category", Err: core.ErrEmptyCategory}
	}
	method := core.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !method.Valid() {
		return core.Transaction{}, &core.ValidationError{Field: "payment_method", Err: core.ErrInvalidPaymentMethod}
	}
	desc := SanitizeDescription(in.Description)
	if utf8.RuneCountInString(desc) > core.MaxDescriptionLen {
		return core.Transaction{}, &core.ValidationError{Field: "description", Err: core.ErrDescriptionLen}
	}

	return core.Transaction{
		FamilyID:      actor.FamilyID,
		CreatedBy:     actor.ID,
		Amount:        core.Money{Cents: cents},
		Date:          date,
		CategoryID:    categoryID,
		PaymentMethod: method,
		Description:   desc,
	}, nil
}

// Add validates the form and inserts the transaction. Validation failures
// return *core.ValidationError before any backend call; insert failures
// return *core.MutationError.
func (l *Ledger) Add(ctx context.Context, actor core.Profile, in AddInput) (core.Transaction, error) {
	tx, err := in.Validate(actor)
	if err != nil {
		return core.Transaction{}, err
	}

	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	stored, err := l.store.InsertTransaction(ctx, tx)
	if err != nil {
		l.events.LogError(ctx, "Insert failed", err, applog.ComponentLedger, applog.OpInsert,
			applog.NewFields().WithFamily(actor.ID, actor.FamilyID))
		return core.Transaction{}, &core.MutationError{Op: "insert", Err: err}
	}

	l.events.LogTransactionCreated(ctx, actor.ID, actor.FamilyID, stored.ID, stored.Amount.Cents, stored.CategoryID, string(stored.PaymentMethod))
	return stored, nil
}

// Delete removes a transaction of actor's family. A missing row is a
// *core.MutationError wrapping core.ErrNotFound.
func (l *Ledger) Delete(ctx context.Context, actor core.Profile, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &core.MutationError{Op: "delete", Err: core.ErrNotFound}
	}

	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.store.DeleteTransaction(ctx, actor.FamilyID, id); err != nil {
		l.events.LogError(ctx, "Delete failed", err, applog.ComponentLedger, applog.OpDelete,
			applog.NewFields().WithFamily(actor.ID, actor.FamilyID))
		return &core.MutationError{Op: "delete", ID: id, Err: err}
	}

	l.events.LogTransactionDeleted(ctx, actor.ID, actor.FamilyID, id)
	return nil
}

// SanitizeDescription trims the text and drops control characters.
func SanitizeDescription(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if r == '\n' || r == '\t' {
				return ' '
			}
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
