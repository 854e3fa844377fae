package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casalgastos/internal/core"
	"casalgastos/internal/memory"
)

var june2024 = core.MonthWindowFor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

func newLedger(t *testing.T) (*Ledger, *memory.Store, core.Profile, []core.Category) {
	t.Helper()
	store := memory.NewStore()
	actor := core.Profile{ID: "user-1", FamilyID: "family-1"}
	cats := store.Seed(actor,
		core.Category{Name: "Mercado", Icon: "🛒"},
		core.Category{Name: "Casa", Icon: "🏠"},
	)
	return NewLedger(store, time.Second, nil), store, actor, cats
}

func TestLedger_AddThenLoad(t *testing.T) {
	ctx := context.Background()
	l, _, actor, cats := newLedger(t)

	before, err := l.Load(ctx, actor.FamilyID, june2024)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before.Summary.Total.Cents)

	tx, err := l.Add(ctx, actor, AddInput{
		Amount:        "20,00",
		CategoryID:    cats[0].ID,
		PaymentMethod: "pix",
		Date:          "2024-06-15",
		Description:   "  feira\n",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "feira", tx.Description)
	assert.Equal(t, actor.FamilyID, tx.FamilyID)
	assert.Equal(t, actor.ID, tx.CreatedBy)

	after, err := l.Load(ctx, actor.FamilyID, june2024)
	require.NoError(t, err)
	assert.Equal(t, before.Summary.Total.Cents+2000, after.Summary.Total.Cents)
	require.Len(t, after.Transactions, 1)
	assert.Equal(t, "Casa", after.Categories[0].Name, "categories ordered by name")

	july, err := l.Load(ctx, actor.FamilyID, june2024.Shift(1))
	require.NoError(t, err)
	assert.Empty(t, july.Transactions)
}

func TestLedger_AddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	l, store, actor, cats := newLedger(t)

	valid := AddInput{Amount: "10,00", CategoryID: cats[0].ID, PaymentMethod: "pix", Date: "2024-06-01"}
	tests := []struct {
		name   string
		mutate func(*AddInput)
		field  string
		want   error
	}{
		{"zero amount", func(in *AddInput) { in.Amount = "0" }, "amount", core.ErrInvalidAmount},
		{"text amount", func(in *AddInput) { in.Amount = "abc" }, "amount", core.ErrInvalidAmount},
		{"negative amount", func(in *AddInput) { in.Amount = "-5" }, "amount", core.ErrInvalidAmount},
		{"bad date", func(in *AddInput) { in.Date = "2024-13-01" }, "date", core.ErrInvalidDate},
		{"no category", func(in *AddInput) { in.CategoryID = " " }, "category", core.ErrEmptyCategory},
		{"unknown method", func(in *AddInput) { in.PaymentMethod = "cheque" }, "payment_method", core.ErrInvalidPaymentMethod},
		{"long description", func(in *AddInput) { in.Description = strings.Repeat("é", 201) }, "description", core.ErrDescriptionLen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := l.Add(ctx, actor, in)

			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	txs, err := store.ListTransactions(ctx, actor.FamilyID, june2024)
	require.NoError(t, err)
	assert.Empty(t, txs, "rejected input must not reach the backend")
}

func TestLedger_AddForeignCategory(t *testing.T) {
	ctx := context.Background()
	l, store, actor, _ := newLedger(t)
	other := store.Seed(core.Profile{ID: "user-2", FamilyID: "family-2"}, core.Category{Name: "Lazer"})

	_, err := l.Add(ctx, actor, AddInput{Amount: "5", CategoryID: other[0].ID, PaymentMethod: "pix", Date: "2024-06-01"})
	var me *core.MutationError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "insert", me.Op)
	assert.ErrorIs(t, err, core.ErrAccessDenied)
}

func TestLedger_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	l, _, actor, cats := newLedger(t)

	tx, err := l.Add(ctx, actor, AddInput{Amount: "1.234,56", CategoryID: cats[1].ID, PaymentMethod: "boleto", Date: "2024-06-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(123456), tx.Amount.Cents)

	require.NoError(t, l.Delete(ctx, actor, tx.ID))

	err = l.Delete(ctx, actor, tx.ID)
	var me *core.MutationError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "delete", me.Op)
	assert.Equal(t, tx.ID, me.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	snap, err := l.Load(ctx, actor.FamilyID, june2024)
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
}

func TestLedger_DeleteOtherFamily(t *testing.T) {
	ctx := context.Background()
	l, store, actor, cats := newLedger(t)
	tx, err := l.Add(ctx, actor, AddInput{Amount: "3", CategoryID: cats[0].ID, PaymentMethod: "dinheiro", Date: "2024-06-03"})
	require.NoError(t, err)

	intruder := core.Profile{ID: "user-2", FamilyID: "family-2"}
	store.Seed(intruder)
	assert.ErrorIs(t, l.Delete(ctx, intruder, tx.ID), core.ErrNotFound)

	snap, err := l.Load(ctx, actor.FamilyID, june2024)
	require.NoError(t, err)
	assert.Len(t, snap.Transactions, 1)
}

type failingStore struct {
	*memory.Store
	categoriesErr   error
	transactionsErr error
}

func (f failingStore) ListCategories(ctx context.Context, familyID string) ([]core.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.Store.ListCategories(ctx, familyID)
}

func (f failingStore) ListTransactions(ctx context.Context, familyID string, w core.MonthWindow) ([]core.Transaction, error) {
	if f.transactionsErr != nil {
		return nil, f.transactionsErr
	}
	return f.Store.ListTransactions(ctx, familyID, w)
}

func TestLedger_LoadFailure(t *testing.T) {
	boom := errors.New("connection refused")
	tests := []struct {
		name  string
		store failingStore
		op    string
	}{
		{"categories", failingStore{Store: memory.NewStore(), categoriesErr: boom}, "categories"},
		{"transactions", failingStore{Store: memory.NewStore(), transactionsErr: boom}, "transactions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(tt.store, time.Second, nil)
			_, err := l.Load(context.Background(), "family-1", june2024)

			var de *core.DataFetchError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, tt.op, de.Op)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, core.UserMessage(err), "connection refused")
		})
	}
}

func TestSanitizeDescription(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"  padaria  ":     "padaria",
		"linha\num":       "linha um",
		"bell\a":          "bell",
		"\tcafé da manhã": "café da manhã",
	}
	for in, want := range tests {
		if got := SanitizeDescription(in); got != want {
			t.Errorf("SanitizeDescription(%q) = %q, want %q", in, got, want)
		}
	}
}
