package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"casalgastos/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "test.sqlite"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func provision(t *testing.T, r *SQLiteRepository, userID string) (core.Profile, []core.Category) {
	t.Helper()
	ctx := context.Background()
	if err := r.EnsureProfileAndFamily(ctx, userID); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	p, err := r.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	cats, err := r.ListCategories(ctx, p.FamilyID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	return p, cats
}

func TestProvisioning(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	if _, err := r.GetProfile(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	p, cats := provision(t, r, "user-1")
	if len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("expected %d categories, got %d", len(core.DefaultCategories()), len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Fatalf("categories not sorted: %q before %q", cats[i-1].Name, cats[i].Name)
		}
	}

	again, _ := provision(t, r, "user-1")
	if again.FamilyID != p.FamilyID {
		t.Fatalf("second provisioning changed family")
	}
	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestInsertListDelete(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	p, cats := provision(t, r, "user-1")
	_, otherCats := provision(t, r, "user-2")

	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	insert := func(day int, cents int64, cat string) (core.Transaction, error) {
		return r.InsertTransaction(ctx, core.Transaction{
			FamilyID:      p.FamilyID,
			CreatedBy:     p.ID,
			Amount:        core.Money{Cents: cents},
			Date:          core.NewDate(2024, 6, day),
			CategoryID:    cat,
			PaymentMethod: core.PaymentCard,
			Description:   "feira",
		})
	}

	a, err := insert(5, 1250, cats[0].ID)
	if err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if a.ID == "" || a.CreatedAt.IsZero() || a.Amount.Cents != 1250 || a.Date.String() != "2024-06-05" {
		t.Fatalf("unexpected stored row: %+v", a)
	}
	b, _ := insert(20, 300, cats[1].ID)
	c, _ := insert(5, 99, cats[0].ID)
	if _, err := r.InsertTransaction(ctx, core.Transaction{
		FamilyID: p.FamilyID, CreatedBy: p.ID, Amount: core.Money{Cents: 1},
		Date: core.NewDate(2024, 7, 1), CategoryID: cats[0].ID, PaymentMethod: core.PaymentPix,
	}); err != nil {
		t.Fatalf("insert july: %v", err)
	}

	if _, err := insert(6, 100, otherCats[0].ID); !errors.Is(err, core.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	june := core.MonthWindowFor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	got, err := r.ListTransactions(ctx, p.FamilyID, june)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{b.ID, c.ID, a.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("row %d = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if got[2].PaymentMethod != core.PaymentCard || got[2].Description != "feira" {
		t.Fatalf("fields lost: %+v", got[2])
	}

	if err := r.DeleteTransaction(ctx, "someone-else", a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-family delete: %v", err)
	}
	if err := r.DeleteTransaction(ctx, p.FamilyID, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.DeleteTransaction(ctx, p.FamilyID, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
