package memory

import (
	"context"
	"errors"
	"testing"

	"casalgastos/internal/core"
)

func TestEnsureProfileAndFamilyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if _, err := s.GetProfile(ctx, "u1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.EnsureProfileAndFamily(ctx, "u1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	p1, _ := s.GetProfile(ctx, "u1")
	if err := s.EnsureProfileAndFamily(ctx, "u1"); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	p2, _ := s.GetProfile(ctx, "u1")
	if p1.FamilyID == "" || p1.FamilyID != p2.FamilyID {
		t.Fatalf("family changed: %q vs %q", p1.FamilyID, p2.FamilyID)
	}
	cats, _ := s.ListCategories(ctx, p1.FamilyID)
	if len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("expected seeded categories, got %d", len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Fatalf("categories not ordered by name: %v", cats)
		}
	}
}

func TestTransactionsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	mine := s.Seed(core.Profile{ID: "u1", FamilyID: "f1"}, core.Category{Name: "Mercado"})
	theirs := s.Seed(core.Profile{ID: "u2", FamilyID: "f2"}, core.Category{Name: "Casa"})

	add := func(day int, cat string) core.Transaction {
		t.Helper()
		tx, err := s.InsertTransaction(ctx, core.Transaction{
			FamilyID: "f1", CreatedBy: "u1", Amount: core.Money{Cents: 100},
			Date: core.NewDate(2024, 6, day), CategoryID: cat, PaymentMethod: core.PaymentPix,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		return tx
	}
	a := add(10, mine[0].ID)
	b := add(20, mine[0].ID)
	c := add(10, mine[0].ID)

	if _, err := s.InsertTransaction(ctx, core.Transaction{
		FamilyID: "f1", CreatedBy: "u1", Amount: core.Money{Cents: 1},
		Date: core.NewDate(2024, 6, 1), CategoryID: theirs[0].ID,
	}); !errors.Is(err, core.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	got, _ := s.ListTransactions(ctx, "f1", core.MonthWindowFor(core.NewDate(2024, 6, 1).Time))
	want := []string{b.ID, c.ID, a.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d rows", len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("row %d = %s, want %s", i, got[i].ID, want[i])
		}
	}

	if other, _ := s.ListTransactions(ctx, "f2", core.MonthWindowFor(core.NewDate(2024, 6, 1).Time)); len(other) != 0 {
		t.Fatalf("family f2 sees %d rows", len(other))
	}
	if july, _ := s.ListTransactions(ctx, "f1", core.MonthWindowFor(core.NewDate(2024, 7, 1).Time)); len(july) != 0 {
		t.Fatalf("july sees %d rows", len(july))
	}

	if err := s.DeleteTransaction(ctx, "f2", a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-family delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "f1", a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "f1", a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
