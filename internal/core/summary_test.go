package core

import "testing"

func TestSummarize(t *testing.T) {
	cats := []Category{{ID: "A", Name: "Mercado", Icon: "🛒"}, {ID: "B", Name: "Casa", Icon: "🏠"}}
	txs := []Transaction{
		{CategoryID: "A", Amount: Money{Cents: 1000}},
		{CategoryID: "B", Amount: Money{Cents: 3000}},
		{CategoryID: "A", Amount: Money{Cents: 500}},
	}
	s := Summarize(txs, cats)
	if s.Total.Cents != 4500 {
		t.Fatalf("total = %d", s.Total.Cents)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("groups = %d", len(s.ByCategory))
	}
	if s.ByCategory[0].CategoryID != "B" || s.ByCategory[0].Amount.Cents != 3000 || s.ByCategory[0].Name != "Casa" {
		t.Fatalf("first group = %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].CategoryID != "A" || s.ByCategory[1].Amount.Cents != 1500 {
		t.Fatalf("second group = %+v", s.ByCategory[1])
	}
	if s.Share(s.ByCategory[0]) != 66 {
		t.Fatalf("share = %d", s.Share(s.ByCategory[0]))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	if s.Total.Cents != 0 || len(s.ByCategory) != 0 || len(s.Top(5)) != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
	if s.Share(CategoryAmount{}) != 0 {
		t.Fatalf("share of empty total must be 0")
	}
}

func TestSummarizeUnknownCategory(t *testing.T) {
	s := Summarize([]Transaction{{CategoryID: "gone", Amount: Money{Cents: 10}}}, nil)
	g := s.ByCategory[0]
	if g.Name != UnknownCategoryName || g.Icon != UnknownCategoryIcon {
		t.Fatalf("placeholder not applied: %+v", g)
	}
}

func TestSummarizeStableTiesAndTop(t *testing.T) {
	var txs []Transaction
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"} {
		txs = append(txs, Transaction{CategoryID: id, Amount: Money{Cents: 100}})
	}
	s := Summarize(txs, nil)
	top := s.Top(5)
	if len(top) != 5 {
		t.Fatalf("top = %d", len(top))
	}
	for i, want := range []string{"c1", "c2", "c3", "c4", "c5"} {
		if top[i].CategoryID != want {
			t.Fatalf("top[%d] = %s, want %s", i, top[i].CategoryID, want)
		}
	}
	if len(s.ByCategory) != 7 {
		t.Fatalf("full list truncated: %d", len(s.ByCategory))
	}
}
