package core

import "sort"

// Placeholder values for transactions whose category is not in the loaded set.
const (
	UnknownCategoryName = "Categoria"
	UnknownCategoryIcon = "•"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID string
	Name       string
	Icon       string
	Amount     Money
}

// Summary is the monthly aggregate shown on the dashboard.
type Summary struct {
	Total      Money
	ByCategory []CategoryAmount // sorted by amount, descending
}

// Summarize totals the transactions and groups them by category. Groups are
// joined to the category list for name and icon and ordered by amount
// descending; equal amounts keep the order in which the category first appeared.
func Summarize(txs []Transaction, cats []Category) Summary {
	byID := make(map[string]Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	var s Summary
	index := make(map[string]int)
	for _, tx := range txs {
		s.Total = s.Total.Add(tx.Amount)
		i, ok := index[tx.CategoryID]
		if !ok {
			ca := CategoryAmount{
				CategoryID: tx.CategoryID,
				Name:       UnknownCategoryName,
				Icon:       UnknownCategoryIcon,
			}
			if c, found := byID[tx.CategoryID]; found {
				ca.Name = c.Name
				ca.Icon = c.Icon
			}
			i = len(s.ByCategory)
			index[tx.CategoryID] = i
			s.ByCategory = append(s.ByCategory, ca)
		}
		s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(tx.Amount)
	}

	sort.SliceStable(s.ByCategory, func(a, b int) bool {
		return s.ByCategory[a].Amount.Cents > s.ByCategory[b].Amount.Cents
	})
	return s
}

// Top returns at most n groups from the head of ByCategory.
func (s Summary) Top(n int) []CategoryAmount {
	if n < 0 {
		n = 0
	}
	if len(s.ByCategory) <= n {
		return s.ByCategory
	}
	return s.ByCategory[:n]
}

// Share returns the group's percentage of total, rounded down, for bar widths.
func (s Summary) Share(ca CategoryAmount) int {
	if s.Total.Cents <= 0 {
		return 0
	}
	return int(ca.Amount.Cents * 100 / s.Total.Cents)
}
