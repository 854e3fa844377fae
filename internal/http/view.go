package http

import (
	"fmt"
	"html/template"

	"casalgastos/internal/core"
	"casalgastos/internal/session"
)

// topCategories is how many groups the summary card lists.
const topCategories = 5

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var templateFuncs = template.FuncMap{
	"brl": func(m core.Money) string { return m.BRL() },
}

type topRow struct {
	Icon   string
	Name   string
	Amount string
	Share  int
}

type paymentOption struct {
	Value string
	Label string
}

type transactionRow struct {
	ID          string
	Date        string
	Icon        string
	Category    string
	Payment     string
	Description string
	Amount      string
}

type dashboardView struct {
	MonthName      string
	FamilyCode     string
	Month          string
	Prev           string
	Next           string
	Today          string
	Error          string
	Busy           bool
	Total          string
	Top            []topRow
	Form           session.FormState
	Categories     []core.Category
	PaymentMethods []paymentOption
	Transactions   []transactionRow
}

type indexView struct {
	Error string
}

// monthName renders a window as "junho de 2024".
func monthName(w core.MonthWindow) string {
	return fmt.Sprintf("%s de %d", monthNames[w.Month()-1], w.Year())
}

func newDashboardView(st session.State, today core.Date) dashboardView {
	v := dashboardView{
		MonthName:  monthName(st.Window),
		FamilyCode: st.Profile.FamilyID,
		Month:      st.Window.Label(),
		Prev:       st.Window.Shift(-1).Label(),
		Next:       st.Window.Shift(1).Label(),
		Today:      core.MonthWindowFor(today.Time).Label(),
		Error:      st.LastError,
		Busy:       st.Busy,
		Total:      st.Summary.Total.BRL(),
		Form:       st.Form,
		Categories: st.Categories,
	}

	for _, ca := range st.Summary.Top(topCategories) {
		v.Top = append(v.Top, topRow{
			Icon:   ca.Icon,
			Name:   ca.Name,
			Amount: ca.Amount.BRL(),
			Share:  st.Summary.Share(ca),
		})
	}

	for _, pm := range core.PaymentMethods() {
		v.PaymentMethods = append(v.PaymentMethods, paymentOption{Value: string(pm), Label: pm.Label()})
	}

	byID := make(map[string]core.Category, len(st.Categories))
	for _, c := range st.Categories {
		byID[c.ID] = c
	}
	for _, tx := range st.Transactions {
		row := transactionRow{
			ID:          tx.ID,
			Date:        tx.Date.Format("02/01"),
			Icon:        core.UnknownCategoryIcon,
			Category:    core.UnknownCategoryName,
			Payment:     tx.PaymentMethod.Label(),
			Description: tx.Description,
			Amount:      tx.Amount.BRL(),
		}
		if c, ok := byID[tx.CategoryID]; ok {
			row.Icon = c.Icon
			row.Category = c.Name
		}
		v.Transactions = append(v.Transactions, row)
	}
	return v
}
