package core

import (
	"strings"
	"time"
)

const monthLayout = "2006-01"

// MonthWindow is the half-open date range [Start, End) covering one calendar month.
type MonthWindow struct {
	Start Date
	End   Date
}

// MonthWindowFor returns the window of the month containing t. The clock and
// location of t are ignored; only its calendar year and month matter.
func MonthWindowFor(t time.Time) MonthWindow {
	start := NewDate(t.Year(), int(t.Month()), 1)
	return MonthWindow{Start: start, End: Date{Time: start.AddDate(0, 1, 0)}}
}

// ParseMonth parses "YYYY-MM" into the corresponding window.
func ParseMonth(s string) (MonthWindow, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return MonthWindow{}, ErrInvalidDate
	}
	return MonthWindowFor(t), nil
}

// Shift moves the window by n whole months.
func (w MonthWindow) Shift(n int) MonthWindow {
	return MonthWindowFor(w.Start.AddDate(0, n, 0))
}

// Label is the "YYYY-MM" form used in URLs.
func (w MonthWindow) Label() string {
	return w.Start.Format(monthLayout)
}

// Contains reports whether d falls inside the window.
func (w MonthWindow) Contains(d Date) bool {
	return !d.Before(w.Start.Time) && d.Before(w.End.Time)
}

func (w MonthWindow) Year() int         { return w.Start.Year() }
func (w MonthWindow) Month() time.Month { return w.Start.Month() }
