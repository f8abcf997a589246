package views

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Bucket is one bar of a time series.
type Bucket struct {
	Label string    `json:"name"`
	Start time.Time `json:"start"`
	Total float64   `json:"total"`
}

// MonthlyTrend returns n calendar months ending with the month containing
// now, oldest first, labelled Jan..Dec. Months are whole, so an expense late
// on the last day still counts.
func MonthlyTrend(expenses []core.Expense, now time.Time, n int, loc *time.Location) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	starts := make([]time.Time, n)
	for i := range starts {
		starts[i] = current.AddDate(0, i-n+1, 0)
	}
	return bucketize(expenses, starts, func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
		func(t time.Time) string { return t.Format("Jan") })
}

// DailySpending returns one bucket per day of the given month, labelled
// with the day number.
func DailySpending(expenses []core.Expense, year int, month time.Month, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()

	starts := make([]time.Time, days)
	for i := range starts {
		starts[i] = first.AddDate(0, 0, i)
	}
	return bucketize(expenses, starts, func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
		func(t time.Time) string { return strconv.Itoa(t.Day()) })
}

// HasSpending reports whether any bucket is above zero.
func HasSpending(buckets []Bucket) bool {
	for _, b := range buckets {
		if b.Total > 0 {
			return true
		}
	}
	return false
}

// bucketize sums expenses into consecutive [start, next(start)) windows.
// starts must be ascending and contiguous.
func bucketize(expenses []core.Expense, starts []time.Time, next func(time.Time) time.Time, label func(time.Time) string) []Bucket {
	totals := make([]decimal.Decimal, len(starts))
	if len(starts) > 0 {
		lo, hi := starts[0], next(starts[len(starts)-1])
		for _, e := range expenses {
			t, err := e.Time()
			if err != nil || t.Before(lo) || !t.Before(hi) {
				continue
			}
			for i := len(starts) - 1; i >= 0; i-- {
				if !t.Before(starts[i]) {
					totals[i] = totals[i].Add(amount(e.Amount))
					break
				}
			}
		}
	}

	out := make([]Bucket, len(starts))
	for i, s := range starts {
		out[i] = Bucket{Label: label(s), Start: s, Total: toFloat(totals[i])}
	}
	return out
}
