// Package core provides amount and timestamp helpers for the data model.
//
// Amounts are plain JSON numbers in the persisted document. Sums go through
// decimal arithmetic so that 0.1 + 0.2 style drift never leaks into merged
// expenses or aggregates.
package core

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout matches the ISO-8601 form written for generated expenses,
// e.g. 2025-01-31T18:04:05.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// SumAmounts adds amounts exactly and returns the nearest float64.
// Non-finite inputs are skipped; decimal cannot represent them.
func SumAmounts(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Float64()
	return f
}

// AddAmounts adds finite amounts exactly, like SumAmounts. Once any input is
// NaN or infinite the result follows float64 arithmetic instead, so +Inf
// stays +Inf and NaN poisons the total.
func AddAmounts(amounts ...float64) float64 {
	var plain float64
	finite := true
	for _, a := range amounts {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			finite = false
		}
		plain += a
	}
	if !finite {
		return plain
	}
	return SumAmounts(amounts...)
}

// Amounts lists the amounts of expenses in order.
func Amounts(expenses []Expense) []float64 {
	out := make([]float64, len(expenses))
	for i, e := range expenses {
		out[i] = e.Amount
	}
	return out
}

// SumExpenses returns the exact total of the given expenses.
func SumExpenses(expenses []Expense) float64 {
	return SumAmounts(Amounts(expenses)...)
}

// FormatAmount renders an amount with the shortest decimal representation,
// so 30 becomes "30" and 12.5 becomes "12.5".
func FormatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps (with or without fractional
// seconds) and zone-less date or date-time strings, which are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognised timestamp: " + strconv.Quote(s))
}
