// Package views derives read-only projections from a state snapshot: the
// filtered expense list, budget summaries and chart series. Nothing here
// mutates its input.
package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"fintrack/internal/core"
)

// SortOrder selects how Filter orders its result.
type SortOrder string

const (
	SortDateDesc   SortOrder = "date-desc"
	SortDateAsc    SortOrder = "date-asc"
	SortAmountDesc SortOrder = "amount-desc"
	SortAmountAsc  SortOrder = "amount-asc"
)

var ErrInvalidSort = errors.New("invalid sort order")

// ParseSortOrder accepts the four sort names. Empty means SortDateDesc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// Query narrows and orders a list of expenses. Zero fields do not filter.
type Query struct {
	// Text matches the description case-insensitively, or the amount's
	// shortest decimal form as a substring.
	Text       string
	From       time.Time
	To         time.Time
	CategoryID string
	Sort       SortOrder
	// Location decides where calendar days start. Nil means UTC.
	Location *time.Location
}

// Filter returns the matching expenses in q.Sort order. From is taken at
// the start of its day and To runs through the end of its day. Expenses
// with unparseable dates never match a date range and sort as the zero time.
// Ties keep their input order.
func Filter(expenses []core.Expense, q Query) []core.Expense {
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))

	var from, until time.Time
	if !q.From.IsZero() {
		from = startOfDay(q.From, loc)
	}
	if !q.To.IsZero() {
		until = startOfDay(q.To, loc).AddDate(0, 0, 1)
	}

	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if q.CategoryID != "" && e.CategoryID != q.CategoryID {
			continue
		}
		if text != "" && !matchesText(e, text) {
			continue
		}
		if !from.IsZero() || !until.IsZero() {
			t, err := e.Time()
			if err != nil {
				continue
			}
			if !from.IsZero() && t.Before(from) {
				continue
			}
			if !until.IsZero() && !t.Before(until) {
				continue
			}
		}
		out = append(out, e)
	}

	sortExpenses(out, q.Sort)
	return out
}

func matchesText(e core.Expense, text string) bool {
	return strings.Contains(strings.ToLower(e.Description), text) ||
		strings.Contains(core.FormatAmount(e.Amount), text)
}

func sortExpenses(es []core.Expense, order SortOrder) {
	switch order {
	case SortAmountDesc:
		slices.SortStableFunc(es, func(a, b core.Expense) int { return compareFloat(b.Amount, a.Amount) })
	case SortAmountAsc:
		slices.SortStableFunc(es, func(a, b core.Expense) int { return compareFloat(a.Amount, b.Amount) })
	case SortDateAsc:
		slices.SortStableFunc(es, func(a, b core.Expense) int { return expenseTime(a).Compare(expenseTime(b)) })
	default:
		slices.SortStableFunc(es, func(a, b core.Expense) int { return expenseTime(b).Compare(expenseTime(a)) })
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func expenseTime(e core.Expense) time.Time {
	t, err := e.Time()
	if err != nil {
		return time.Time{}
	}
	return t
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
