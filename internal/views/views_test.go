package views

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func ids(es []core.Expense) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var sample = []core.Expense{
	{ID: "e1", Amount: 30, Date: "2024-03-01T09:00:00.000Z", Description: "Coffee beans", CategoryID: "food"},
	{ID: "e2", Amount: 12.5, Date: "2024-03-05T18:30:00.000Z", Description: "Taxi", CategoryID: "travel"},
	{ID: "e3", Amount: 130, Date: "2024-03-05T23:59:00.000Z", Description: "Groceries", CategoryID: "food"},
	{ID: "e4", Amount: 12.5, Date: "2024-02-28T08:00:00.000Z", CategoryID: "travel"},
	{ID: "e5", Amount: 7, Date: "not a date", Description: "coffee", CategoryID: "food"},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"default sort is newest first", Query{}, []string{"e3", "e2", "e1", "e4", "e5"}},
		{"date ascending", Query{Sort: SortDateAsc}, []string{"e5", "e4", "e1", "e2", "e3"}},
		{"amount descending keeps ties stable", Query{Sort: SortAmountDesc}, []string{"e3", "e1", "e2", "e4", "e5"}},
		{"amount ascending", Query{Sort: SortAmountAsc}, []string{"e5", "e2", "e4", "e1", "e3"}},
		{"description is case insensitive", Query{Text: "COFFEE", Sort: SortAmountAsc}, []string{"e5", "e1"}},
		{"amount substring", Query{Text: "30"}, []string{"e3", "e1"}},
		{"decimal amount substring", Query{Text: "2.5", Sort: SortDateAsc}, []string{"e4", "e2"}},
		{"to covers the whole day", Query{From: day(2024, 3, 5), To: day(2024, 3, 5)}, []string{"e3", "e2"}},
		{"from only", Query{From: day(2024, 3, 1), Sort: SortDateAsc}, []string{"e1", "e2", "e3"}},
		{"to only", Query{To: day(2024, 2, 28)}, []string{"e4"}},
		{"category", Query{CategoryID: "travel"}, []string{"e2", "e4"}},
		{"no match", Query{Text: "rent"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Filter(sample, tt.q)); !equalIDs(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterUsesLocationForDayBoundaries(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:59 UTC on the 5th is the 6th in UTC+2
	got := ids(Filter(sample, Query{From: day(2024, 3, 6), To: day(2024, 3, 6), Location: loc}))
	if !equalIDs(got, []string{"e3"}) {
		t.Fatalf("got %v", got)
	}
}

func TestFilterDoesNotReorderInput(t *testing.T) {
	in := append([]core.Expense(nil), sample...)
	Filter(in, Query{Sort: SortAmountAsc})
	if !equalIDs(ids(in), ids(sample)) {
		t.Fatalf("input reordered: %v", ids(in))
	}
}

func TestParseSortOrder(t *testing.T) {
	if o, err := ParseSortOrder(""); err != nil || o != SortDateDesc {
		t.Fatalf("empty: %v %v", o, err)
	}
	if o, err := ParseSortOrder("Amount-Asc"); err != nil || o != SortAmountAsc {
		t.Fatalf("mixed case: %v %v", o, err)
	}
	if _, err := ParseSortOrder("name"); !errors.Is(err, ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	s := core.State{
		Categories: []core.Category{
			{ID: "food", Name: "Food", Color: core.Palette[0], Budget: 200},
			{ID: "fun", Name: "Fun", Color: "#123456", Budget: 0},
		},
		Expenses: []core.Expense{
			{ID: "e1", Amount: 0.1, CategoryID: "food"},
			{ID: "e2", Amount: 0.2, CategoryID: "food"},
			{ID: "e3", Amount: 49.7, CategoryID: "food"},
			{ID: "e4", Amount: 10, CategoryID: "fun"},
			{ID: "e5", Amount: 5, CategoryID: "ghost"},
		},
		TotalBudgetTarget: 100,
	}
	got := Summarize(s)

	if got.TotalSpent != 65 || got.Remaining != 35 || got.TotalBudgetTarget != 100 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	food, fun := got.Categories[0], got.Categories[1]
	if food.Spent != 50 || food.Progress != 25 || food.Remaining != 150 || food.ExpenseCount != 3 {
		t.Fatalf("unexpected food summary: %+v", food)
	}
	if food.TextColor != "hsl(326, 70%, 45%)" {
		t.Fatalf("unexpected text colour %q", food.TextColor)
	}
	if fun.Progress != 0 || fun.TextColor != core.FallbackTextColor {
		t.Fatalf("zero budget should give zero progress and fallback colour: %+v", fun)
	}
}

func TestDistribution(t *testing.T) {
	s := core.State{
		Categories: []core.Category{
			{ID: "a", Name: "A", Color: core.Palette[1]},
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C"},
		},
		Expenses: []core.Expense{
			{ID: "1", Amount: 5, CategoryID: "c"},
			{ID: "2", Amount: 2.5, CategoryID: "a"},
			{ID: "3", Amount: 2.5, CategoryID: "a"},
		},
	}
	got := Distribution(s)
	if len(got) != 2 || got[0].CategoryID != "a" || got[0].Value != 5 || got[1].CategoryID != "c" {
		t.Fatalf("unexpected distribution: %+v", got)
	}
	if len(Distribution(core.State{Categories: s.Categories})) != 0 {
		t.Fatalf("no expenses should give empty distribution")
	}
}

func TestMonthlyTrend(t *testing.T) {
	expenses := []core.Expense{
		{Amount: 10, Date: "2023-10-15T00:00:00.000Z"},
		{Amount: 20, Date: "2024-01-31T23:30:00.000Z"},
		{Amount: 5, Date: "2024-03-01T00:00:00.000Z"},
		{Amount: 1, Date: "2024-03-20T00:00:00.000Z"},
		{Amount: 99, Date: "2024-04-01T00:00:00.000Z"},
		{Amount: 99, Date: "bad"},
	}
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	got := MonthlyTrend(expenses, now, 6, nil)

	wantLabels := []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}
	wantTotals := []float64{10, 0, 0, 20, 0, 6}
	if len(got) != 6 {
		t.Fatalf("got %d buckets", len(got))
	}
	for i, b := range got {
		if b.Label != wantLabels[i] || b.Total != wantTotals[i] {
			t.Errorf("bucket %d = %s %v, want %s %v", i, b.Label, b.Total, wantLabels[i], wantTotals[i])
		}
	}
	if !got[0].Start.Equal(day(2023, 10, 1)) {
		t.Errorf("first bucket starts %v", got[0].Start)
	}
	if len(MonthlyTrend(expenses, now, 0, nil)) != 0 {
		t.Errorf("zero months should give no buckets")
	}
}

func TestDailySpending(t *testing.T) {
	expenses := []core.Expense{
		{Amount: 3, Date: "2024-02-01T10:00:00.000Z"},
		{Amount: 4, Date: "2024-02-01T22:00:00.000Z"},
		{Amount: 8, Date: "2024-02-29T23:59:59.000Z"},
		{Amount: 50, Date: "2024-03-01T00:00:00.000Z"},
	}
	got := DailySpending(expenses, 2024, time.February, nil)
	if len(got) != 29 {
		t.Fatalf("leap February should have 29 buckets, got %d", len(got))
	}
	if got[0].Label != "1" || got[0].Total != 7 || got[28].Label != "29" || got[28].Total != 8 {
		t.Fatalf("unexpected buckets: first %+v last %+v", got[0], got[28])
	}
	if !HasSpending(got) {
		t.Fatalf("expected spending")
	}
	if HasSpending(DailySpending(expenses, 2024, time.June, nil)) {
		t.Fatalf("June should be empty")
	}
}
