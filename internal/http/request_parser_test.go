package http

import (
	"net/url"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/engine"
	"fintrack/internal/views"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"defaults", "", MonthParams{2024, time.July}, false},
		{"explicit", "year=2023&month=2", MonthParams{2023, time.February}, false},
		{"trimmed", "month=%2011%20", MonthParams{2024, time.November}, false},
		{"month out of range", "month=0", MonthParams{}, true},
		{"year not a number", "year=twenty", MonthParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseMonthParams(q, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMonths(t *testing.T) {
	for query, want := range map[string]int{"": defaultMonths, "months=12": 12, "months=1": 1} {
		q, _ := url.ParseQuery(query)
		if got, err := ParseMonths(q); err != nil || got != want {
			t.Fatalf("%q: got %d, %v", query, got, err)
		}
	}
	for _, query := range []string{"months=0", "months=37", "months=x"} {
		q, _ := url.ParseQuery(query)
		if _, err := ParseMonths(q); err == nil {
			t.Fatalf("%q: expected error", query)
		}
	}
}

func TestParseExpenseQuery(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	q, _ := url.ParseQuery("q=%20coffee\x01%20&from=2024-03-01&to=2024-03-31&category=food&sort=AMOUNT-ASC")
	got, err := ParseExpenseQuery(q, rome)
	if err != nil {
		t.Fatalf("ParseExpenseQuery: %v", err)
	}
	if got.Text != "coffee" || got.CategoryID != "food" || got.Sort != views.SortAmountAsc {
		t.Fatalf("unexpected query: %+v", got)
	}
	if !got.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, rome)) || got.Location != rome {
		t.Fatalf("from not in location: %v", got.From)
	}
	if key := queryKey(got); key != "coffee|food|2024-03-01|2024-03-31|amount-asc" {
		t.Fatalf("queryKey = %q", key)
	}
}

func TestFillIDs(t *testing.T) {
	newID := func() string { return "generated" }

	a := fillIDs(engine.AddExpense{Expense: core.Expense{Amount: 1}}, newID).(engine.AddExpense)
	if a.Expense.ID != "generated" {
		t.Fatalf("expense id not filled")
	}
	c := fillIDs(engine.AddCategory{Category: core.Category{ID: "keep"}}, newID).(engine.AddCategory)
	if c.Category.ID != "keep" {
		t.Fatalf("existing id replaced")
	}
	u := fillIDs(engine.UpdateExpense{}, newID).(engine.UpdateExpense)
	if u.Expense.ID != "" {
		t.Fatalf("update should not get an id")
	}
}

func TestValidateAction(t *testing.T) {
	tests := []struct {
		name    string
		action  engine.Action
		wantErr bool
	}{
		{"category ok", engine.AddCategory{Category: core.Category{ID: "c", Name: "Food"}}, false},
		{"category without name", engine.UpdateCategory{Category: core.Category{ID: "c"}}, true},
		{"delete without id", engine.DeleteExpense{}, true},
		{"move without target", engine.MoveExpense{ExpenseID: "e"}, true},
		{"merge ok", engine.MergeCategory{SourceCategoryID: "a", TargetCategoryID: "b", Mode: engine.MergeTotal}, false},
		{"negative total", engine.UpdateTotalBudget{Value: -5}, true},
		{"set state", engine.SetState{State: core.DefaultState()}, false},
	}
	for _, tt := range tests {
		if err := validateAction(tt.action); (err != nil) != tt.wantErr {
			t.Fatalf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
