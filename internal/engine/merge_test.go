package engine

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"fintrack/internal/core"
)

func idsOwnedBy(s core.State, categoryID string) []string {
	var ids []string
	for _, e := range s.ExpensesFor(categoryID) {
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestMergeIndividualReparentsEveryExpense(t *testing.T) {
	r := testReducer()
	s := sampleState()
	before := map[string]core.Expense{}
	for _, e := range s.ExpensesFor("c1") {
		before[e.ID] = e
	}

	next := r.Reduce(s, MergeCategory{SourceCategoryID: "c1", TargetCategoryID: "c2", Mode: MergeIndividual})

	if next.HasCategory("c1") {
		t.Fatalf("source category still present")
	}
	if len(next.Expenses) != len(s.Expenses) {
		t.Fatalf("expense count changed: %d -> %d", len(s.Expenses), len(next.Expenses))
	}
	if got := idsOwnedBy(next, "c1"); len(got) != 0 {
		t.Fatalf("source still owns %v", got)
	}
	for id, old := range before {
		e, ok := next.Expense(id)
		if !ok {
			t.Fatalf("expense %s disappeared", id)
		}
		if e.CategoryID != "c2" || e.Amount != old.Amount || e.Date != old.Date || e.Description != old.Description {
			t.Fatalf("expense %s changed beyond its category: %+v", id, e)
		}
	}
	if got, want := idsOwnedBy(next, "c2"), []string{"e1", "e2", "e3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("target owns %v, want %v", got, want)
	}
	if next.Categories[0] != s.Categories[1] {
		t.Fatalf("target category must not be modified")
	}
}

func TestMergeIndividualAppendsMovedExpenses(t *testing.T) {
	next := Reduce(sampleState(), MergeCategory{SourceCategoryID: "c1", TargetCategoryID: "c2", Mode: MergeIndividual})
	var order []string
	for _, e := range next.Expenses {
		order = append(order, e.ID)
	}
	if want := []string{"e3", "e1", "e2"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestMergeTotalConcreteScenario(t *testing.T) {
	s := core.State{
		Categories: []core.Category{{ID: "c1", Name: "Food", Budget: 100}, {ID: "c2", Name: "Misc", Budget: 50}},
		Expenses: []core.Expense{
			{ID: "e1", Amount: 30, CategoryID: "c1"},
			{ID: "e2", Amount: 20, CategoryID: "c1"},
		},
		TotalBudgetTarget: 25000,
	}
	next := testReducer().Reduce(s, MergeCategory{SourceCategoryID: "c1", TargetCategoryID: "c2", Mode: MergeTotal})

	if want := []core.Category{{ID: "c2", Name: "Misc", Budget: 50}}; !reflect.DeepEqual(next.Categories, want) {
		t.Fatalf("categories = %+v", next.Categories)
	}
	if len(next.Expenses) != 1 {
		t.Fatalf("expected one synthetic expense, got %+v", next.Expenses)
	}
	got := next.Expenses[0]
	want := core.Expense{
		ID:          "generated",
		Amount:      50,
		Date:        "2025-06-01T12:30:00.000Z",
		Description: "Merged from Food",
		CategoryID:  "c2",
	}
	if got != want {
		t.Fatalf("synthetic = %+v, want %+v", got, want)
	}
}

func TestMergeTotalKeepsOtherExpenses(t *testing.T) {
	next := testReducer().Reduce(sampleState(), MergeCategory{SourceCategoryID: "c1", TargetCategoryID: "c2", Mode: MergeTotal})
	for _, id := range []string{"e1", "e2"} {
		if _, ok := next.Expense(id); ok {
			t.Fatalf("original source expense %s survived", id)
		}
	}
	if _, ok := next.Expense("e3"); !ok {
		t.Fatalf("target's own expense removed")
	}
	owned := next.ExpensesFor("c2")
	if len(owned) != 2 || owned[1].Amount != 50 {
		t.Fatalf("unexpected target expenses: %+v", owned)
	}
}

func TestMergeTotalSumIsExact(t *testing.T) {
	s := core.State{
		Categories: []core.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		Expenses: []core.Expense{
			{ID: "1", Amount: 0.1, CategoryID: "a"},
			{ID: "2", Amount: 0.2, CategoryID: "a"},
		},
	}
	next := testReducer().Reduce(s, MergeCategory{SourceCategoryID: "a", TargetCategoryID: "b", Mode: MergeTotal})
	if len(next.Expenses) != 1 || next.Expenses[0].Amount != 0.3 {
		t.Fatalf("expected exact 0.3, got %+v", next.Expenses)
	}
}

func TestMergeTotalZeroSumCreatesNothing(t *testing.T) {
	cases := map[string][]core.Expense{
		"no expenses": {{ID: "x", Amount: 5, CategoryID: "c2"}},
		"zero amounts": {
			{ID: "x", Amount: 5, CategoryID: "c2"},
			{ID: "z1", Amount: 0, CategoryID: "c1"},
			{ID: "z2", Amount: 0, CategoryID: "c1"},
		},
	}
	for name, expenses := range cases {
		t.Run(name, func(t *testing.T) {
			s := core.State{
				Categories: []core.Category{{ID: "c1", Name: "Src"}, {ID: "c2", Name: "Dst"}},
				Expenses:   expenses,
			}
			next := testReducer().Reduce(s, MergeCategory{SourceCategoryID: "c1", TargetCategoryID: "c2", Mode: MergeTotal})
			if next.HasCategory("c1") {
				t.Fatalf("source not removed")
			}
			if len(next.Expenses) != 1 || next.Expenses[0].ID != "x" {
				t.Fatalf("unexpected expenses: %+v", next.Expenses)
			}
		})
	}
}

func TestMergeTotalNonFiniteAmounts(t *testing.T) {
	merge := func(amounts ...float64) core.State {
		s := core.State{Categories: []core.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}
		for i, a := range amounts {
			s.Expenses = append(s.Expenses, core.Expense{ID: string(rune('1' + i)), Amount: a, CategoryID: "a"})
		}
		return testReducer().Reduce(s, MergeCategory{SourceCategoryID: "a", TargetCategoryID: "b", Mode: MergeTotal})
	}

	next := merge(math.Inf(1), 5)
	if len(next.Expenses) != 1 || !math.IsInf(next.Expenses[0].Amount, 1) {
		t.Fatalf("infinite total not carried over: %+v", next.Expenses)
	}
	next = merge(math.NaN(), 5)
	if len(next.Expenses) != 0 || next.HasCategory("a") {
		t.Fatalf("NaN total should drop the expenses without a merged record: %+v", next)
	}
}

func TestMergeMissingSourceIsNoop(t *testing.T) {
	s := sampleState()
	for _, mode := range []MergeMode{MergeIndividual, MergeTotal} {
		next := testReducer().Reduce(s, MergeCategory{SourceCategoryID: "ghost", TargetCategoryID: "c2", Mode: mode})
		if !reflect.DeepEqual(next, s) {
			t.Fatalf("%s: expected no-op, got %+v", mode, next)
		}
		again := testReducer().Reduce(next, MergeCategory{SourceCategoryID: "ghost", TargetCategoryID: "c2", Mode: mode})
		if !reflect.DeepEqual(again, s) {
			t.Fatalf("%s: repeated merge not idempotent", mode)
		}
	}
}

func TestMergeOrphanedExpensesUseUnknownName(t *testing.T) {
	s := core.State{
		Categories: []core.Category{{ID: "c2", Name: "Dst"}},
		Expenses:   []core.Expense{{ID: "o", Amount: 7, CategoryID: "gone"}},
	}
	next := testReducer().Reduce(s, MergeCategory{SourceCategoryID: "gone", TargetCategoryID: "c2", Mode: MergeTotal})
	if len(next.Expenses) != 1 || next.Expenses[0].Description != "Merged from Unknown Category" {
		t.Fatalf("unexpected expenses: %+v", next.Expenses)
	}
}

func TestMergeIntoSelfOrUnknownModeIsNoop(t *testing.T) {
	s := sampleState()
	for _, a := range []MergeCategory{
		{SourceCategoryID: "c1", TargetCategoryID: "c1", Mode: MergeTotal},
		{SourceCategoryID: "c1", TargetCategoryID: "c1", Mode: MergeIndividual},
		{SourceCategoryID: "c1", TargetCategoryID: "c2", Mode: "sideways"},
	} {
		if next := Reduce(s, a); !reflect.DeepEqual(next, s) {
			t.Fatalf("%+v changed state", a)
		}
	}
}

func TestMergeIntoUnknownTargetStillApplies(t *testing.T) {
	next := Reduce(sampleState(), MergeCategory{SourceCategoryID: "c1", TargetCategoryID: "ghost", Mode: MergeIndividual})
	if got := idsOwnedBy(next, "ghost"); !reflect.DeepEqual(got, []string{"e1", "e2"}) {
		t.Fatalf("expected expenses under ghost, got %v", got)
	}
}
