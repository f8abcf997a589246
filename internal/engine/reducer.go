package engine

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Reducer applies actions to states. The zero value is ready to use and
// reads the wall clock and random UUIDs; tests inject both.
type Reducer struct {
	Now   func() time.Time
	NewID func() string
}

var defaultReducer Reducer

// Reduce applies a with the default clock and id generator.
func Reduce(s core.State, a Action) core.State {
	return defaultReducer.Reduce(s, a)
}

func (r Reducer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Reducer) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

// Reduce returns the state that results from applying a to s.
// s is never modified; collections that change get new backing arrays and
// unchanged collections are shared. Unknown actions return s as is.
func (r Reducer) Reduce(s core.State, a Action) core.State {
	switch a := a.(type) {
	case SetState:
		return a.State.Clone()

	case AddCategory:
		next := s
		next.Categories = append(slices.Clip(s.Categories), a.Category)
		return next

	case UpdateCategory:
		next := s
		next.Categories = replaceWhere(s.Categories, func(c core.Category) bool { return c.ID == a.Category.ID }, a.Category)
		return next

	case DeleteCategory:
		return deleteCategory(s, a.ID)

	case AddExpense:
		next := s
		next.Expenses = append(slices.Clip(s.Expenses), a.Expense)
		return next

	case UpdateExpense:
		next := s
		next.Expenses = replaceWhere(s.Expenses, func(e core.Expense) bool { return e.ID == a.Expense.ID }, a.Expense)
		return next

	case DeleteExpense:
		next := s
		next.Expenses = removeWhere(s.Expenses, func(e core.Expense) bool { return e.ID == a.ID })
		return next

	case MoveExpense:
		return moveExpense(s, a)

	case MergeCategory:
		return r.mergeCategory(s, a)

	case UpdateTotalBudget:
		next := s
		next.TotalBudgetTarget = a.Value
		return next
	}
	return s
}

func deleteCategory(s core.State, id string) core.State {
	next := s
	next.Categories = removeWhere(s.Categories, func(c core.Category) bool { return c.ID == id })
	next.Expenses = removeWhere(s.Expenses, func(e core.Expense) bool { return e.CategoryID == id })
	return next
}

func moveExpense(s core.State, a MoveExpense) core.State {
	if !slices.ContainsFunc(s.Expenses, func(e core.Expense) bool { return e.ID == a.ExpenseID }) {
		return s
	}
	next := s
	next.Expenses = slices.Clone(s.Expenses)
	for i := range next.Expenses {
		if next.Expenses[i].ID == a.ExpenseID {
			next.Expenses[i].CategoryID = a.TargetCategoryID
		}
	}
	return next
}

// replaceWhere returns in unchanged when nothing matches, otherwise a copy
// with every match replaced by v.
func replaceWhere[T any](in []T, match func(T) bool, v T) []T {
	if !slices.ContainsFunc(in, match) {
		return in
	}
	out := slices.Clone(in)
	for i := range out {
		if match(out[i]) {
			out[i] = v
		}
	}
	return out
}

// removeWhere returns in unchanged when nothing matches, otherwise a fresh
// slice holding the elements that do not match.
func removeWhere[T any](in []T, match func(T) bool) []T {
	if !slices.ContainsFunc(in, match) {
		return in
	}
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}
