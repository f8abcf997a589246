package http

import (
	"errors"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/engine"
	"fintrack/internal/views"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// fillIDs gives ADD_CATEGORY and ADD_EXPENSE payloads an id when the client
// sent none. Every other action passes through unchanged.
func fillIDs(a engine.Action, newID func() string) engine.Action {
	switch a := a.(type) {
	case engine.AddCategory:
		if strings.TrimSpace(a.Category.ID) == "" {
			a.Category.ID = newID()
		}
		return a
	case engine.AddExpense:
		if strings.TrimSpace(a.Expense.ID) == "" {
			a.Expense.ID = newID()
		}
		return a
	}
	return a
}

var errHydrationOnly = errors.New("hydration only")

// validateAction checks the payload shape of actions that carry a record.
// SET_STATE is refused outright. Reference and uniqueness checks are left to
// the store.
func validateAction(a engine.Action) error {
	switch a := a.(type) {
	case engine.SetState:
		return errHydrationOnly
	case engine.AddCategory:
		return a.Category.Validate()
	case engine.UpdateCategory:
		return a.Category.Validate()
	case engine.AddExpense:
		return a.Expense.Validate()
	case engine.UpdateExpense:
		return a.Expense.Validate()
	case engine.DeleteCategory:
		return requireID(a.ID)
	case engine.DeleteExpense:
		return requireID(a.ID)
	case engine.MoveExpense:
		if err := requireID(a.ExpenseID); err != nil {
			return err
		}
		return requireID(a.TargetCategoryID)
	case engine.MergeCategory:
		if err := requireID(a.SourceCategoryID); err != nil {
			return err
		}
		return requireID(a.TargetCategoryID)
	case engine.UpdateTotalBudget:
		if a.Value < 0 {
			return core.ErrInvalidBudget
		}
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrEmptyID
	}
	return nil
}

// queryKey identifies an expense listing for the view cache.
func queryKey(q views.Query) string {
	var b strings.Builder
	b.WriteString(q.Text)
	b.WriteByte('|')
	b.WriteString(q.CategoryID)
	b.WriteByte('|')
	if !q.From.IsZero() {
		b.WriteString(q.From.Format(queryDateLayout))
	}
	b.WriteByte('|')
	if !q.To.IsZero() {
		b.WriteString(q.To.Format(queryDateLayout))
	}
	b.WriteByte('|')
	b.WriteString(string(q.Sort))
	return b.String()
}
