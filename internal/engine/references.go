package engine

import (
	"fmt"

	"fintrack/internal/core"
)

// ReferenceError reports an action that names a category the state does not
// hold, or a merge of a category into itself.
type ReferenceError struct {
	Action     Type
	Field      string
	CategoryID string
	// Self marks a merge whose source and target are the same category.
	Self bool
}

func (e *ReferenceError) Error() string {
	if e.Self {
		return fmt.Sprintf("%s: cannot merge category %q into itself", e.Action, e.CategoryID)
	}
	return fmt.Sprintf("%s: %s %q does not reference an existing category", e.Action, e.Field, e.CategoryID)
}

// CheckReferences validates the category ids an action points at.
// Reduce never calls it: unchecked dispatch keeps the permissive contract,
// and callers opt in at the dispatch boundary.
func CheckReferences(s core.State, a Action) error {
	switch a := a.(type) {
	case AddExpense:
		return requireCategory(s, a.Type(), "categoryId", a.Expense.CategoryID)
	case UpdateExpense:
		return requireCategory(s, a.Type(), "categoryId", a.Expense.CategoryID)
	case MoveExpense:
		return requireCategory(s, a.Type(), "targetCategoryId", a.TargetCategoryID)
	case MergeCategory:
		if a.SourceCategoryID == a.TargetCategoryID {
			return &ReferenceError{Action: a.Type(), Field: "targetCategoryId", CategoryID: a.TargetCategoryID, Self: true}
		}
		if err := requireCategory(s, a.Type(), "sourceCategoryId", a.SourceCategoryID); err != nil {
			return err
		}
		return requireCategory(s, a.Type(), "targetCategoryId", a.TargetCategoryID)
	}
	return nil
}

func requireCategory(s core.State, t Type, field, id string) error {
	if s.HasCategory(id) {
		return nil
	}
	return &ReferenceError{Action: t, Field: field, CategoryID: id}
}

// DuplicateError reports an add action whose id is already taken.
type DuplicateError struct {
	Action Type
	Kind   string
	ID     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s id %q already exists", e.Action, e.Kind, e.ID)
}

// CheckUnique rejects ADD_CATEGORY and ADD_EXPENSE actions reusing an id
// already present in s. Update and delete address records by id, so a
// second record with the same id would be changed or removed alongside it.
func CheckUnique(s core.State, a Action) error {
	switch a := a.(type) {
	case AddCategory:
		if s.HasCategory(a.Category.ID) {
			return &DuplicateError{Action: a.Type(), Kind: "category", ID: a.Category.ID}
		}
	case AddExpense:
		if _, ok := s.Expense(a.Expense.ID); ok {
			return &DuplicateError{Action: a.Type(), Kind: "expense", ID: a.Expense.ID}
		}
	}
	return nil
}
