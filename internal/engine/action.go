// Package engine implements the pure state reducer: given a State and an
// Action it returns the next State without touching its input.
package engine

import "fintrack/internal/core"

// Type is the wire name of an action.
type Type string

const (
	TypeSetState          Type = "SET_STATE"
	TypeAddCategory       Type = "ADD_CATEGORY"
	TypeUpdateCategory    Type = "UPDATE_CATEGORY"
	TypeDeleteCategory    Type = "DELETE_CATEGORY"
	TypeAddExpense        Type = "ADD_EXPENSE"
	TypeUpdateExpense     Type = "UPDATE_EXPENSE"
	TypeDeleteExpense     Type = "DELETE_EXPENSE"
	TypeMoveExpense       Type = "MOVE_EXPENSE"
	TypeMergeCategory     Type = "MERGE_CATEGORY"
	TypeUpdateTotalBudget Type = "UPDATE_TOTAL_BUDGET"
)

// MergeMode selects how a merge resolves the source category's expenses.
type MergeMode string

const (
	// MergeIndividual re-parents every expense, keeping each record.
	MergeIndividual MergeMode = "individual"
	// MergeTotal replaces the expenses with a single summed record.
	MergeTotal MergeMode = "total"
)

// Valid reports whether m is a known mode.
func (m MergeMode) Valid() bool {
	return m == MergeIndividual || m == MergeTotal
}

// Action is the closed set of mutations the reducer understands.
type Action interface {
	Type() Type
	action()
}

type (
	SetState struct {
		State core.State
	}

	AddCategory struct {
		Category core.Category
	}

	UpdateCategory struct {
		Category core.Category
	}

	DeleteCategory struct {
		ID string
	}

	AddExpense struct {
		Expense core.Expense
	}

	UpdateExpense struct {
		Expense core.Expense
	}

	DeleteExpense struct {
		ID string
	}

	MoveExpense struct {
		ExpenseID        string `json:"expenseId"`
		TargetCategoryID string `json:"targetCategoryId"`
	}

	MergeCategory struct {
		SourceCategoryID string    `json:"sourceCategoryId"`
		TargetCategoryID string    `json:"targetCategoryId"`
		Mode             MergeMode `json:"mode"`
	}

	UpdateTotalBudget struct {
		Value float64
	}
)

func (SetState) Type() Type          { return TypeSetState }
func (AddCategory) Type() Type       { return TypeAddCategory }
func (UpdateCategory) Type() Type    { return TypeUpdateCategory }
func (DeleteCategory) Type() Type    { return TypeDeleteCategory }
func (AddExpense) Type() Type        { return TypeAddExpense }
func (UpdateExpense) Type() Type     { return TypeUpdateExpense }
func (DeleteExpense) Type() Type     { return TypeDeleteExpense }
func (MoveExpense) Type() Type       { return TypeMoveExpense }
func (MergeCategory) Type() Type     { return TypeMergeCategory }
func (UpdateTotalBudget) Type() Type { return TypeUpdateTotalBudget }

func (SetState) action()          {}
func (AddCategory) action()       {}
func (UpdateCategory) action()    {}
func (DeleteCategory) action()    {}
func (AddExpense) action()        {}
func (UpdateExpense) action()     {}
func (DeleteExpense) action()     {}
func (MoveExpense) action()       {}
func (MergeCategory) action()     {}
func (UpdateTotalBudget) action() {}
