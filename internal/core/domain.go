package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// StateKey is the storage slot holding the persisted document.
	StateKey = "finTrackState"

	// DefaultTotalBudgetTarget is the overall target of a fresh document.
	DefaultTotalBudgetTarget = 25000
)

type (
	Category struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Color  Color   `json:"color"`
		Budget float64 `json:"budget"`
	}

	Expense struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Date        string  `json:"date"` // ISO-8601, when the expense happened
		Description string  `json:"description,omitempty"`
		CategoryID  string  `json:"categoryId"`
	}

	// State is the full persisted document.
	State struct {
		Categories        []Category `json:"categories"`
		Expenses          []Expense  `json:"expenses"`
		TotalBudgetTarget float64    `json:"totalBudgetTarget"`
	}
)

var (
	ErrEmptyID        = errors.New("empty id")
	ErrEmptyName      = errors.New("empty category name")
	ErrInvalidBudget  = errors.New("budget must not be negative")
	ErrInvalidColor   = errors.New("color is not a palette swatch")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrInvalidDate    = errors.New("invalid expense date")
	ErrEmptyCategory  = errors.New("empty category id")
	ErrDescriptionLen = errors.New("description too long (max 200 characters)")
)

// DefaultState returns the document used before hydration and after a failed load.
func DefaultState() State {
	return State{
		Categories:        []Category{},
		Expenses:          []Expense{},
		TotalBudgetTarget: DefaultTotalBudgetTarget,
	}
}

// Clone returns a copy that shares no backing arrays with s.
// Nil collections become empty ones so the document always encodes as arrays.
func (s State) Clone() State {
	out := State{
		Categories:        make([]Category, len(s.Categories)),
		Expenses:          make([]Expense, len(s.Expenses)),
		TotalBudgetTarget: s.TotalBudgetTarget,
	}
	copy(out.Categories, s.Categories)
	copy(out.Expenses, s.Expenses)
	return out
}

// Category returns the category with the given id.
func (s State) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// HasCategory reports whether a category with the given id exists.
func (s State) HasCategory(id string) bool {
	_, ok := s.Category(id)
	return ok
}

// Expense returns the expense with the given id.
func (s State) Expense(id string) (Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// ExpensesFor returns the expenses owned by a category, in document order.
func (s State) ExpensesFor(categoryID string) []Expense {
	var out []Expense
	for _, e := range s.Expenses {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks a category payload before it is dispatched.
// The engine itself never calls this.
func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Budget < 0 {
		return ErrInvalidBudget
	}
	if !c.Color.Valid() {
		return ErrInvalidColor
	}
	return nil
}

// Validate checks an expense payload before it is dispatched.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if !(e.Amount > 0) {
		return ErrInvalidAmount
	}
	if _, err := ParseTimestamp(e.Date); err != nil {
		return ErrInvalidDate
	}
	if len(e.Description) > 200 {
		return ErrDescriptionLen
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Time parses the expense date.
func (e Expense) Time() (time.Time, error) {
	return ParseTimestamp(e.Date)
}
