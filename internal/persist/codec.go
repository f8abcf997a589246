// Package persist keeps the in-memory state and its durable copy in step.
// The whole document is written under one key after every mutation and read
// back once at startup.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// ErrMalformedState marks a stored document that cannot be used as a State.
var ErrMalformedState = errors.New("malformed state document")

// document mirrors core.State with pointers so that absent fields can be
// told apart from empty ones.
type document struct {
	Categories        *[]core.Category `json:"categories"`
	Expenses          *[]core.Expense  `json:"expenses"`
	TotalBudgetTarget *float64         `json:"totalBudgetTarget"`
}

// Encode serializes s as the persisted JSON document. Nil collections are
// written as empty arrays.
func Encode(s core.State) ([]byte, error) {
	data, err := json.Marshal(s.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a persisted document. Anything that is not an object with
// categories and expenses arrays and a numeric totalBudgetTarget is rejected
// with ErrMalformedState.
func Decode(data []byte) (core.State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	var missing []string
	if doc.Categories == nil {
		missing = append(missing, "categories")
	}
	if doc.Expenses == nil {
		missing = append(missing, "expenses")
	}
	if doc.TotalBudgetTarget == nil {
		missing = append(missing, "totalBudgetTarget")
	}
	if len(missing) > 0 {
		return core.State{}, fmt.Errorf("%w: missing %v", ErrMalformedState, missing)
	}

	return core.State{
		Categories:        *doc.Categories,
		Expenses:          *doc.Expenses,
		TotalBudgetTarget: *doc.TotalBudgetTarget,
	}.Clone(), nil
}
