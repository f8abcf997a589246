package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

var (
	ErrUnknownAction  = errors.New("unknown action type")
	ErrMissingPayload = errors.New("missing action payload")
	ErrInvalidMode    = errors.New("invalid merge mode")
)

// envelope is the wire form of an action: {"type": ..., "payload": ...}.
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeAction renders a as a JSON envelope.
func EncodeAction(a Action) ([]byte, error) {
	var payload any
	switch a := a.(type) {
	case SetState:
		payload = a.State.Clone()
	case AddCategory:
		payload = a.Category
	case UpdateCategory:
		payload = a.Category
	case DeleteCategory:
		payload = a.ID
	case AddExpense:
		payload = a.Expense
	case UpdateExpense:
		payload = a.Expense
	case DeleteExpense:
		payload = a.ID
	case MoveExpense:
		payload = a
	case MergeCategory:
		payload = a
	case UpdateTotalBudget:
		payload = a.Value
	default:
		return nil, fmt.Errorf("encode %T: %w", a, ErrUnknownAction)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", a.Type(), err)
	}
	return json.Marshal(envelope{Type: a.Type(), Payload: raw})
}

// DecodeAction parses a JSON envelope into an Action.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}
	p := bytes.TrimSpace(env.Payload)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return nil, fmt.Errorf("%s: %w", env.Type, ErrMissingPayload)
	}

	var (
		a   Action
		err error
	)
	switch env.Type {
	case TypeSetState:
		var s core.State
		err = json.Unmarshal(p, &s)
		a = SetState{State: s}
	case TypeAddCategory:
		var c core.Category
		err = json.Unmarshal(p, &c)
		a = AddCategory{Category: c}
	case TypeUpdateCategory:
		var c core.Category
		err = json.Unmarshal(p, &c)
		a = UpdateCategory{Category: c}
	case TypeDeleteCategory:
		var id string
		err = json.Unmarshal(p, &id)
		a = DeleteCategory{ID: id}
	case TypeAddExpense:
		var e core.Expense
		err = json.Unmarshal(p, &e)
		a = AddExpense{Expense: e}
	case TypeUpdateExpense:
		var e core.Expense
		err = json.Unmarshal(p, &e)
		a = UpdateExpense{Expense: e}
	case TypeDeleteExpense:
		var id string
		err = json.Unmarshal(p, &id)
		a = DeleteExpense{ID: id}
	case TypeMoveExpense:
		var m MoveExpense
		err = json.Unmarshal(p, &m)
		a = m
	case TypeMergeCategory:
		var m MergeCategory
		if err = json.Unmarshal(p, &m); err == nil && !m.Mode.Valid() {
			err = fmt.Errorf("%w %q", ErrInvalidMode, m.Mode)
		}
		a = m
	case TypeUpdateTotalBudget:
		var v float64
		err = json.Unmarshal(p, &v)
		a = UpdateTotalBudget{Value: v}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return a, nil
}
