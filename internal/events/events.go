// Package events describes the change notifications the ledger emits after
// each successful write, and the transport-neutral Publisher they go through.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
)

type Type string

const (
	TypeCreated Type = "expense.created"
	TypeUpdated Type = "expense.updated"
	TypeDeleted Type = "expense.deleted"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCreated, TypeUpdated, TypeDeleted:
		return true
	}
	return false
}

// ExpenseEvent is one change to the ledger. Expense is nil for deletions.
type ExpenseEvent struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	ExpenseID string        `json:"expense_id"`
	Expense   *core.Expense `json:"expense,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Publisher delivers events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, ev ExpenseEvent) error
	Close() error
}

func newEvent(t Type, expenseID string, e *core.Expense) ExpenseEvent {
	return ExpenseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		ExpenseID: expenseID,
		Expense:   e,
		Timestamp: time.Now().UTC(),
	}
}

func Created(e core.Expense) ExpenseEvent {
	return newEvent(TypeCreated, e.ID, &e)
}

func Updated(e core.Expense) ExpenseEvent {
	return newEvent(TypeUpdated, e.ID, &e)
}

func Deleted(id string) ExpenseEvent {
	return newEvent(TypeDeleted, id, nil)
}

// ToJSON converts the event to JSON bytes
func (ev ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(ev)
}

// FromJSON decodes and checks an event read off the wire.
func FromJSON(data []byte) (ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ExpenseEvent{}, err
	}
	if !ev.Type.Valid() {
		return ExpenseEvent{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.ExpenseID == "" {
		return ExpenseEvent{}, fmt.Errorf("event %s has no expense id", ev.ID)
	}
	return ev, nil
}

// Nop drops every event. It is used when no bus is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ExpenseEvent) error { return nil }
func (Nop) Close() error                                { return nil }
