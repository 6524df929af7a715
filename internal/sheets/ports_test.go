package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/events"
)

func TestEntryFromEvent(t *testing.T) {
	ts := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)
	e := core.Expense{
		ID:          "exp-1",
		Amount:      decimal.RequireFromString("35.00"),
		Category:    "Transportation",
		Description: "Uber ride",
		Date:        core.NewDate(2025, 4, 1),
	}

	tests := []struct {
		name string
		ev   events.ExpenseEvent
		want []any
	}{
		{
			name: "created carries the record",
			ev:   events.ExpenseEvent{Type: events.TypeCreated, ExpenseID: "exp-1", Expense: &e, Timestamp: ts},
			want: []any{"2025-04-01T10:30:00Z", "expense.created", "exp-1", "2025-04-01", "Transportation", "Uber ride", "35"},
		},
		{
			name: "deleted has only the id",
			ev:   events.ExpenseEvent{Type: events.TypeDeleted, ExpenseID: "exp-1", Timestamp: ts},
			want: []any{"2025-04-01T10:30:00Z", "expense.deleted", "exp-1", "", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := EntryFromEvent(tt.ev).Row()
			if len(row) != len(JournalHeader) {
				t.Fatalf("row has %d columns, header has %d", len(row), len(JournalHeader))
			}
			for i := range tt.want {
				if row[i] != tt.want[i] {
					t.Errorf("column %s = %v, want %v", JournalHeader[i], row[i], tt.want[i])
				}
			}
		})
	}
}
