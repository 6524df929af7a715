package sheets

import (
	"context"
	"time"

	"expenses/internal/events"
)

// JournalHeader is the column layout of the journal sheet.
var JournalHeader = []string{"timestamp", "event", "expense_id", "date", "category", "description", "amount"}

// JournalEntry is one row of the change journal: a single ledger event
// flattened to text.
type JournalEntry struct {
	Timestamp   time.Time
	Event       string
	ExpenseID   string
	Date        string
	Category    string
	Description string
	Amount      string
}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		AppendEntry(ctx context.Context, e JournalEntry) (rowRef string, err error)
	}

	JournalReader interface {
		ListEntries(ctx context.Context) ([]JournalEntry, error)
	}
)

// EntryFromEvent flattens ev. Deletions only carry the expense id.
func EntryFromEvent(ev events.ExpenseEvent) JournalEntry {
	entry := JournalEntry{
		Timestamp: ev.Timestamp.UTC(),
		Event:     string(ev.Type),
		ExpenseID: ev.ExpenseID,
	}
	if e := ev.Expense; e != nil {
		entry.Date = e.Date.String()
		entry.Category = e.Category
		entry.Description = e.Description
		entry.Amount = e.Amount.String()
	}
	return entry
}

// Row returns the entry in JournalHeader order.
func (e JournalEntry) Row() []any {
	return []any{
		e.Timestamp.Format(time.RFC3339),
		e.Event,
		e.ExpenseID,
		e.Date,
		e.Category,
		e.Description,
		e.Amount,
	}
}
