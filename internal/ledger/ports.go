// Package ledger owns the expense collection: CRUD, filtered listing and the
// category and period aggregations computed over it.
package ledger

import (
	"context"

	"expenses/internal/core"
)

// Ledger is implemented by every expense backend (memory, sqlite, postgres).
type Ledger interface {
	// Create stores e, generating an ID, a Date (today) and CreatedAt when absent.
	Create(ctx context.Context, e core.Expense) (core.Expense, error)

	// Get returns the expense or an error wrapping core.ErrNotFound.
	Get(ctx context.Context, id string) (core.Expense, error)

	// List returns the expenses matching f in insertion order.
	List(ctx context.Context, f Filter) ([]core.Expense, error)

	// Update writes the supplied patch fields and returns the full record.
	Update(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error)

	// Delete permanently removes the expense.
	Delete(ctx context.Context, id string) error

	// CategorySummary groups all live expenses by category.
	CategorySummary(ctx context.Context) ([]core.CategorySummary, error)

	// PeriodSummary aggregates expenses dated within [start, end].
	PeriodSummary(ctx context.Context, start, end core.Date) (core.PeriodSummary, error)

	Close() error
}
