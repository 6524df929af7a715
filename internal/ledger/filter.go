package ledger

import (
	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// Filter holds independently composable List predicates. Zero values mean
// "no constraint". The date window only applies when both bounds are set.
type Filter struct {
	Category  string
	Start     *core.Date
	End       *core.Date
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// HasDateRange reports whether the date predicate is active.
func (f Filter) HasDateRange() bool {
	return f.Start != nil && f.End != nil
}

// Matches reports whether e satisfies every active predicate.
func (f Filter) Matches(e core.Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.HasDateRange() && !e.Date.Between(*f.Start, *f.End) {
		return false
	}
	return f.MatchesAmount(e)
}

// MatchesAmount applies only the amount bounds.
func (f Filter) MatchesAmount(e core.Expense) bool {
	if f.MinAmount != nil && e.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && e.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

// Apply returns the matching expenses, preserving order.
func (f Filter) Apply(in []core.Expense) []core.Expense {
	out := make([]core.Expense, 0, len(in))
	for _, e := range in {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
