// Package ledgertest holds the behaviour every ledger.Ledger backend must
// share, so the memory, sqlite and postgres implementations run one suite.
package ledgertest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

// Factory returns a fresh, empty ledger for one subtest.
type Factory func(t *testing.T) ledger.Ledger

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(t *testing.T, l ledger.Ledger) []core.Expense {
	t.Helper()
	out, err := ledger.Seed(context.Background(), l, ledger.SampleExpenses())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return out
}

// Run exercises the full Ledger contract against ledgers built by newLedger.
func Run(t *testing.T, newLedger Factory) {
	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		l := newLedger(t)
		created, err := l.Create(ctx, core.Expense{
			Amount:      dec("25.50"),
			Category:    "Food",
			Description: "Lunch",
			Date:        core.NewDate(2025, 4, 1),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == "" || created.CreatedAt.IsZero() {
			t.Fatalf("server fields not filled: %+v", created)
		}
		got, err := l.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		assertSame(t, got, created)
	})

	t.Run("create defaults date to today", func(t *testing.T) {
		l := newLedger(t)
		created, err := l.Create(ctx, core.Expense{Amount: dec("1"), Category: "Other"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		today := core.Today()
		if !created.Date.Equal(today.Time) {
			t.Fatalf("date = %s, want %s", created.Date, today)
		}
	})

	t.Run("caller supplied id is kept", func(t *testing.T) {
		l := newLedger(t)
		created, err := l.Create(ctx, core.Expense{ID: "fixed-id", Amount: dec("3"), Category: "Other", Date: core.NewDate(2025, 1, 1)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID != "fixed-id" {
			t.Fatalf("ID = %q", created.ID)
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		l := newLedger(t)
		if _, err := l.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("update changes only supplied fields", func(t *testing.T) {
		l := newLedger(t)
		orig := seed(t, l)[0]
		updated, err := l.Update(ctx, orig.ID, core.ExpensePatch{Amount: core.Some(dec("99.99"))})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		want := orig
		want.Amount = dec("99.99")
		assertSame(t, updated, want)

		got, err := l.Get(ctx, orig.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		assertSame(t, got, want)
	})

	t.Run("update every field keeps id and created_at", func(t *testing.T) {
		l := newLedger(t)
		orig := seed(t, l)[1]
		updated, err := l.Update(ctx, orig.ID, core.ExpensePatch{
			Amount:      core.Some(dec("40")),
			Category:    core.Some("Travel"),
			Description: core.Some("Taxi"),
			Date:        core.Some(core.NewDate(2025, 4, 2)),
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ID != orig.ID || !updated.CreatedAt.Equal(orig.CreatedAt) {
			t.Fatalf("identity changed: %+v vs %+v", updated, orig)
		}
		if updated.Category != "Travel" || updated.Description != "Taxi" || updated.Date.String() != "2025-04-02" {
			t.Fatalf("fields not applied: %+v", updated)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		l := newLedger(t)
		_, err := l.Update(ctx, "missing", core.ExpensePatch{Amount: core.Some(dec("1"))})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Update(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete then get", func(t *testing.T) {
		l := newLedger(t)
		all := seed(t, l)
		if err := l.Delete(ctx, all[2].ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := l.Get(ctx, all[2].ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Get after delete = %v, want ErrNotFound", err)
		}
		if err := l.Delete(ctx, all[2].ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("second Delete = %v, want ErrNotFound", err)
		}
		rest, err := l.List(ctx, ledger.Filter{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(rest) != len(all)-1 {
			t.Fatalf("List after delete returned %d records, want %d", len(rest), len(all)-1)
		}
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		l := newLedger(t)
		all := seed(t, l)
		got, err := l.List(ctx, ledger.Filter{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != len(all) {
			t.Fatalf("List returned %d, want %d", len(got), len(all))
		}
		for i := range all {
			if got[i].ID != all[i].ID {
				t.Fatalf("position %d: got %s want %s", i, got[i].ID, all[i].ID)
			}
		}
	})

	t.Run("list filters", func(t *testing.T) {
		l := newLedger(t)
		seed(t, l)
		start, end := core.NewDate(2025, 3, 26), core.NewDate(2025, 3, 31)
		lo, hi := dec("30"), dec("500")
		tests := []struct {
			name string
			f    ledger.Filter
			want []string
		}{
			{"category", ledger.Filter{Category: "Food"}, []string{"25.5"}},
			{"date range", ledger.Filter{Start: &start, End: &end}, []string{"120"}},
			{"start only is ignored", ledger.Filter{Start: &start}, []string{"25.5", "35", "120", "500", "1200"}},
			{"min only", ledger.Filter{MinAmount: &lo}, []string{"35", "120", "500", "1200"}},
			{"max only", ledger.Filter{MaxAmount: &hi}, []string{"25.5", "35", "120", "500"}},
			{"min and max inclusive", ledger.Filter{MinAmount: &lo, MaxAmount: &hi}, []string{"35", "120", "500"}},
			{"combined", ledger.Filter{Category: "Shopping", MinAmount: &lo, MaxAmount: &hi}, []string{"500"}},
			{"no match", ledger.Filter{Category: "Healthcare"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := l.List(ctx, tt.f)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("List returned %d records, want %d", len(got), len(tt.want))
				}
				for i, e := range got {
					if e.Amount.String() != tt.want[i] {
						t.Errorf("record %d amount = %s, want %s", i, e.Amount, tt.want[i])
					}
				}
			})
		}
	})

	t.Run("category summary", func(t *testing.T) {
		l := newLedger(t)
		for _, e := range []core.Expense{
			{Amount: dec("25.50"), Category: "Food", Date: core.NewDate(2025, 4, 1)},
			{Amount: dec("35.00"), Category: "Transportation", Date: core.NewDate(2025, 4, 1)},
		} {
			if _, err := l.Create(ctx, e); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}
		got, err := l.CategorySummary(ctx)
		if err != nil {
			t.Fatalf("CategorySummary: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %+v", got)
		}
		want := map[string]string{"Food": "25.5", "Transportation": "35"}
		for _, s := range got {
			if s.TotalAmount.String() != want[s.Category] || s.ExpenseCount != 1 {
				t.Errorf("unexpected summary %+v", s)
			}
		}
	})

	t.Run("category summary totals match records", func(t *testing.T) {
		l := newLedger(t)
		all := seed(t, l)
		extra := []core.Expense{
			{Amount: dec("0.10"), Category: "Food", Date: core.NewDate(2025, 2, 1)},
			{Amount: dec("0.20"), Category: "Food", Date: core.NewDate(2025, 2, 2)},
		}
		for _, e := range extra {
			created, err := l.Create(ctx, e)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			all = append(all, created)
		}
		summaries, err := l.CategorySummary(ctx)
		if err != nil {
			t.Fatalf("CategorySummary: %v", err)
		}
		total, count := decimal.Zero, 0
		for _, s := range summaries {
			if s.ExpenseCount == 0 {
				t.Fatalf("empty category emitted: %+v", s)
			}
			total = total.Add(s.TotalAmount)
			count += s.ExpenseCount
		}
		want := decimal.Zero
		for _, e := range all {
			want = want.Add(e.Amount)
		}
		if !total.Equal(want) || count != len(all) {
			t.Fatalf("totals %s/%d, want %s/%d", total, count, want, len(all))
		}
		again, _ := l.CategorySummary(ctx)
		for i := range summaries {
			if again[i].Category != summaries[i].Category {
				t.Fatalf("category order not deterministic: %v vs %v", again, summaries)
			}
		}
	})

	t.Run("period summary over fixture", func(t *testing.T) {
		l := newLedger(t)
		seed(t, l)
		got, err := l.PeriodSummary(ctx, core.NewDate(2025, 3, 25), core.NewDate(2025, 4, 1))
		if err != nil {
			t.Fatalf("PeriodSummary: %v", err)
		}
		if !got.TotalAmount.Equal(dec("1880.50")) || got.TotalExpenses != 5 {
			t.Fatalf("got total %s over %d, want 1880.50 over 5", got.TotalAmount, got.TotalExpenses)
		}
		if v, _ := got.CategoryBreakdown.Get("EMI"); !v.Equal(dec("1200")) {
			t.Fatalf("EMI breakdown = %s", v)
		}
	})

	t.Run("period summary window is inclusive", func(t *testing.T) {
		l := newLedger(t)
		seed(t, l)
		got, err := l.PeriodSummary(ctx, core.NewDate(2025, 3, 28), core.NewDate(2025, 3, 28))
		if err != nil {
			t.Fatalf("PeriodSummary: %v", err)
		}
		if got.TotalExpenses != 1 || !got.TotalAmount.Equal(dec("120")) || len(got.CategoryBreakdown) != 1 {
			t.Fatalf("unexpected summary %+v", got)
		}
	})

	t.Run("period summary empty", func(t *testing.T) {
		l := newLedger(t)
		seed(t, l)
		got, err := l.PeriodSummary(ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31))
		if err != nil {
			t.Fatalf("PeriodSummary: %v", err)
		}
		if !got.TotalAmount.IsZero() || got.TotalExpenses != 0 || len(got.CategoryBreakdown) != 0 {
			t.Fatalf("expected empty summary, got %+v", got)
		}
		if got.StartDate.String() != "2024-01-01" || got.EndDate.String() != "2024-12-31" {
			t.Fatalf("bounds not echoed: %s..%s", got.StartDate, got.EndDate)
		}
	})
}

func assertSame(t *testing.T, got, want core.Expense) {
	t.Helper()
	if got.ID != want.ID ||
		!got.Amount.Equal(want.Amount) ||
		got.Category != want.Category ||
		got.Description != want.Description ||
		!got.Date.Equal(want.Date.Time) ||
		!got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("records differ:\n got  %+v\n want %+v", got, want)
	}
}
