package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

var hundred = decimal.NewFromInt(100)

// SummarizeByCategory groups expenses by category. Categories appear in the
// order they are first seen, so equal input yields equal output.
func SummarizeByCategory(expenses []core.Expense) []core.CategorySummary {
	index := make(map[string]int)
	out := make([]core.CategorySummary, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategorySummary{Category: e.Category, TotalAmount: decimal.Zero})
		}
		out[i].TotalAmount = out[i].TotalAmount.Add(e.Amount)
		out[i].ExpenseCount++
	}
	return out
}

// SummarizePeriod aggregates the expenses dated within [start, end].
func SummarizePeriod(expenses []core.Expense, start, end core.Date) core.PeriodSummary {
	summary := core.PeriodSummary{
		StartDate:         start,
		EndDate:           end,
		TotalAmount:       decimal.Zero,
		CategoryBreakdown: core.Breakdown{},
	}
	index := make(map[string]int)
	for _, e := range expenses {
		if !e.Date.Between(start, end) {
			continue
		}
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount)
		summary.TotalExpenses++
		i, ok := index[e.Category]
		if !ok {
			i = len(summary.CategoryBreakdown)
			index[e.Category] = i
			summary.CategoryBreakdown = append(summary.CategoryBreakdown, core.CategoryAmount{Category: e.Category, Amount: decimal.Zero})
		}
		summary.CategoryBreakdown[i].Amount = summary.CategoryBreakdown[i].Amount.Add(e.Amount)
	}
	return summary
}

// MonthlyTrend totals expenses per YYYY-MM, sorted by month.
func MonthlyTrend(expenses []core.Expense) []core.MonthTotal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := e.Date.MonthKey()
		totals[key] = totals[key].Add(e.Amount)
	}
	out := make([]core.MonthTotal, 0, len(totals))
	for month, amount := range totals {
		out = append(out, core.MonthTotal{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CategoryPercentages returns each category's share of the total spend,
// rounded to two places. It is empty when there is nothing spent.
func CategoryPercentages(expenses []core.Expense) []core.CategoryShare {
	summaries := SummarizeByCategory(expenses)
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.TotalAmount)
	}
	if !total.IsPositive() {
		return []core.CategoryShare{}
	}
	out := make([]core.CategoryShare, 0, len(summaries))
	for _, s := range summaries {
		pct := s.TotalAmount.Mul(hundred).DivRound(total, 4).Round(2)
		out = append(out, core.CategoryShare{Category: s.Category, Percent: pct})
	}
	return out
}
