package core

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// CategorySummary is the total and count of live expenses in one category.
type CategorySummary struct {
	Category     string
	TotalAmount  decimal.Decimal
	ExpenseCount int
}

// PeriodSummary aggregates the expenses dated inside [StartDate, EndDate].
type PeriodSummary struct {
	StartDate         Date
	EndDate           Date
	TotalAmount       decimal.Decimal
	TotalExpenses     int
	CategoryBreakdown Breakdown
}

// Breakdown maps category to amount, keeping a deterministic order.
type Breakdown []CategoryAmount

// MonthTotal is the spend for one YYYY-MM bucket.
type MonthTotal struct {
	Month  string
	Amount decimal.Decimal
}

// CategoryShare is a category's percentage of the total spend.
type CategoryShare struct {
	Category string
	Percent  decimal.Decimal
}

// Get returns the amount recorded for category.
func (b Breakdown) Get(category string) (decimal.Decimal, bool) {
	for _, ca := range b {
		if ca.Category == category {
			return ca.Amount, true
		}
	}
	return decimal.Zero, false
}

// Map returns the breakdown as a plain map.
func (b Breakdown) Map() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b))
	for _, ca := range b {
		out[ca.Category] = ca.Amount
	}
	return out
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ca := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ca.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(ca.Amount.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type categorySummaryJSON struct {
	Category     string      `json:"category"`
	TotalAmount  json.Number `json:"total_amount"`
	ExpenseCount int         `json:"expense_count"`
}

func (s CategorySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(categorySummaryJSON{
		Category:     s.Category,
		TotalAmount:  json.Number(s.TotalAmount.String()),
		ExpenseCount: s.ExpenseCount,
	})
}

type periodSummaryJSON struct {
	StartDate         Date        `json:"start_date"`
	EndDate           Date        `json:"end_date"`
	TotalAmount       json.Number `json:"total_amount"`
	TotalExpenses     int         `json:"total_expenses"`
	CategoryBreakdown Breakdown   `json:"category_breakdown"`
}

func (s PeriodSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodSummaryJSON{
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		TotalAmount:       json.Number(s.TotalAmount.String()),
		TotalExpenses:     s.TotalExpenses,
		CategoryBreakdown: s.CategoryBreakdown,
	})
}
