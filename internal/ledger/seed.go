package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// SampleExpenses is the demo fixture loaded when seeding is enabled.
func SampleExpenses() []core.ExpenseInput {
	return []core.ExpenseInput{
		{Amount: decimal.RequireFromString("25.50"), Category: "Food", Description: "Lunch at restaurant", Date: core.NewDate(2025, 4, 1)},
		{Amount: decimal.RequireFromString("35.00"), Category: "Transportation", Description: "Uber ride", Date: core.NewDate(2025, 4, 1)},
		{Amount: decimal.RequireFromString("120.00"), Category: "Utilities", Description: "Electricity bill", Date: core.NewDate(2025, 3, 28)},
		{Amount: decimal.RequireFromString("500.00"), Category: "Shopping", Description: "New clothes", Date: core.NewDate(2025, 3, 25)},
		{Amount: decimal.RequireFromString("1200.00"), Category: "EMI", Description: "Car loan payment", Date: core.NewDate(2025, 4, 1)},
	}
}

// Seed creates every input in l, stopping at the first failure.
func Seed(ctx context.Context, l Ledger, inputs []core.ExpenseInput) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(inputs))
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return out, fmt.Errorf("seed expense %d: %w", i, err)
		}
		e, err := l.Create(ctx, in.Expense())
		if err != nil {
			return out, fmt.Errorf("seed expense %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
