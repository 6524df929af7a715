package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestExpenseInputValidate(t *testing.T) {
	good := ExpenseInput{
		Amount:   decimal.RequireFromString("25.50"),
		Category: "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		in   ExpenseInput
		want error
	}{
		{"zero amount", ExpenseInput{Amount: decimal.Zero, Category: "Food"}, ErrInvalidAmount},
		{"negative amount", ExpenseInput{Amount: decimal.NewFromInt(-3), Category: "Food"}, ErrInvalidAmount},
		{"blank category", ExpenseInput{Amount: decimal.NewFromInt(1), Category: "  "}, ErrEmptyCategory},
		{"long description", ExpenseInput{Amount: decimal.NewFromInt(1), Category: "Food", Description: strings.Repeat("x", MaxDescriptionLength+1)}, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.in.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestExpensePatchApply(t *testing.T) {
	created := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	orig := Expense{
		ID:          "abc",
		Amount:      decimal.RequireFromString("10"),
		Category:    "Food",
		Description: "lunch",
		Date:        NewDate(2025, 4, 1),
		CreatedAt:   created,
	}

	got := ExpensePatch{Amount: Some(decimal.RequireFromString("12.75"))}.Apply(orig)
	if !got.Amount.Equal(decimal.RequireFromString("12.75")) {
		t.Fatalf("amount not applied: %s", got.Amount)
	}
	if got.ID != orig.ID || got.Category != orig.Category || got.Description != orig.Description ||
		!got.Date.Equal(orig.Date.Time) || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected fields changed: %+v", got)
	}

	cleared := ExpensePatch{Description: Some("")}.Apply(orig)
	if cleared.Description != "" {
		t.Fatalf("expected description cleared, got %q", cleared.Description)
	}
}

func TestExpensePatchFromJSON(t *testing.T) {
	var p ExpensePatch
	if err := json.Unmarshal([]byte(`{"amount": 42.5, "description": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a, ok := p.Amount.Get(); !ok || !a.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("amount = %v,%v", a, ok)
	}
	if p.Category.IsSet() || p.Date.IsSet() {
		t.Fatalf("absent keys must stay unset: %+v", p)
	}
	if d, ok := p.Description.Get(); !ok || d != "" {
		t.Fatalf("explicit null should set description to empty, got %q,%v", d, ok)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	var bad ExpensePatch
	if err := json.Unmarshal([]byte(`{"amount": 0}`), &bad); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("Validate() = %v, want ErrInvalidAmount", err)
	}

	var nullDate ExpensePatch
	if err := json.Unmarshal([]byte(`{"date": null}`), &nullDate); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := nullDate.Validate(); !errors.Is(err, ErrNullDate) {
		t.Fatalf("Validate() = %v, want ErrNullDate", err)
	}
}

func TestExpenseJSON(t *testing.T) {
	e := Expense{
		ID:        "id-1",
		Amount:    decimal.RequireFromString("25.5"),
		Category:  "Food",
		Date:      NewDate(2025, 4, 1),
		CreatedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"id-1","amount":25.5,"category":"Food","date":"2025-04-01","created_at":"2025-04-01T12:00:00Z"}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}

	var back Expense
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Amount.Equal(e.Amount) || back.ID != e.ID || !back.Date.Equal(e.Date.Time) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestKnownCategories(t *testing.T) {
	if !IsKnownCategory("EMI") {
		t.Fatal("EMI should be a known category")
	}
	if IsKnownCategory("food") {
		t.Fatal("category matching is case-sensitive")
	}
	if n := len(KnownCategories()); n != 9 {
		t.Fatalf("expected 9 categories, got %d", n)
	}
}
