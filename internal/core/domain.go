package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryUtilities      Category = "Utilities"
	CategoryShopping       Category = "Shopping"
	CategoryEMI            Category = "EMI"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryOther          Category = "Other"
)

// MaxDescriptionLength bounds free-text descriptions at the input boundary.
const MaxDescriptionLength = 500

type (
	// Category is the well-known set of labels callers usually pick from.
	// Stored expenses carry a plain string and are not restricted to it.
	Category string

	Expense struct {
		ID          string
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}

	// ExpenseInput is what callers supply to create an expense.
	ExpenseInput struct {
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"date"`
	}

	// ExpensePatch carries only the fields an update supplies.
	ExpensePatch struct {
		Amount      Optional[decimal.Decimal] `json:"amount"`
		Category    Optional[string]          `json:"category"`
		Description Optional[string]          `json:"description"`
		Date        Optional[Date]            `json:"date"`
	}
)

var (
	ErrNotFound           = errors.New("expense not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrEmptyCategory      = errors.New("empty category")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrNullDate           = errors.New("date cannot be null")
)

// NotFound wraps ErrNotFound with the offending id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// KnownCategories returns the predefined categories in display order.
func KnownCategories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryUtilities,
		CategoryShopping,
		CategoryEMI,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryEducation,
		CategoryOther,
	}
}

func IsKnownCategory(s string) bool {
	for _, c := range KnownCategories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func validateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (in ExpenseInput) Validate() error {
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if len(in.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// Expense converts the input into an unsaved record. Server-assigned fields
// (ID, CreatedAt and a missing Date) are left for the store to fill in.
func (in ExpenseInput) Expense() Expense {
	return Expense{
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
	}
}

func (p ExpensePatch) Validate() error {
	if a, ok := p.Amount.Get(); ok {
		if err := validateAmount(a); err != nil {
			return err
		}
	}
	if c, ok := p.Category.Get(); ok && strings.TrimSpace(c) == "" {
		return ErrEmptyCategory
	}
	if d, ok := p.Description.Get(); ok && len(d) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if d, ok := p.Date.Get(); ok && d.IsZero() {
		return ErrNullDate
	}
	return nil
}

// IsEmpty reports whether the patch supplies no field at all.
func (p ExpensePatch) IsEmpty() bool {
	return !p.Amount.IsSet() && !p.Category.IsSet() && !p.Description.IsSet() && !p.Date.IsSet()
}

// Apply returns e with every supplied field replaced. ID and CreatedAt are
// never touched.
func (p ExpensePatch) Apply(e Expense) Expense {
	if v, ok := p.Amount.Get(); ok {
		e.Amount = v
	}
	if v, ok := p.Category.Get(); ok {
		e.Category = v
	}
	if v, ok := p.Description.Get(); ok {
		e.Description = v
	}
	if v, ok := p.Date.Get(); ok {
		e.Date = v
	}
	return e
}

type expenseJSON struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description,omitempty"`
	Date        Date        `json:"date"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseJSON{
		ID:          e.ID,
		Amount:      json.Number(e.Amount.String()),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	})
}

func (e *Expense) UnmarshalJSON(b []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amount := decimal.Zero
	if raw.Amount != "" {
		a, err := decimal.NewFromString(raw.Amount.String())
		if err != nil {
			return fmt.Errorf("parse amount: %w", err)
		}
		amount = a
	}
	*e = Expense{
		ID:          raw.ID,
		Amount:      amount,
		Category:    raw.Category,
		Description: raw.Description,
		Date:        raw.Date,
		CreatedAt:   raw.CreatedAt,
	}
	return nil
}
