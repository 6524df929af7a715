package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/cache"
	"expenses/internal/core"
	"expenses/internal/events"
	"expenses/internal/ledger"
	"expenses/internal/log"
	"expenses/internal/period"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ExpenseEvent
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.ExpenseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// countingLedger counts summary reads that reach the backend.
type countingLedger struct {
	ledger.Ledger
	mu            sync.Mutex
	categoryCalls int
	periodCalls   int
}

func (c *countingLedger) CategorySummary(ctx context.Context) ([]core.CategorySummary, error) {
	c.mu.Lock()
	c.categoryCalls++
	c.mu.Unlock()
	return c.Ledger.CategorySummary(ctx)
}

func (c *countingLedger) PeriodSummary(ctx context.Context, start, end core.Date) (core.PeriodSummary, error) {
	c.mu.Lock()
	c.periodCalls++
	c.mu.Unlock()
	return c.Ledger.PeriodSummary(ctx, start, end)
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard, Component: log.ComponentLedger})
}

func fixedToday() core.Date {
	return core.NewDate(2025, 3, 31)
}

func newTestService(t *testing.T, opts ...Option) (*ExpenseService, *recordingPublisher, *countingLedger) {
	t.Helper()
	pub := &recordingPublisher{}
	l := &countingLedger{Ledger: ledger.NewStore()}
	base := []Option{
		WithPublisher(pub),
		WithLogger(quietLogger()),
		WithSummaryCache(cache.NewLRUCache[any](16, time.Minute)),
		WithToday(fixedToday),
	}
	svc := NewExpenseService(l, append(base, opts...)...)
	return svc, pub, l
}

func input(amount, category string, date core.Date) core.ExpenseInput {
	return core.ExpenseInput{
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     date,
	}
}

func TestExpenseService_CreateValidates(t *testing.T) {
	tests := []struct {
		name    string
		in      core.ExpenseInput
		wantErr error
	}{
		{"zero amount", core.ExpenseInput{Amount: decimal.Zero, Category: "Food"}, core.ErrInvalidAmount},
		{"negative amount", input("-5", "Food", core.Date{}), core.ErrInvalidAmount},
		{"blank category", input("5", "  ", core.Date{}), core.ErrEmptyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, pub, _ := newTestService(t)
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			list, _ := svc.List(context.Background(), ledger.Filter{})
			if len(list) != 0 {
				t.Errorf("rejected input should not be stored, got %d records", len(list))
			}
			if len(pub.types()) != 0 {
				t.Errorf("rejected input should not publish, got %v", pub.types())
			}
		})
	}
}

func TestExpenseService_WritesPublishEvents(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)

	e, err := svc.Create(ctx, input("45.50", "Food", core.NewDate(2025, 3, 28)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Update(ctx, e.ID, core.ExpensePatch{Description: core.Some("Groceries")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := svc.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []events.Type{events.TypeCreated, events.TypeUpdated, events.TypeDeleted}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if pub.events[1].Expense == nil || pub.events[1].Expense.Description != "Groceries" {
		t.Errorf("update event should carry the patched record, got %+v", pub.events[1].Expense)
	}
}

func TestExpenseService_NotFoundIsPreserved(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "missing", core.ExpensePatch{Amount: core.Some(decimal.NewFromInt(1))}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if len(pub.types()) != 0 {
		t.Errorf("failed writes should not publish, got %v", pub.types())
	}
}

func TestExpenseService_UpdateValidatesPatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	e, _ := svc.Create(ctx, input("10", "Food", core.NewDate(2025, 3, 1)))

	tests := []struct {
		name    string
		patch   core.ExpensePatch
		wantErr error
	}{
		{"zero amount", core.ExpensePatch{Amount: core.Some(decimal.Zero)}, core.ErrInvalidAmount},
		{"blank category", core.ExpensePatch{Category: core.Some("")}, core.ErrEmptyCategory},
		{"null date", core.ExpensePatch{Date: core.Some(core.Date{})}, core.ErrNullDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, e.ID, tt.patch); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
			}
			got, _ := svc.Get(ctx, e.ID)
			if !got.Amount.Equal(e.Amount) || got.Category != "Food" {
				t.Errorf("rejected patch modified the record: %+v", got)
			}
		})
	}
}

func TestExpenseService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestService(t)
	pub.err = errors.New("broker down")

	e, err := svc.Create(ctx, input("12", "Other", core.NewDate(2025, 3, 2)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Get(ctx, e.ID); err != nil {
		t.Fatalf("expense should be stored despite publish failure: %v", err)
	}
}

func TestExpenseService_SummaryCache(t *testing.T) {
	ctx := context.Background()
	svc, _, l := newTestService(t)

	if _, err := svc.Create(ctx, input("10", "Food", core.NewDate(2025, 3, 1))); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.CategorySummary(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if l.categoryCalls != 1 {
		t.Errorf("repeated reads should hit the cache, backend calls = %d", l.categoryCalls)
	}

	if _, err := svc.Create(ctx, input("5", "Food", core.NewDate(2025, 3, 2))); err != nil {
		t.Fatal(err)
	}
	sums, err := svc.CategorySummary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if l.categoryCalls != 2 {
		t.Errorf("a write should invalidate the cache, backend calls = %d", l.categoryCalls)
	}
	if len(sums) != 1 || !sums[0].TotalAmount.Equal(decimal.NewFromInt(15)) || sums[0].ExpenseCount != 2 {
		t.Errorf("stale summary after write: %+v", sums)
	}
}

func TestExpenseService_CachedSummaryIsCopied(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	svc.Create(ctx, input("10", "Food", core.NewDate(2025, 3, 1)))

	first, _ := svc.CategorySummary(ctx)
	first[0].Category = "mutated"

	second, _ := svc.CategorySummary(ctx)
	if second[0].Category != "Food" {
		t.Errorf("caller mutation leaked into the cache: %+v", second)
	}
}

func TestExpenseService_SummaryFor(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	tests := []struct {
		name               string
		token, start, end  string
		wantStart, wantEnd core.Date
		wantErr            error
	}{
		{
			name:      "token wins over explicit range",
			token:     period.ThisMonth,
			start:     "2024-01-01",
			end:       "2024-01-31",
			wantStart: core.NewDate(2025, 3, 1),
			wantEnd:   core.NewDate(2025, 3, 31),
		},
		{
			name:      "explicit range",
			start:     "2025-03-25",
			end:       "2025-03-28",
			wantStart: core.NewDate(2025, 3, 25),
			wantEnd:   core.NewDate(2025, 3, 28),
		},
		{
			name:      "defaults to current month",
			wantStart: core.NewDate(2025, 3, 1),
			wantEnd:   core.NewDate(2025, 3, 31),
		},
		{name: "unknown token", token: "next_week", wantErr: period.ErrInvalidPeriod},
		{name: "bad date", start: "2025/03/01", end: "2025-03-31", wantErr: core.ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := svc.SummaryFor(ctx, tt.token, tt.start, tt.end)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SummaryFor() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SummaryFor() error = %v", err)
			}
			if !sum.StartDate.Equal(tt.wantStart.Time) || !sum.EndDate.Equal(tt.wantEnd.Time) {
				t.Errorf("window = %s..%s, want %s..%s", sum.StartDate, sum.EndDate, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestExpenseService_ResolvePeriodAndParseDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	r, err := svc.ResolvePeriod(period.LastMonth)
	if err != nil {
		t.Fatalf("ResolvePeriod() error = %v", err)
	}
	if r.String() != "2025-02-01..2025-02-28" {
		t.Errorf("last_month = %s", r)
	}

	if _, err := svc.ParseDate("2025-3-1"); !errors.Is(err, core.ErrInvalidDateFormat) {
		t.Errorf("ParseDate() error = %v, want ErrInvalidDateFormat", err)
	}
}

func TestExpenseService_TrendAndPercentages(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	svc.Create(ctx, input("30", "Food", core.NewDate(2025, 2, 10)))
	svc.Create(ctx, input("70", "Shopping", core.NewDate(2025, 3, 10)))

	trend, err := svc.MonthlyTrend(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trend) != 2 || trend[0].Month != "2025-02" || trend[1].Month != "2025-03" {
		t.Errorf("MonthlyTrend() = %+v", trend)
	}

	shares, err := svc.CategoryPercentages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(shares) != 2 || !shares[1].Percent.Equal(decimal.NewFromInt(70)) {
		t.Errorf("CategoryPercentages() = %+v", shares)
	}
}

func TestExpenseService_Close(t *testing.T) {
	svc, pub, _ := newTestService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !pub.closed {
		t.Error("Close() should close the publisher")
	}
}
