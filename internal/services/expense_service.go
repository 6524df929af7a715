package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"expenses/internal/cache"
	"expenses/internal/core"
	"expenses/internal/events"
	"expenses/internal/ledger"
	"expenses/internal/log"
	"expenses/internal/period"
)

// ExpenseService is the entry point outer layers use for the ledger. It
// validates input, publishes change events and caches summaries.
type ExpenseService struct {
	ledger    ledger.Ledger
	publisher events.Publisher
	logger    *log.Logger
	summaries cache.Cache[any]
	today     func() core.Date

	// generation changes on every successful write; summary cache keys embed it
	generation atomic.Uint64
	flight     singleflight.Group
}

type Option func(*ExpenseService)

// WithPublisher sends change events to p after each successful write.
func WithPublisher(p events.Publisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

// WithSummaryCache caches category and period summaries in c.
func WithSummaryCache(c cache.Cache[any]) Option {
	return func(s *ExpenseService) { s.summaries = c }
}

// WithToday overrides the calendar date used to resolve period tokens.
func WithToday(today func() core.Date) Option {
	return func(s *ExpenseService) { s.today = today }
}

func NewExpenseService(l ledger.Ledger, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		ledger:    l,
		publisher: events.Nop{},
		today:     core.Today,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.Config{
			Handler:   slog.Default().Handler(),
			Component: log.ComponentLedger,
		})
	}
	return s
}

// Create validates in and stores it as a new expense.
func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected expense input", log.NewFields().
			WithOperation(log.OpCreate).
			WithErrorType(log.ErrorTypeValidation).
			WithError(err).ToSlice()...)
		return core.Expense{}, err
	}

	e, err := s.ledger.Create(ctx, in.Expense())
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.generation.Add(1)

	s.logger.InfoContext(ctx, "Expense created", log.NewFields().
		WithOperation(log.OpCreate).
		WithExpense(e.ID, e.Category, e.Amount.String(), e.Date.String()).ToSlice()...)

	s.publish(ctx, events.Created(e))
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	e, err := s.ledger.Get(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context, f ledger.Filter) ([]core.Expense, error) {
	list, err := s.ledger.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	s.logger.DebugContext(ctx, "Expenses listed", log.NewFields().
		WithOperation(log.OpList).
		With(log.FieldCount, len(list)).ToSlice()...)
	return list, nil
}

// Update applies the supplied patch fields to the expense.
func (s *ExpenseService) Update(ctx context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	if err := p.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected expense patch", log.NewFields().
			WithOperation(log.OpUpdate).
			WithErrorType(log.ErrorTypeValidation).
			With(log.FieldExpenseID, id).
			WithError(err).ToSlice()...)
		return core.Expense{}, err
	}

	e, err := s.ledger.Update(ctx, id, p)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.generation.Add(1)

	s.logger.InfoContext(ctx, "Expense updated", log.NewFields().
		WithOperation(log.OpUpdate).
		WithExpense(e.ID, e.Category, e.Amount.String(), e.Date.String()).ToSlice()...)

	s.publish(ctx, events.Updated(e))
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.ledger.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.generation.Add(1)

	s.logger.InfoContext(ctx, "Expense deleted", log.NewFields().
		WithOperation(log.OpDelete).
		With(log.FieldExpenseID, id).ToSlice()...)

	s.publish(ctx, events.Deleted(id))
	return nil
}

// Seed stores the built-in sample expenses through the regular create path.
func (s *ExpenseService) Seed(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	for _, in := range ledger.SampleExpenses() {
		e, err := s.Create(ctx, in)
		if err != nil {
			return out, fmt.Errorf("seed expenses: %w", err)
		}
		out = append(out, e)
	}
	s.logger.InfoContext(ctx, "Sample expenses seeded", log.NewFields().
		WithOperation(log.OpSeed).
		With(log.FieldCount, len(out)).ToSlice()...)
	return out, nil
}

func (s *ExpenseService) CategorySummary(ctx context.Context) ([]core.CategorySummary, error) {
	v, err := s.cached(ctx, "categories", func() (any, error) {
		return s.ledger.CategorySummary(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	return slices.Clone(v.([]core.CategorySummary)), nil
}

// PeriodSummary aggregates the expenses dated in [start, end].
func (s *ExpenseService) PeriodSummary(ctx context.Context, start, end core.Date) (core.PeriodSummary, error) {
	key := "period:" + start.String() + ":" + end.String()
	v, err := s.cached(ctx, key, func() (any, error) {
		return s.ledger.PeriodSummary(ctx, start, end)
	})
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("period summary: %w", err)
	}
	sum := v.(core.PeriodSummary)
	sum.CategoryBreakdown = slices.Clone(sum.CategoryBreakdown)
	return sum, nil
}

// SummaryFor resolves the window from a period token or an explicit
// start/end pair (token wins, current month when neither is given) and
// summarizes it.
func (s *ExpenseService) SummaryFor(ctx context.Context, token, start, end string) (core.PeriodSummary, error) {
	r, err := period.Select(token, start, end, s.today())
	if err != nil {
		return core.PeriodSummary{}, err
	}
	s.logger.DebugContext(ctx, "Summary window resolved", log.NewFields().
		WithOperation(log.OpPeriodSummary).
		With(log.FieldPeriod, token).
		WithRange(r.Start.String(), r.End.String()).ToSlice()...)
	return s.PeriodSummary(ctx, r.Start, r.End)
}

// ResolvePeriod maps a period token to its inclusive date range as of today.
func (s *ExpenseService) ResolvePeriod(token string) (period.Range, error) {
	return period.ResolveAt(token, s.today())
}

func (s *ExpenseService) ParseDate(text string) (core.Date, error) {
	return core.ParseDate(text)
}

// MonthlyTrend totals every expense per calendar month, oldest first.
func (s *ExpenseService) MonthlyTrend(ctx context.Context) ([]core.MonthTotal, error) {
	all, err := s.ledger.List(ctx, ledger.Filter{})
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	return ledger.MonthlyTrend(all), nil
}

func (s *ExpenseService) CategoryPercentages(ctx context.Context) ([]core.CategoryShare, error) {
	all, err := s.ledger.List(ctx, ledger.Filter{})
	if err != nil {
		return nil, fmt.Errorf("category percentages: %w", err)
	}
	return ledger.CategoryPercentages(all), nil
}

// cached serves name from the summary cache for the current generation,
// collapsing concurrent misses into one ledger read.
func (s *ExpenseService) cached(ctx context.Context, name string, load func() (any, error)) (any, error) {
	if s.summaries == nil {
		return load()
	}

	key := fmt.Sprintf("%d:%s", s.generation.Load(), name)
	if v, ok := s.summaries.Get(key); ok {
		s.logger.DebugContext(ctx, "Summary served from cache", log.FieldCacheHit, true, "key", key)
		return v, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		s.summaries.Set(key, v)
		return v, nil
	})
	return v, err
}

func (s *ExpenseService) publish(ctx context.Context, ev events.ExpenseEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		// The ledger write already succeeded; the event is best-effort.
		s.logger.ErrorContext(ctx, "Failed to publish expense event", log.NewFields().
			WithOperation(log.OpPublish).
			WithErrorType(log.ErrorTypeNetwork).
			With(log.FieldEventType, string(ev.Type)).
			With(log.FieldExpenseID, ev.ExpenseID).
			WithError(err).ToSlice()...)
	}
}

// Close releases the publisher and the ledger backend.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ledger: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
