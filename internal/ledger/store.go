package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
)

// Store is the in-memory Ledger. Writes are serialized and readers never
// observe a half-written record; every record handed out is a copy.
type Store struct {
	mu    sync.RWMutex
	items map[string]core.Expense
	order []string

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the source of "now" used for CreatedAt and the default date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how missing ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		items: make(map[string]core.Expense),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Ledger = (*Store)(nil)

// Create stores e. A caller-supplied id that already exists is overwritten
// in place.
func (s *Store) Create(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = FillDefaults(e, s.now(), s.newID)
	if _, exists := s.items[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.items[e.ID] = e
	return e, nil
}

// FillDefaults assigns the server-side fields a new record needs. Backends
// call it before persisting so they all default the same way.
func FillDefaults(e core.Expense, now time.Time, newID func() string) core.Expense {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Date.IsZero() {
		e.Date = core.DateOf(now)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return e
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.NotFound(id)
	}
	return e, nil
}

func (s *Store) List(_ context.Context, f Filter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		if e := s.items[id]; f.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, id string, p core.ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.NotFound(id)
	}
	e = p.Apply(e)
	s.items[id] = e
	return e, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return core.NotFound(id)
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) CategorySummary(_ context.Context) ([]core.CategorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SummarizeByCategory(s.snapshot()), nil
}

func (s *Store) PeriodSummary(_ context.Context, start, end core.Date) (core.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SummarizePeriod(s.snapshot(), start, end), nil
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close is a no-op; the store holds no external resources.
func (s *Store) Close() error {
	return nil
}

// snapshot returns records in insertion order. Callers must hold mu.
func (s *Store) snapshot() []core.Expense {
	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}
