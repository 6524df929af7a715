// Package worker turns ledger change events into journal rows.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"expenses/internal/cache"
	"expenses/internal/events"
	"expenses/internal/log"
	"expenses/internal/sheets"
)

// Defaults for the redelivery window: how many event ids are remembered and
// for how long.
const (
	defaultSeenCapacity = 1024
	defaultSeenTTL      = 24 * time.Hour
)

// JournalWorker appends one journal row per event. Redelivered events whose
// row was already written are skipped.
type JournalWorker struct {
	journal sheets.JournalWriter
	logger  *log.Logger
	seen    *cache.LRUCache[string]

	processed atomic.Int64
	skipped   atomic.Int64
}

type Option func(*JournalWorker)

// WithSeenWindow sets how many event ids are remembered and for how long.
// A capacity of zero keeps the default.
func WithSeenWindow(capacity int, ttl time.Duration) Option {
	return func(w *JournalWorker) {
		if capacity > 0 {
			w.seen = cache.NewLRUCache[string](capacity, ttl)
		}
	}
}

func NewJournalWorker(journal sheets.JournalWriter, logger *log.Logger, opts ...Option) *JournalWorker {
	w := &JournalWorker{
		journal: journal,
		logger:  logger.WithComponent(log.ComponentWorker),
		seen:    cache.NewLRUCache[string](defaultSeenCapacity, defaultSeenTTL),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SeenEvents exposes the redelivery window so a cache.Manager can sweep it.
func (w *JournalWorker) SeenEvents() cache.Cleaner {
	return w.seen
}

// HandleEvent is the consumer callback. Returning an error makes the
// broker redeliver the event.
func (w *JournalWorker) HandleEvent(ctx context.Context, ev events.ExpenseEvent) error {
	if ev.ID != "" {
		if ref, ok := w.seen.Get(ev.ID); ok {
			w.skipped.Add(1)
			w.logger.DebugContext(ctx, "Event already journaled", log.NewFields().
				With(log.FieldEventID, ev.ID).
				With(log.FieldSheetsRef, ref).ToSlice()...)
			return nil
		}
	}

	ctx = log.IntoContext(ctx, w.logger.With(log.FieldEventID, ev.ID, log.FieldExpenseID, ev.ExpenseID))
	ref, err := w.journal.AppendEntry(ctx, sheets.EntryFromEvent(ev))
	if err != nil {
		return fmt.Errorf("append journal entry for %s: %w", ev.ExpenseID, err)
	}
	if ev.ID != "" {
		w.seen.Set(ev.ID, ref)
	}
	w.processed.Add(1)

	log.FromContext(ctx).InfoContext(ctx, "Event journaled", log.NewFields().
		WithOperation(log.OpAppend).
		With(log.FieldEventType, string(ev.Type)).
		With(log.FieldSheetsRef, ref).ToSlice()...)
	return nil
}

// Stats returns how many events were written and how many were duplicates.
func (w *JournalWorker) Stats() (processed, skipped int64) {
	return w.processed.Load(), w.skipped.Load()
}
