// Package memory keeps the change journal in process memory. The worker
// writes to it in dry-run mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expenses/internal/sheets"
)

type Journal struct {
	mu      sync.Mutex
	entries []sheets.JournalEntry
}

var (
	_ sheets.JournalWriter = (*Journal)(nil)
	_ sheets.JournalReader = (*Journal)(nil)
)

func New() *Journal {
	return &Journal{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (j *Journal) AppendEntry(_ context.Context, e sheets.JournalEntry) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return fmt.Sprintf("mem:%d", len(j.entries)), nil
}

func (j *Journal) ListEntries(_ context.Context) ([]sheets.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheets.JournalEntry(nil), j.entries...), nil
}
