package google

import (
	"fmt"
	"strings"
	"time"

	ports "expenses/internal/sheets"
)

// parseJournal converts a values matrix (as returned by the Sheets API) into
// entries. A leading header row is skipped, as are blank rows.
func parseJournal(values [][]any) ([]ports.JournalEntry, error) {
	var out []ports.JournalEntry
	for i, raw := range values {
		row := toStrings(raw)
		if i == 0 && strings.EqualFold(safeGet(row, 0), ports.JournalHeader[0]) {
			continue
		}
		if strings.Join(row, "") == "" {
			continue
		}

		ts, err := time.Parse(time.RFC3339, safeGet(row, 0))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad timestamp %q", i+1, safeGet(row, 0))
		}
		out = append(out, ports.JournalEntry{
			Timestamp:   ts,
			Event:       safeGet(row, 1),
			ExpenseID:   safeGet(row, 2),
			Date:        safeGet(row, 3),
			Category:    safeGet(row, 4),
			Description: safeGet(row, 5),
			Amount:      safeGet(row, 6),
		})
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
