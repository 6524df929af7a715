//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	ports "expenses/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_JournalAppend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, Config{
		SpreadsheetID:      spreadsheetID,
		SheetName:          os.Getenv("GOOGLE_SHEET_NAME"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}

	entry := ports.JournalEntry{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Event:     "expense.created",
		ExpenseID: "integration-" + time.Now().Format("150405"),
		Date:      time.Now().Format("2006-01-02"),
		Category:  "Other",
		Amount:    "0.01",
	}
	ref, err := client.AppendEntry(ctx, entry)
	if err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	t.Logf("Appended row at %s", ref)

	entries, err := client.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.ExpenseID == entry.ExpenseID {
			found = true
		}
	}
	if !found {
		t.Errorf("appended entry %s not found in journal", entry.ExpenseID)
	}
}
