package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("EVENTS_BACKEND", "none")
	t.Setenv("SEED_SAMPLE_DATA", "false")
	t.Setenv("LOG_LEVEL", "error")
}

func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	if code != exitOK {
		t.Logf("ledger %s: exit %d, stderr: %s", strings.Join(args, " "), code, stderr.String())
	}
	return stdout.String(), code
}

func TestRun_Lifecycle(t *testing.T) {
	setupEnv(t)

	out, code := runCLI(t, "add", "-amount", "45,50", "-category", "Food", "-description", "Groceries", "-date", "2025-03-28")
	if code != exitOK {
		t.Fatalf("add exit = %d", code)
	}
	var created struct {
		ID     string      `json:"id"`
		Amount json.Number `json:"amount"`
		Date   string      `json:"date"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("add output is not JSON: %v\n%s", err, out)
	}
	if created.ID == "" || created.Amount.String() != "45.5" || created.Date != "2025-03-28" {
		t.Fatalf("created = %+v", created)
	}

	if _, code := runCLI(t, "add", "-amount", "500", "-category", "Shopping", "-date", "2025-03-25"); code != exitOK {
		t.Fatalf("second add exit = %d", code)
	}

	out, code = runCLI(t, "update", created.ID, "-description", "")
	if code != exitOK {
		t.Fatalf("update exit = %d", code)
	}
	if strings.Contains(out, "Groceries") || !strings.Contains(out, `"category": "Food"`) {
		t.Errorf("update should clear only the description:\n%s", out)
	}

	out, code = runCLI(t, "list", "-min", "100")
	if code != exitOK {
		t.Fatalf("list exit = %d", code)
	}
	var listed []map[string]any
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("list output: %v", err)
	}
	if len(listed) != 1 || listed[0]["category"] != "Shopping" {
		t.Errorf("list -min 100 = %v", listed)
	}

	out, code = runCLI(t, "period", "-start", "2025-03-01", "-end", "2025-03-31")
	if code != exitOK {
		t.Fatalf("period exit = %d", code)
	}
	if !strings.Contains(out, `"total_amount": 545.5`) || !strings.Contains(out, `"total_expenses": 2`) {
		t.Errorf("period summary:\n%s", out)
	}

	if _, code := runCLI(t, "delete", created.ID); code != exitOK {
		t.Fatalf("delete exit = %d", code)
	}
	if _, code := runCLI(t, "get", created.ID); code != exitNotFound {
		t.Errorf("get after delete exit = %d, want %d", code, exitNotFound)
	}
}

func TestRun_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"archive"}, exitUsage},
		{"get without id", []string{"get"}, exitUsage},
		{"update without fields", []string{"update", "some-id"}, exitUsage},
		{"bad amount", []string{"add", "-amount", "-3", "-category", "Food"}, exitFailure},
		{"bad date", []string{"add", "-amount", "3", "-category", "Food", "-date", "2025/03/01"}, exitFailure},
		{"bad token", []string{"period", "-token", "next_week"}, exitFailure},
		{"missing id", []string{"delete", "nope"}, exitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, code := runCLI(t, tt.args...); code != tt.want {
				t.Errorf("exit = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRun_Periods(t *testing.T) {
	setupEnv(t)

	out, code := runCLI(t, "periods")
	if code != exitOK {
		t.Fatalf("periods exit = %d", code)
	}
	var list []struct {
		Token string `json:"token"`
		Start string `json:"start_date"`
		End   string `json:"end_date"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("periods output: %v", err)
	}
	if len(list) != 8 {
		t.Fatalf("got %d periods, want 8", len(list))
	}
	for _, p := range list {
		if p.Start == "" || p.End == "" || p.Start > p.End {
			t.Errorf("bad range for %s: %s..%s", p.Token, p.Start, p.End)
		}
	}
}

func TestRun_UsageListsChoices(t *testing.T) {
	setupEnv(t)

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != exitUsage {
		t.Fatalf("exit = %d, want %d", code, exitUsage)
	}
	for _, want := range []string{"Food", "Healthcare", "memory, sqlite, postgres"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("usage does not mention %q:\n%s", want, stderr.String())
		}
	}
}
