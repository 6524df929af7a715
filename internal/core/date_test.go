package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	good := map[string]Date{
		"2025-04-01": NewDate(2025, time.April, 1),
		"2024-02-29": NewDate(2024, time.February, 29),
		"1999-12-31": NewDate(1999, time.December, 31),
	}
	for in, want := range good {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) error: %v", in, err)
		}
		if !got.Equal(want.Time) {
			t.Fatalf("ParseDate(%q) = %s, want %s", in, got, want)
		}
	}

	bad := []string{
		"2025-13-01",
		"04-01-2025",
		"2025-4-1",
		"25-04-01",
		"2025/04/01",
		"2025-02-30",
		"2025-04",
		"2025-04-01T00:00:00Z",
		"",
	}
	for _, in := range bad {
		_, err := ParseDate(in)
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("ParseDate(%q) = %v, want ErrInvalidDateFormat", in, err)
		}
		var fe *DateFormatError
		if !errors.As(err, &fe) || fe.Input != in {
			t.Fatalf("ParseDate(%q) error should carry the input, got %v", in, err)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2025, time.April, 2) // Wednesday
	if got := d.WeekdayIndex(); got != 2 {
		t.Fatalf("WeekdayIndex() = %d, want 2", got)
	}
	if got := NewDate(2025, time.April, 6).WeekdayIndex(); got != 6 {
		t.Fatalf("Sunday WeekdayIndex() = %d, want 6", got)
	}
	if got := d.AddDays(-2).String(); got != "2025-03-31" {
		t.Fatalf("AddDays(-2) = %s", got)
	}
	if got := d.FirstOfMonth().String(); got != "2025-04-01" {
		t.Fatalf("FirstOfMonth() = %s", got)
	}
	if got := d.FirstOfYear().String(); got != "2025-01-01" {
		t.Fatalf("FirstOfYear() = %s", got)
	}
	if got := d.MonthKey(); got != "2025-04" {
		t.Fatalf("MonthKey() = %s", got)
	}
	if !d.Between(d, d) {
		t.Fatal("Between must be inclusive on both ends")
	}
	if d.Between(d.AddDays(1), d.AddDays(3)) {
		t.Fatal("date before the window reported inside")
	}
}

func TestDateOfKeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2025, time.April, 1, 3, 0, 0, 0, loc) // still March 31 in UTC
	if got := DateOf(ts).String(); got != "2025-04-01" {
		t.Fatalf("DateOf() = %s, want 2025-04-01", got)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-25"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err := json.Marshal(d)
	if err != nil || string(b) != `"2025-03-25"` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	if err := json.Unmarshal([]byte(`"03/25/2025"`), &d); !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
	}
}
