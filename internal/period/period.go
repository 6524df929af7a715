// Package period resolves named calendar periods ("this_month", "last_week", ...)
// into inclusive date ranges anchored on a given day. Weeks start on Monday.
package period

import (
	"errors"
	"fmt"

	"expenses/internal/core"
)

const (
	Today     = "today"
	Yesterday = "yesterday"
	ThisWeek  = "this_week"
	LastWeek  = "last_week"
	ThisMonth = "this_month"
	LastMonth = "last_month"
	ThisYear  = "this_year"
	LastYear  = "last_year"
)

var ErrInvalidPeriod = errors.New("invalid period")

// InvalidPeriodError reports an unrecognised period token.
type InvalidPeriodError struct {
	Token string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: %q", e.Token)
}

func (e *InvalidPeriodError) Unwrap() error { return ErrInvalidPeriod }

// Range is an inclusive [Start, End] date interval.
type Range struct {
	Start core.Date
	End   core.Date
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Contains reports whether d lies inside the range, bounds included.
func (r Range) Contains(d core.Date) bool {
	return d.Between(r.Start, r.End)
}

// Tokens returns the recognised period tokens.
func Tokens() []string {
	return []string{Today, Yesterday, ThisWeek, LastWeek, ThisMonth, LastMonth, ThisYear, LastYear}
}

// Resolve maps token to a range anchored on today's local date.
func Resolve(token string) (Range, error) {
	return ResolveAt(token, core.Today())
}

// ResolveAt maps token to a range anchored on today.
func ResolveAt(token string, today core.Date) (Range, error) {
	switch token {
	case Today:
		return Range{Start: today, End: today}, nil
	case Yesterday:
		y := today.AddDays(-1)
		return Range{Start: y, End: y}, nil
	case ThisWeek:
		return Range{Start: weekStart(today), End: today}, nil
	case LastWeek:
		start := weekStart(today)
		return Range{Start: start.AddDays(-7), End: start.AddDays(-1)}, nil
	case ThisMonth:
		return Range{Start: today.FirstOfMonth(), End: today}, nil
	case LastMonth:
		end := today.FirstOfMonth().AddDays(-1)
		return Range{Start: end.FirstOfMonth(), End: end}, nil
	case ThisYear:
		return Range{Start: today.FirstOfYear(), End: today}, nil
	case LastYear:
		end := today.FirstOfYear().AddDays(-1)
		return Range{Start: end.FirstOfYear(), End: end}, nil
	default:
		return Range{}, &InvalidPeriodError{Token: token}
	}
}

func weekStart(d core.Date) core.Date {
	return d.AddDays(-d.WeekdayIndex())
}

// ParseDate parses an explicit YYYY-MM-DD bound.
func ParseDate(s string) (core.Date, error) {
	return core.ParseDate(s)
}

// ParseRange parses explicit start and end bounds.
func ParseRange(start, end string) (Range, error) {
	s, err := core.ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// Select picks the window for a summary request: a token wins, then an
// explicit start/end pair, and with neither the current month to date.
func Select(token, start, end string, today core.Date) (Range, error) {
	switch {
	case token != "":
		return ResolveAt(token, today)
	case start != "" && end != "":
		return ParseRange(start, end)
	default:
		return ResolveAt(ThisMonth, today)
	}
}
