package model

import (
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

// Period is a closed date range. Immutable once a report snapshot references it.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod returns a period covering [start, end].
func NewPeriod(start, end time.Time) (Period, error) {
	if end.Before(start) {
		return Period{}, fmt.Errorf("period end %s before start %s",
			end.Format(dateFormat), start.Format(dateFormat))
	}
	return Period{Start: start, End: end}, nil
}

// MonthPeriod returns the calendar-month period for year/month.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// QuarterPeriod returns the calendar-quarter period containing the given
// quarter (1-4) of a year.
func QuarterPeriod(year, quarter int) Period {
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 3, -1)}
}

// Contains reports whether d falls within the period.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Prior returns the preceding period of equal calendar length, for
// period-over-period comparisons.
func (p Period) Prior() Period {
	months := monthSpan(p.Start, p.End)
	if months > 0 && p.Start.Day() == 1 && isMonthEnd(p.End) {
		start := p.Start.AddDate(0, -months, 0)
		return Period{Start: start, End: start.AddDate(0, months, -1)}
	}
	days := int(p.End.Sub(p.Start).Hours()/24) + 1
	return Period{Start: p.Start.AddDate(0, 0, -days), End: p.End.AddDate(0, 0, -days)}
}

// String renders "2025-01-01..2025-03-31", used in cache keys and logs.
func (p Period) String() string {
	return p.Start.Format(dateFormat) + ".." + p.End.Format(dateFormat)
}

func monthSpan(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}

func isMonthEnd(d time.Time) bool {
	return d.AddDate(0, 0, 1).Day() == 1
}
