package domain

import (
	"fmt"
	"time"
)

// ReportPeriod is the closed date range a report covers plus the
// reporting as-of date that anchors every date-relative computation.
// Anchoring to AsOf (and never to wall clock) keeps runs reproducible.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	AsOf  time.Time `json:"as_of"`
}

// NewReportPeriod builds a period whose as-of date is the period end.
func NewReportPeriod(start, end time.Time) ReportPeriod {
	return ReportPeriod{Start: start, End: end, AsOf: end}
}

// Validate rejects inverted or unanchored periods.
func (p ReportPeriod) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || p.AsOf.IsZero() {
		return fmt.Errorf("report period is missing a date")
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("report period end %s precedes start %s",
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return nil
}

// Contains reports whether d falls inside the closed range [Start, End].
func (p ReportPeriod) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days is the day count of the closed range, used for partial-period
// interest accrual.
func (p ReportPeriod) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}
