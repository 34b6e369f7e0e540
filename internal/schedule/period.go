package schedule

import (
	"errors"
	"time"
)

// Phase classifies a calendar day within the event lifecycle.
type Phase string

const (
	PhaseSetup    Phase = "SETUP"
	PhaseEvent    Phase = "EVENT"
	PhaseTeardown Phase = "TEARDOWN"
)

// MealType identifies one of the three catered meals of a day.
type MealType string

const (
	MealBreakfast MealType = "BREAKFAST"
	MealLunch     MealType = "LUNCH"
	MealDinner    MealType = "DINNER"
)

// MealTypes lists all meal types in serving order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// ErrInvalidPeriod is returned when the configured event dates are inverted
// or the setup/teardown bounds fall inside the event range.
var ErrInvalidPeriod = errors.New("invalid event period")

// Period holds the structural dates of an event. SetupStart and TeardownEnd
// are optional; when absent the period collapses to [EventStart, EventEnd].
type Period struct {
	EventStart  time.Time
	EventEnd    time.Time
	SetupStart  *time.Time
	TeardownEnd *time.Time
}

// Day is one calendar day of the catering period with its phase.
type Day struct {
	Date  time.Time
	Phase Phase
}

// DateOnly normalizes a timestamp to midnight UTC. All calendar comparisons
// in this package operate on normalized dates.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// Days resolves the period into its ordered day set. Days strictly before
// EventStart are SETUP, days strictly after EventEnd are TEARDOWN, everything
// in [EventStart, EventEnd] is EVENT.
func (p Period) Days() ([]Day, error) {
	start := DateOnly(p.EventStart)
	end := DateOnly(p.EventEnd)
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}

	first := start
	if p.SetupStart != nil {
		setup := DateOnly(*p.SetupStart)
		if setup.After(start) {
			return nil, ErrInvalidPeriod
		}
		first = setup
	}

	last := end
	if p.TeardownEnd != nil {
		teardown := DateOnly(*p.TeardownEnd)
		if teardown.Before(end) {
			return nil, ErrInvalidPeriod
		}
		last = teardown
	}

	var days []Day
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		phase := PhaseEvent
		if d.Before(start) {
			phase = PhaseSetup
		} else if d.After(end) {
			phase = PhaseTeardown
		}
		days = append(days, Day{Date: d, Phase: phase})
	}
	return days, nil
}
