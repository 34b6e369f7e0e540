package schedule

import "time"

// Moment is a composite arrival or departure point: a calendar date plus a
// discrete time-of-day token.
type Moment struct {
	Date      time.Time
	TimeOfDay TimeOfDay
}

// Availability is the evaluator's view of one participant. Phases holds the
// lifecycle phases the participant is available for; Arrival and Departure,
// when set, bound the window further.
type Availability struct {
	Phases    []Phase
	Arrival   *Moment
	Departure *Moment
}

// Slot is the evaluator's view of one meal slot.
type Slot struct {
	Date     time.Time
	MealType MealType
	Phases   []Phase
}

// AllPhases is the availability default for artists, who carry no explicit
// phase flags and are constrained only by their arrival/departure window.
var AllPhases = []Phase{PhaseSetup, PhaseEvent, PhaseTeardown}

// IsEligible decides whether a participant with the given availability is
// entitled to the given slot. Pure: no I/O, no clock.
//
// Rules in order, first failing rule wins: the slot's phases must intersect
// the participant's phases; the slot must not precede the arrival day, and on
// the arrival day its meal must survive the arrival cutoff; symmetrically for
// departure.
func IsEligible(av Availability, slot Slot) bool {
	if !phasesIntersect(av.Phases, slot.Phases) {
		return false
	}

	slotDate := DateOnly(slot.Date)

	if av.Arrival != nil {
		arrivalDate := DateOnly(av.Arrival.Date)
		if slotDate.Before(arrivalDate) {
			return false
		}
		if slotDate.Equal(arrivalDate) &&
			!containsMeal(AvailableMealsOnArrival(av.Arrival.TimeOfDay), slot.MealType) {
			return false
		}
	}

	if av.Departure != nil {
		departureDate := DateOnly(av.Departure.Date)
		if slotDate.After(departureDate) {
			return false
		}
		if slotDate.Equal(departureDate) &&
			!containsMeal(AvailableMealsOnDeparture(av.Departure.TimeOfDay), slot.MealType) {
			return false
		}
	}

	return true
}

func phasesIntersect(a, b []Phase) bool {
	for _, pa := range a {
		for _, pb := range b {
			if pa == pb {
				return true
			}
		}
	}
	return false
}
