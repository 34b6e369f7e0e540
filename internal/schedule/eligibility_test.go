package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eventSlot(d time.Time, meal MealType) Slot {
	return Slot{Date: d, MealType: meal, Phases: []Phase{PhaseEvent}}
}

func TestAvailableMealsOnArrival(t *testing.T) {
	assert.Equal(t, []MealType{MealBreakfast, MealLunch, MealDinner}, AvailableMealsOnArrival(Morning))
	assert.Equal(t, []MealType{MealLunch, MealDinner}, AvailableMealsOnArrival(Afternoon))
	assert.Equal(t, []MealType{MealDinner}, AvailableMealsOnArrival(Evening))
	assert.Empty(t, AvailableMealsOnArrival(Night))

	// Unknown tokens restrict nothing.
	assert.Equal(t, MealTypes, AvailableMealsOnArrival("NOON"))
}

func TestAvailableMealsOnDeparture(t *testing.T) {
	assert.Equal(t, []MealType{MealBreakfast}, AvailableMealsOnDeparture(Morning))
	assert.Equal(t, []MealType{MealBreakfast, MealLunch}, AvailableMealsOnDeparture(Afternoon))
	assert.Equal(t, []MealType{MealBreakfast, MealLunch, MealDinner}, AvailableMealsOnDeparture(Evening))
	assert.Equal(t, []MealType{MealBreakfast, MealLunch, MealDinner}, AvailableMealsOnDeparture(Night))
}

func TestIsEligiblePhaseGate(t *testing.T) {
	slot := Slot{
		Date:     date(2026, time.July, 9),
		MealType: MealLunch,
		Phases:   []Phase{PhaseSetup},
	}

	eventOnly := Availability{Phases: []Phase{PhaseEvent}}
	assert.False(t, IsEligible(eventOnly, slot))

	setupHand := Availability{Phases: []Phase{PhaseSetup, PhaseEvent}}
	assert.True(t, IsEligible(setupHand, slot))
}

func TestIsEligibleEveningArrival(t *testing.T) {
	arrival := &Moment{Date: date(2026, time.July, 10), TimeOfDay: Evening}
	av := Availability{Phases: []Phase{PhaseEvent}, Arrival: arrival}

	// On the arrival day only dinner survives the cutoff.
	assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 10), MealBreakfast)))
	assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 10), MealLunch)))
	assert.True(t, IsEligible(av, eventSlot(date(2026, time.July, 10), MealDinner)))

	// The day after, everything is back.
	assert.True(t, IsEligible(av, eventSlot(date(2026, time.July, 11), MealBreakfast)))

	// Before arrival, nothing.
	assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 9), MealDinner)))
}

func TestIsEligibleNightArrival(t *testing.T) {
	arrival := &Moment{Date: date(2026, time.July, 10), TimeOfDay: Night}
	av := Availability{Phases: []Phase{PhaseEvent}, Arrival: arrival}

	for _, meal := range MealTypes {
		assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 10), meal)))
	}
	assert.True(t, IsEligible(av, eventSlot(date(2026, time.July, 11), MealBreakfast)))
}

func TestIsEligibleMorningDeparture(t *testing.T) {
	departure := &Moment{Date: date(2026, time.July, 11), TimeOfDay: Morning}
	av := Availability{Phases: []Phase{PhaseEvent}, Departure: departure}

	// On the departure day only breakfast is reachable before leaving.
	assert.True(t, IsEligible(av, eventSlot(date(2026, time.July, 11), MealBreakfast)))
	assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 11), MealLunch)))
	assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 11), MealDinner)))

	// After departure, nothing.
	assert.False(t, IsEligible(av, eventSlot(date(2026, time.July, 12), MealBreakfast)))

	// Before, everything.
	assert.True(t, IsEligible(av, eventSlot(date(2026, time.July, 10), MealDinner)))
}

func TestIsEligibleNoWindow(t *testing.T) {
	av := Availability{Phases: AllPhases}

	slot := Slot{
		Date:     date(2026, time.July, 8),
		MealType: MealBreakfast,
		Phases:   []Phase{PhaseSetup},
	}
	assert.True(t, IsEligible(av, slot))
}

func TestIsEligibleSameDayArrivalAndDeparture(t *testing.T) {
	day := date(2026, time.July, 10)
	av := Availability{
		Phases:    []Phase{PhaseEvent},
		Arrival:   &Moment{Date: day, TimeOfDay: Afternoon},
		Departure: &Moment{Date: day, TimeOfDay: Evening},
	}

	// Both cutoffs apply on the shared day: arrival drops breakfast,
	// departure at evening keeps the rest.
	assert.False(t, IsEligible(av, eventSlot(day, MealBreakfast)))
	assert.True(t, IsEligible(av, eventSlot(day, MealLunch)))
	assert.True(t, IsEligible(av, eventSlot(day, MealDinner)))
}
