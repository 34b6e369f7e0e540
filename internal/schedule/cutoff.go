package schedule

// TimeOfDay is the discrete arrival/departure token transmitted alongside a
// calendar date. Participants declare a part of day, never a free timestamp,
// so the cutoff tables below stay well-defined.
type TimeOfDay string

const (
	Morning   TimeOfDay = "MORNING"
	Afternoon TimeOfDay = "AFTERNOON"
	Evening   TimeOfDay = "EVENING"
	Night     TimeOfDay = "NIGHT"
)

// ValidTimeOfDay reports whether the token is one of the four known values.
func ValidTimeOfDay(tod TimeOfDay) bool {
	switch tod {
	case Morning, Afternoon, Evening, Night:
		return true
	}
	return false
}

var arrivalCutoff = map[TimeOfDay][]MealType{
	Morning:   {MealBreakfast, MealLunch, MealDinner},
	Afternoon: {MealLunch, MealDinner},
	Evening:   {MealDinner},
	Night:     {},
}

var departureCutoff = map[TimeOfDay][]MealType{
	Morning:   {MealBreakfast},
	Afternoon: {MealBreakfast, MealLunch},
	Evening:   {MealBreakfast, MealLunch, MealDinner},
	Night:     {MealBreakfast, MealLunch, MealDinner},
}

// AvailableMealsOnArrival returns the meals still reachable on the arrival
// day for a participant arriving at the given time of day. Unknown tokens
// restrict nothing.
func AvailableMealsOnArrival(tod TimeOfDay) []MealType {
	if meals, ok := arrivalCutoff[tod]; ok {
		return meals
	}
	return MealTypes
}

// AvailableMealsOnDeparture returns the meals still reachable on the
// departure day before leaving at the given time of day.
func AvailableMealsOnDeparture(tod TimeOfDay) []MealType {
	if meals, ok := departureCutoff[tod]; ok {
		return meals
	}
	return MealTypes
}

func containsMeal(meals []MealType, m MealType) bool {
	for _, meal := range meals {
		if meal == m {
			return true
		}
	}
	return false
}
