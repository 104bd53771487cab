package pipeline

import (
	"github.com/tripweave/tripweave/render"
	"github.com/tripweave/tripweave/trip"
)

// Per-stage fallback values. Each is a pure function so fallback policy
// is declared once per stage and unit-testable on its own.

// fallbackActivities is the fixed four-activity day substituted when the
// day's activity generation cannot be parsed. A day must never be
// entirely absent from the output.
func fallbackActivities(id trip.VisualIdentity, day trip.DaySkeleton) []trip.Activity {
	city := day.City
	if city == "" {
		city = id.Destination
	}
	return []trip.Activity{
		{
			TimeOfDay:   "morning",
			Title:       "Morning exploration",
			Description: "Ease into the day with a walk through " + city + "'s most walkable quarter.",
			Location:    trip.Place{Name: city + " city center", City: city},
		},
		{
			TimeOfDay:   "noon",
			Title:       "Local lunch",
			Description: "Lunch at a well-reviewed local spot near the morning route.",
			Location:    trip.Place{Name: city + " old town", City: city},
		},
		{
			TimeOfDay:   "afternoon",
			Title:       "Afternoon culture",
			Description: "A museum, landmark, or gallery that fits the day's theme.",
			Location:    trip.Place{Name: city + " museum district", City: city},
		},
		{
			TimeOfDay:   "evening",
			Title:       "Evening leisure",
			Description: "Wind down with dinner and an easy evening stroll.",
			Location:    trip.Place{Name: city + " riverside", City: city},
		},
	}
}

// fallbackDayResult is the minimal result substituted by the orchestrator
// when a day worker fails outright: placeholder title, no activities,
// non-empty placeholder markup.
func fallbackDayResult(day trip.DaySkeleton) trip.DayResult {
	return trip.DayResult{
		Day:      day.Day,
		Skeleton: day,
		Markup:   render.PlaceholderDay(day.Day),
	}
}
