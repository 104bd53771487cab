package pipeline

import (
	"fmt"
	"strings"

	"github.com/tripweave/tripweave/trip"
)

// Stage prompt builders. Each stage pairs a prompt builder with a parser
// and a fallback; the builders only assemble text, never call anything.

const identitySystemPrompt = `You design the visual identity for a travel itinerary. ` +
	`Respond with a single JSON object: {"destination", "duration", "tone", "palette", "hero_style", "font"}. ` +
	`duration is an integer number of days (at least 1). ` +
	`palette must be one of: sunset, ocean, forest, blossom, desert, ink. ` +
	`font must be one of: classic, modern, editorial, playful. ` +
	`tone is a short vibe descriptor like "slow and indulgent".`

func buildIdentityPrompt(req trip.Request, analysis trip.SceneAnalysis, insightText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Travel request: %s\n", req.Prompt)
	fmt.Fprintf(&b, "Scene: %s — %s\n", analysis.Category, analysis.Summary)
	if insightText != "" {
		fmt.Fprintf(&b, "Context from the traveler's references: %s\n", insightText)
	}
	b.WriteString("Produce the visual identity JSON.")
	return b.String()
}

const skeletonSystemPrompt = `You outline multi-day travel itineraries. ` +
	`Respond with a single JSON object: {"summary", "highlights", "days"}. ` +
	`summary is one line. highlights is 3-5 objects {"icon", "title", "description"} where icon is a single emoji. ` +
	`days is an array with exactly the requested number of entries, each {"day", "title", "theme", "city", "image_keyword"}.`

func buildSkeletonPrompt(id trip.VisualIdentity, analysis trip.SceneAnalysis, req trip.Request, insightText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\nDuration: %d days\nTone: %s\nScene: %s\n",
		id.Destination, id.Duration, id.Tone, analysis.Category)
	if len(analysis.Highlights) > 0 {
		fmt.Fprintf(&b, "Traveler interests: %s\n", strings.Join(analysis.Highlights, ", "))
	}
	if insightText != "" {
		fmt.Fprintf(&b, "Context from the traveler's references: %s\n", insightText)
	}
	for _, link := range req.ReferenceLinks {
		fmt.Fprintf(&b, "Traveler-supplied link: %s\n", link)
	}
	fmt.Fprintf(&b, "Outline exactly %d days as JSON.", id.Duration)
	return b.String()
}

const daySystemPrompt = `You plan one day of a travel itinerary in detail. ` +
	`Respond with a single JSON object: {"activities"}. ` +
	`activities is 3-5 objects {"time_of_day", "title", "description", "location", "tip"} ` +
	`where time_of_day is like "09:00" or "morning", location is a concrete place name, and tip is optional.`

func buildDayPrompt(id trip.VisualIdentity, day trip.DaySkeleton) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\nDay %d of %d: %s\nTheme: %s\nCity: %s\nTone: %s\n",
		id.Destination, day.Day, id.Duration, day.Title, day.Theme, day.City, id.Tone)
	b.WriteString("Plan this day's activities as JSON.")
	return b.String()
}

// buildEditedDayPrompt extends the day prompt with the traveler's edit
// request for single-day regeneration.
func buildEditedDayPrompt(id trip.VisualIdentity, day trip.DaySkeleton, instruction string) string {
	base := buildDayPrompt(id, day)
	if instruction == "" {
		return base
	}
	return base + fmt.Sprintf("\nThe traveler asked for this change: %s\nReplan the day accordingly.", instruction)
}
