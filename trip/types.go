// Package trip defines the core itinerary domain types shared by every
// pipeline stage: the inbound request, scene analysis, visual identity,
// the authoritative skeleton, and per-day generation results.
package trip

import (
	"fmt"
	"strings"
	"time"
)

// Request is a user-submitted travel request. Immutable once submitted;
// one Request feeds exactly one pipeline run.
type Request struct {
	// Prompt is the free-text travel request.
	Prompt string `json:"prompt"`

	// ReferenceLinks are optional user-supplied hyperlinks to travel
	// articles or guides consulted during generation.
	ReferenceLinks []string `json:"reference_links,omitempty"`

	// MediaNotes are optional user-supplied descriptions of photos or
	// clips attached to the request.
	MediaNotes []string `json:"media_notes,omitempty"`
}

// SceneAnalysis is the scene classifier's verdict on a request.
type SceneAnalysis struct {
	Category   SceneCategory `json:"category"`
	Confidence float64       `json:"confidence"`
	Summary    string        `json:"summary"`
	Highlights []string      `json:"highlights"`
	Keywords   []string      `json:"keywords"`
}

// FontPairing names a heading/body font combination from the fixed catalog.
type FontPairing struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// VisualIdentity carries the destination, duration, and styling hints
// produced once per run and read by every downstream stage.
type VisualIdentity struct {
	Destination string        `json:"destination"`
	Duration    int           `json:"duration"`
	Tone        string        `json:"tone"`
	Palette     Palette       `json:"palette"`
	HeroStyle   string        `json:"hero_style"`
	Font        FontPairing   `json:"font"`
	HeroImage   string        `json:"hero_image,omitempty"`
	Scene       SceneCategory `json:"scene"`
}

// Highlight is one icon/title/description triple shown in the trip overview.
type Highlight struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DaySkeleton is the lightweight outline for one day, produced in bulk by
// the skeleton generator and individually replaced by single-day edits.
type DaySkeleton struct {
	// Day is the 1-based day index, dense within a skeleton.
	Day          int    `json:"day"`
	Title        string `json:"title"`
	Theme        string `json:"theme"`
	City         string `json:"city"`
	ImageKeyword string `json:"image_keyword"`
}

// Skeleton is the authoritative plan: the visual identity plus the
// overall summary, highlights, and the ordered day outline.
type Skeleton struct {
	Identity   VisualIdentity `json:"identity"`
	Summary    string         `json:"summary"`
	Highlights []Highlight    `json:"highlights"`
	Days       []DaySkeleton  `json:"days"`
}

// Place is a resolved location. Lat/Lng/Address are zero when the place
// lookup found no match; a name-only Place is a valid terminal state.
type Place struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	Address string  `json:"address,omitempty"`
	City    string  `json:"city,omitempty"`
}

// Resolved reports whether the place carries coordinates.
func (p Place) Resolved() bool {
	return p.Lat != 0 || p.Lng != 0
}

// Activity is one entry in a day's schedule.
type Activity struct {
	TimeOfDay   string `json:"time_of_day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    Place  `json:"location"`
	Tip         string `json:"tip,omitempty"`
}

// DayResult is the fully generated detail for one skeleton day. It is
// superseded wholesale, never merged, when its day is regenerated.
type DayResult struct {
	Day        int           `json:"day"`
	Skeleton   DaySkeleton   `json:"skeleton"`
	Activities []Activity    `json:"activities"`
	Images     []string      `json:"images"`
	Markup     string        `json:"markup"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Clone returns a deep copy of the skeleton. Snapshots and sessions rely
// on copies so a committed skeleton can never be mutated through aliasing.
func (s *Skeleton) Clone() *Skeleton {
	if s == nil {
		return nil
	}
	c := *s
	c.Highlights = append([]Highlight(nil), s.Highlights...)
	c.Days = append([]DaySkeleton(nil), s.Days...)
	return &c
}

// Day returns the skeleton day with the given 1-based index, or nil.
func (s *Skeleton) Day(n int) *DaySkeleton {
	for i := range s.Days {
		if s.Days[i].Day == n {
			return &s.Days[i]
		}
	}
	return nil
}

// Validate checks the skeleton invariants: duration matches the day count
// and day indices are exactly 1..duration with no gaps or duplicates.
func (s *Skeleton) Validate() error {
	if s.Identity.Duration != len(s.Days) {
		return fmt.Errorf("duration %d does not match day count %d", s.Identity.Duration, len(s.Days))
	}
	seen := make(map[int]bool, len(s.Days))
	for _, d := range s.Days {
		if d.Day < 1 || d.Day > len(s.Days) {
			return fmt.Errorf("day index %d out of range 1..%d", d.Day, len(s.Days))
		}
		if seen[d.Day] {
			return fmt.Errorf("duplicate day index %d", d.Day)
		}
		seen[d.Day] = true
	}
	return nil
}

// CompactSummary serializes the skeleton to the short day-by-day form
// embedded in the feedback classification prompt.
func (s *Skeleton) CompactSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %d days, %s\n", s.Identity.Destination, s.Identity.Duration, s.Identity.Tone)
	for _, d := range s.Days {
		fmt.Fprintf(&b, "Day %d: %s (%s, %s)\n", d.Day, d.Title, d.Theme, d.City)
	}
	return b.String()
}
