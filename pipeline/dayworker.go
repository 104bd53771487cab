package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tripweave/tripweave/images"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/render"
	"github.com/tripweave/tripweave/trip"
)

// activitiesResponse is the JSON shape requested from the model.
type activitiesResponse struct {
	Activities []struct {
		TimeOfDay   string `json:"time_of_day"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Location    string `json:"location"`
		Tip         string `json:"tip"`
	} `json:"activities"`
}

// GenerateDay expands one skeleton day into a full DayResult. The only
// failure that propagates is a transport failure of the activity
// generation call; everything after that degrades in place. instruction
// is empty for initial generation and carries the traveler's request for
// single-day edits.
func (p *Pipeline) GenerateDay(ctx context.Context, id trip.VisualIdentity, day trip.DaySkeleton, instruction string) (trip.DayResult, error) {
	started := time.Now()

	activities, err := p.generateActivities(ctx, id, day, instruction)
	if err != nil {
		return trip.DayResult{}, err
	}

	// Place enrichment and image fetch run concurrently; both settle
	// before the day renders.
	var wg sync.WaitGroup
	var dayImages []string

	wg.Add(1)
	go func() {
		defer wg.Done()
		dayImages = p.images.FetchImages(ctx, day.ImageKeyword, p.imagesPerDay, images.Landscape)
	}()

	for i := range activities {
		wg.Add(1)
		go func(a *trip.Activity) {
			defer wg.Done()
			place, err := p.places.LookupPlace(ctx, a.Location.Name, day.City)
			if err != nil {
				// Transport failure is treated identically to no match.
				p.logger.Debug("Place enrichment skipped",
					"place", a.Location.Name, "error", err)
				return
			}
			if place != nil {
				a.Location = *place
			}
		}(&activities[i])
	}
	wg.Wait()

	markup, err := render.Day(day, activities, dayImages)
	if err != nil {
		// Rendering degrades, never fails the day.
		p.logger.Warn("Day render failed, using placeholder", "day", day.Day, "error", err)
		markup = render.PlaceholderDay(day.Day)
	}

	return trip.DayResult{
		Day:        day.Day,
		Skeleton:   day,
		Activities: activities,
		Images:     dayImages,
		Markup:     markup,
		Elapsed:    time.Since(started),
	}, nil
}

// generateActivities runs the activity generation call. A transport
// failure propagates; a malformed response substitutes the fixed
// four-activity fallback.
func (p *Pipeline) generateActivities(ctx context.Context, id trip.VisualIdentity, day trip.DaySkeleton, instruction string) ([]trip.Activity, error) {
	resp, err := p.generator.Complete(ctx, llm.Request{
		Capability:  "creative",
		Temperature: p.temperature,
		Messages: []llm.Message{
			{Role: "system", Content: daySystemPrompt},
			{Role: "user", Content: buildEditedDayPrompt(id, day, instruction)},
		},
		MaxTokens: 1500,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.DecodeObject[activitiesResponse](resp.Content)
	if err != nil || len(parsed.Activities) == 0 {
		if err != nil && !errors.Is(err, llm.ErrMalformedResponse) {
			return nil, err
		}
		p.logger.Debug("Day activities unparseable, using fallback", "day", day.Day)
		p.metrics.fallbacks.WithLabelValues("day").Inc()
		return fallbackActivities(id, day), nil
	}

	activities := make([]trip.Activity, 0, len(parsed.Activities))
	for _, a := range parsed.Activities {
		activities = append(activities, trip.Activity{
			TimeOfDay:   a.TimeOfDay,
			Title:       a.Title,
			Description: a.Description,
			Location:    trip.Place{Name: a.Location, City: day.City},
			Tip:         a.Tip,
		})
	}
	if len(activities) > 5 {
		activities = activities[:5]
	}
	return activities, nil
}
