// Package render produces the styled HTML document for an itinerary.
// Rendering is always from structured data: single-day edits re-render
// the whole document from the DayResult list rather than patching
// previously rendered markup.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/tripweave/tripweave/trip"
)

var dayTmpl = template.Must(template.New("day").Parse(`<section class="day" id="day-{{.Day}}">
<header class="day-header">
<h2>Day {{.Day}} · {{.Title}}</h2>
<p class="day-theme">{{.Theme}}{{if .City}} — {{.City}}{{end}}</p>
</header>
{{if .Images}}<div class="day-images">
{{range .Images}}<img src="{{.}}" alt="{{$.Title}}" loading="lazy">
{{end}}</div>
{{end}}<ol class="activities">
{{range .Activities}}<li class="activity">
<span class="activity-time">{{.TimeOfDay}}</span>
<h3>{{.Title}}</h3>
<p>{{.Description}}</p>
{{if .MapURL}}<a class="activity-map" href="{{.MapURL}}">{{.Location}}</a>
{{else if .Location}}<span class="activity-location">{{.Location}}</span>
{{end}}{{if .Tip}}<p class="activity-tip">{{.Tip}}</p>
{{end}}</li>
{{end}}</ol>
</section>
`))

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Destination}} · {{.Duration}} days</title>
<style>
:root { --primary: {{.Primary}}; --accent: {{.Accent}}; --background: {{.Background}}; }
body { font-family: "{{.BodyFont}}", sans-serif; background: var(--background); margin: 0; }
h1, h2, h3 { font-family: "{{.HeadingFont}}", serif; color: var(--primary); }
.hero { position: relative; text-align: center; padding: 4rem 1rem; }
.hero img { width: 100%; max-height: 420px; object-fit: cover; }
.highlights { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1rem; padding: 1rem; }
.day { padding: 1.5rem; border-left: 4px solid var(--accent); margin: 1rem; background: #fff; }
.day-images img { max-width: 32%; border-radius: 8px; }
.activity-time { color: var(--accent); font-weight: 600; }
.activity-tip { font-style: italic; }
</style>
</head>
<body>
<header class="hero">
{{if .HeroImage}}<img src="{{.HeroImage}}" alt="{{.Destination}}">
{{end}}<h1>{{.Destination}}</h1>
<p class="tone">{{.Tone}} · {{.Duration}} days</p>
{{if .Summary}}<p class="summary">{{.Summary}}</p>
{{end}}</header>
{{if .Highlights}}<section class="highlights">
{{range .Highlights}}<article class="highlight">
<span class="highlight-icon">{{.Icon}}</span>
<h3>{{.Title}}</h3>
<p>{{.Description}}</p>
</article>
{{end}}</section>
{{end}}<main>
{{range .Days}}{{.}}{{end}}
</main>
</body>
</html>
`))

// dayView is the template model for one day section.
type dayView struct {
	Day        int
	Title      string
	Theme      string
	City       string
	Images     []string
	Activities []activityView
}

type activityView struct {
	TimeOfDay   string
	Title       string
	Description string
	Location    string
	MapURL      string
	Tip         string
}

// Day renders the detail markup for one generated day. Optional elements
// (images, map links, tips) are omitted when their data is absent.
func Day(skeleton trip.DaySkeleton, activities []trip.Activity, images []string) (string, error) {
	view := dayView{
		Day:    skeleton.Day,
		Title:  skeleton.Title,
		Theme:  skeleton.Theme,
		City:   skeleton.City,
		Images: images,
	}
	for _, a := range activities {
		av := activityView{
			TimeOfDay:   a.TimeOfDay,
			Title:       a.Title,
			Description: a.Description,
			Location:    a.Location.Name,
			Tip:         a.Tip,
		}
		if a.Location.Resolved() {
			av.MapURL = fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f", a.Location.Lat, a.Location.Lng)
		}
		view.Activities = append(view.Activities, av)
	}

	var b strings.Builder
	if err := dayTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render day %d: %w", skeleton.Day, err)
	}
	return b.String(), nil
}

// PlaceholderDay renders the minimal non-empty section substituted for a
// failed day worker.
func PlaceholderDay(day int) string {
	return fmt.Sprintf(`<section class="day day-pending" id="day-%d">
<header class="day-header"><h2>Day %d</h2></header>
<p class="day-pending-note">This day could not be generated. Ask for it again to fill it in.</p>
</section>
`, day, day)
}

// documentView is the template model for the whole document.
type documentView struct {
	Destination string
	Duration    int
	Tone        string
	Summary     string
	HeroImage   string
	HeadingFont string
	BodyFont    string
	Primary     string
	Accent      string
	Background  string
	Highlights  []trip.Highlight
	Days        []template.HTML
}

// Document renders the full itinerary document from the skeleton and the
// per-day markup, in day order.
func Document(s *trip.Skeleton, dayMarkup []string) (string, error) {
	primary, accent, background := s.Identity.Palette.Colors()
	view := documentView{
		Destination: s.Identity.Destination,
		Duration:    s.Identity.Duration,
		Tone:        s.Identity.Tone,
		Summary:     s.Summary,
		HeroImage:   s.Identity.HeroImage,
		HeadingFont: s.Identity.Font.Heading,
		BodyFont:    s.Identity.Font.Body,
		Primary:     primary,
		Accent:      accent,
		Background:  background,
		Highlights:  s.Highlights,
	}
	for _, m := range dayMarkup {
		// Day fragments are rendered by this package; trusted HTML.
		view.Days = append(view.Days, template.HTML(m))
	}

	var b strings.Builder
	if err := documentTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return b.String(), nil
}
