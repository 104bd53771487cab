package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tripweave/tripweave/feedback"
	"github.com/tripweave/tripweave/images"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/pipeline"
	"github.com/tripweave/tripweave/scene"
	"github.com/tripweave/tripweave/trip"
	"github.com/tripweave/tripweave/version"
)

// stageGenerator answers per stage, sniffed from the system prompt.
// Responses may be swapped between calls; tests are single-threaded
// around mutation.
type stageGenerator struct {
	responses map[string]string
	errs      map[string]error
}

func (g *stageGenerator) stage(req llm.Request) string {
	var system string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = m.Content
		}
	}
	switch {
	case strings.Contains(system, "classify travel requests"):
		return "scene"
	case strings.Contains(system, "visual identity"):
		return "identity"
	case strings.Contains(system, "outline"):
		return "skeleton"
	case strings.Contains(system, "one day"):
		return "day"
	case strings.Contains(system, "route follow-up"):
		return "classify"
	case strings.Contains(system, "travel assistant"):
		return "answer"
	}
	return "other"
}

func (g *stageGenerator) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	stage := g.stage(req)
	if err, ok := g.errs[stage]; ok {
		return nil, err
	}
	content, ok := g.responses[stage]
	if !ok {
		return nil, errors.New("unexpected stage: " + stage)
	}
	return &llm.Response{Content: content}, nil
}

type stubPlaces struct{}

func (stubPlaces) LookupPlace(_ context.Context, name, cityHint string) (*trip.Place, error) {
	return &trip.Place{Name: name, City: cityHint, Lat: 35.68, Lng: 139.69}, nil
}

type stubImages struct{}

func (stubImages) FetchImages(_ context.Context, keyword string, count int, _ images.Orientation) []string {
	urls := make([]string, count)
	for i := range urls {
		urls[i] = "https://img.test/" + keyword + "/" + string(rune('a'+i))
	}
	return urls
}

const identityJSON = `{"destination": "Tokyo", "duration": 3, "tone": "playful",
	"palette": "sunset", "hero_style": "photo", "font": "modern"}`

const skeletonJSON = `{"summary": "Three days of eating through Tokyo.",
	"highlights": [
		{"icon": "🍣", "title": "Markets", "description": "Morning fish markets."},
		{"icon": "🍜", "title": "Ramen", "description": "Late-night bowls."},
		{"icon": "🍵", "title": "Tea", "description": "A quiet pause."}
	],
	"days": [
		{"day": 1, "title": "Markets", "theme": "street food", "city": "Tokyo", "image_keyword": "tokyo market"},
		{"day": 2, "title": "Ramen", "theme": "noodles", "city": "Tokyo", "image_keyword": "tokyo ramen"},
		{"day": 3, "title": "Sweets", "theme": "dessert", "city": "Tokyo", "image_keyword": "tokyo dessert"}
	]}`

const dayJSON = `{"activities": [
	{"time_of_day": "09:00", "title": "Tsukiji market", "description": "Graze the stalls.", "location": "Tsukiji Outer Market"},
	{"time_of_day": "13:00", "title": "Sushi lunch", "description": "Counter seats.", "location": "Uobei Shibuya"},
	{"time_of_day": "19:00", "title": "Yakitori alley", "description": "Skewers under the tracks.", "location": "Omoide Yokocho"}
]}`

const editedDayJSON = `{"activities": [
	{"time_of_day": "10:00", "title": "Vegan ramen", "description": "Plant-based bowls.", "location": "T's Tan Tan"},
	{"time_of_day": "15:00", "title": "Matcha break", "description": "Tea and sweets.", "location": "Nakamura Tokichi"}
]}`

const sceneJSON = `{"category": "foodie", "confidence": 0.9, "summary": "Food first.",
	"highlights": ["markets", "ramen", "tea"], "keywords": ["food"]}`

func fullResponses() map[string]string {
	return map[string]string{
		"scene":    sceneJSON,
		"identity": identityJSON,
		"skeleton": skeletonJSON,
		"day":      dayJSON,
		"answer":   "Yes, Tsukiji opens early.",
	}
}

func newTestSession(gen *stageGenerator) *Session {
	classifier := scene.NewClassifier(gen)
	pipe := pipeline.New(gen, classifier, stubPlaces{}, stubImages{},
		pipeline.WithDayConcurrency(2), pipeline.WithImagesPerDay(1))
	return New(pipe, feedback.NewClassifier(gen, nil), gen, nil)
}

func drain(t *testing.T, stream <-chan pipeline.Message) []pipeline.Message {
	t.Helper()
	var msgs []pipeline.Message
	for msg := range stream {
		msgs = append(msgs, msg)
	}
	return msgs
}

func generate(t *testing.T, s *Session) {
	t.Helper()
	stream, err := s.Generate(context.Background(), trip.Request{Prompt: "3 days of food in Tokyo"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	msgs := drain(t, stream)
	if last := msgs[len(msgs)-1]; last.Kind != pipeline.KindDone {
		t.Fatalf("terminal message = %v, want done", last.Kind)
	}
}

func TestGenerate_CommitsInitialSnapshot(t *testing.T) {
	s := newTestSession(&stageGenerator{responses: fullResponses()})
	generate(t, s)

	sk := s.Skeleton()
	if sk == nil || len(sk.Days) != 3 {
		t.Fatalf("Skeleton() = %+v, want 3 days", sk)
	}
	days := s.Days()
	if len(days) != 3 {
		t.Fatalf("Days() = %d results, want 3", len(days))
	}
	for i, d := range days {
		if d.Day != i+1 {
			t.Errorf("Days()[%d].Day = %d, want ascending", i, d.Day)
		}
	}

	versions := s.Versions()
	if len(versions) != 1 {
		t.Fatalf("Versions() = %d, want 1", len(versions))
	}
	v := versions[0]
	if v.Version != 1 || len(v.Changes) != 1 || v.Changes[0].Scope != version.ScopeGlobal {
		t.Errorf("initial snapshot = %+v", v)
	}
}

func TestGenerate_FailureLeavesNoState(t *testing.T) {
	gen := &stageGenerator{
		responses: fullResponses(),
		errs:      map[string]error{"identity": errors.New("connection refused")},
	}
	s := newTestSession(gen)

	stream, err := s.Generate(context.Background(), trip.Request{Prompt: "3 days in Tokyo"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	msgs := drain(t, stream)
	if last := msgs[len(msgs)-1]; last.Kind != pipeline.KindError {
		t.Fatalf("terminal message = %v, want error", last.Kind)
	}

	if s.Skeleton() != nil {
		t.Error("failed generation left a skeleton behind")
	}
	if len(s.Versions()) != 0 {
		t.Error("failed generation committed a snapshot")
	}
}

func TestGenerate_BusyRejected(t *testing.T) {
	s := newTestSession(&stageGenerator{responses: fullResponses()})
	if err := s.acquire(); err != nil {
		t.Fatal(err)
	}
	defer s.release()

	if _, err := s.Generate(context.Background(), trip.Request{Prompt: "x"}); !errors.Is(err, ErrBusy) {
		t.Errorf("Generate while busy = %v, want ErrBusy", err)
	}
}

func TestEditDay_SplicesOneDay(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)
	before := s.Days()

	gen.responses["day"] = editedDayJSON
	result, err := s.EditDay(context.Background(), 2, "make day 2 vegetarian")
	if err != nil {
		t.Fatalf("EditDay: %v", err)
	}
	if result.Day != 2 {
		t.Errorf("result.Day = %d, want 2", result.Day)
	}
	if len(result.Activities) != 2 || result.Activities[0].Title != "Vegan ramen" {
		t.Errorf("edited activities = %+v", result.Activities)
	}

	after := s.Days()
	for _, n := range []int{1, 3} {
		if after[n-1].Markup != before[n-1].Markup {
			t.Errorf("day %d changed during a day 2 edit", n)
		}
	}
	if after[1].Markup == before[1].Markup {
		t.Error("day 2 markup unchanged after edit")
	}

	versions := s.Versions()
	if len(versions) != 2 {
		t.Fatalf("Versions() = %d, want initial plus one edit", len(versions))
	}
	edit := versions[1]
	if len(edit.Changes) != 1 || edit.Changes[0].Scope != version.ScopeLocal || edit.Changes[0].Day != 2 {
		t.Errorf("edit snapshot changes = %+v", edit.Changes)
	}
}

func TestEditDay_NoItinerary(t *testing.T) {
	s := newTestSession(&stageGenerator{responses: fullResponses()})
	if _, err := s.EditDay(context.Background(), 1, "earlier start"); !errors.Is(err, ErrNoItinerary) {
		t.Errorf("EditDay = %v, want ErrNoItinerary", err)
	}
}

func TestEditDay_UnknownDay(t *testing.T) {
	s := newTestSession(&stageGenerator{responses: fullResponses()})
	generate(t, s)
	if _, err := s.EditDay(context.Background(), 9, "earlier start"); err == nil {
		t.Error("editing a day outside the itinerary succeeded")
	}
}

func TestFollowUp_AutoAppliedDayEdit(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	gen.responses["classify"] = `{"intent": "single_day_edit", "confidence": 0.9,
		"target_day": 2, "day_confidence": 0.9}`
	gen.responses["day"] = editedDayJSON

	res, err := s.FollowUp(context.Background(), "make day 2 vegetarian")
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if res.Day == nil || res.Day.Day != 2 {
		t.Fatalf("res.Day = %+v, want the edited day 2", res.Day)
	}
	if res.Stream != nil || res.Answer != "" {
		t.Errorf("day edit carried extra outputs: %+v", res)
	}
}

func TestFollowUp_LowConfidenceEditNotApplied(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	gen.responses["classify"] = `{"intent": "single_day_edit", "confidence": 0.9,
		"target_day": 2, "day_confidence": 0.3}`

	res, err := s.FollowUp(context.Background(), "maybe change something")
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if res.Day != nil {
		t.Error("low-confidence edit was applied without confirmation")
	}
	if res.Classification.Action != feedback.ActionConfirmDay {
		t.Errorf("Action = %v, want day confirmation", res.Classification.Action)
	}
	if len(s.Versions()) != 1 {
		t.Error("unapplied edit committed a snapshot")
	}
}

func TestFollowUp_Regeneration(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	gen.responses["classify"] = `{"intent": "full_regeneration", "confidence": 0.95,
		"new_destination": "Osaka"}`

	res, err := s.FollowUp(context.Background(), "actually let's do Osaka instead")
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if res.Stream == nil {
		t.Fatal("regeneration returned no stream")
	}
	drain(t, res.Stream)

	if len(s.Versions()) != 2 {
		t.Errorf("Versions() = %d after regeneration, want 2", len(s.Versions()))
	}
}

func TestFollowUp_Question(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	gen.responses["classify"] = `{"intent": "question", "confidence": 0.8}`

	res, err := s.FollowUp(context.Background(), "what time does the market open?")
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if res.Answer != "Yes, Tsukiji opens early." {
		t.Errorf("Answer = %q", res.Answer)
	}
	if res.Stream != nil || res.Day != nil {
		t.Errorf("question carried extra outputs: %+v", res)
	}
}

func TestFollowUp_Search(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	gen.responses["classify"] = `{"intent": "search", "confidence": 0.9,
		"query": "best ramen shibuya", "category": "food"}`

	res, err := s.FollowUp(context.Background(), "find ramen near Shibuya")
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if res.Classification.Query != "best ramen shibuya" {
		t.Errorf("Query = %q", res.Classification.Query)
	}
	if res.Stream != nil || res.Day != nil || res.Answer != "" {
		t.Errorf("search carried extra outputs: %+v", res)
	}
	if res.Search == nil {
		t.Fatal("search returned no result")
	}
	if res.Search.Query != "best ramen shibuya" {
		t.Errorf("Search.Query = %q, want the extracted query", res.Search.Query)
	}
	if res.Search.Place == nil || res.Search.Place.City != "Tokyo" {
		t.Errorf("Search.Place = %+v, want a lookup scoped to the destination", res.Search.Place)
	}
	if len(res.Search.Images) == 0 {
		t.Error("search returned no images")
	}
}

func TestRestore(t *testing.T) {
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	gen.responses["day"] = editedDayJSON
	if _, err := s.EditDay(context.Background(), 1, "swap breakfast"); err != nil {
		t.Fatalf("EditDay: %v", err)
	}

	snap, err := s.Restore(1)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if snap.Version != 3 {
		t.Errorf("restored snapshot version = %d, want 3", snap.Version)
	}
	if len(s.Days()) != 0 {
		t.Error("restore kept stale day results")
	}
	if sk := s.Skeleton(); sk == nil || sk.Identity.Destination != "Tokyo" {
		t.Errorf("restored skeleton = %+v", sk)
	}
	if len(s.Versions()) != 3 {
		t.Errorf("Versions() = %d, want history preserved plus rollback", len(s.Versions()))
	}
}

func TestEditDay_AfterRestoreKeepsResult(t *testing.T) {
	// Restore clears day results; a subsequent edit must still land in
	// Days() instead of vanishing.
	gen := &stageGenerator{responses: fullResponses()}
	s := newTestSession(gen)
	generate(t, s)

	if _, err := s.Restore(1); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(s.Days()) != 0 {
		t.Fatal("restore kept stale day results")
	}

	gen.responses["day"] = editedDayJSON
	result, err := s.EditDay(context.Background(), 2, "make day 2 vegetarian")
	if err != nil {
		t.Fatalf("EditDay: %v", err)
	}
	if result.Day != 2 {
		t.Errorf("result.Day = %d, want 2", result.Day)
	}

	days := s.Days()
	if len(days) != 1 {
		t.Fatalf("Days() = %d results, want the edited day", len(days))
	}
	if days[0].Day != 2 || days[0].Activities[0].Title != "Vegan ramen" {
		t.Errorf("Days()[0] = %+v, want the regenerated day 2", days[0])
	}
}

func TestRestore_MissingVersion(t *testing.T) {
	s := newTestSession(&stageGenerator{responses: fullResponses()})
	if _, err := s.Restore(1); err == nil {
		t.Error("restoring from an empty ledger succeeded")
	}
}
