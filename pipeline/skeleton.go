package pipeline

import (
	"context"

	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/trip"
)

// skeletonResponse is the JSON shape requested from the model.
type skeletonResponse struct {
	Summary    string `json:"summary"`
	Highlights []struct {
		Icon        string `json:"icon"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"highlights"`
	Days []struct {
		Day          int    `json:"day"`
		Title        string `json:"title"`
		Theme        string `json:"theme"`
		City         string `json:"city"`
		ImageKeyword string `json:"image_keyword"`
	} `json:"days"`
}

// GenerateSkeleton runs the itinerary outline stage. A wrong day count is
// repaired (truncate extras, synthesize placeholders) because losing the
// run over a count mismatch is worse than a placeholder day. Only a fully
// unparseable response aborts with ErrGenerationFailed.
func (p *Pipeline) GenerateSkeleton(ctx context.Context, id trip.VisualIdentity, analysis trip.SceneAnalysis, req trip.Request, insightText string) (*trip.Skeleton, error) {
	resp, err := p.generator.Complete(ctx, llm.Request{
		Capability:  "creative",
		Temperature: p.temperature,
		Messages: []llm.Message{
			{Role: "system", Content: skeletonSystemPrompt},
			{Role: "user", Content: buildSkeletonPrompt(id, analysis, req, insightText)},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return nil, newGenerationFailed("skeleton", err)
	}

	parsed, err := llm.DecodeObject[skeletonResponse](resp.Content)
	if err != nil {
		return nil, newGenerationFailed("skeleton", err)
	}

	s := &trip.Skeleton{
		Identity: id,
		Summary:  parsed.Summary,
	}
	for _, h := range parsed.Highlights {
		s.Highlights = append(s.Highlights, trip.Highlight{
			Icon:        h.Icon,
			Title:       h.Title,
			Description: h.Description,
		})
	}
	if len(s.Highlights) > 5 {
		s.Highlights = s.Highlights[:5]
	}
	for _, d := range parsed.Days {
		s.Days = append(s.Days, trip.DaySkeleton{
			Day:          d.Day,
			Title:        d.Title,
			Theme:        d.Theme,
			City:         d.City,
			ImageKeyword: d.ImageKeyword,
		})
	}

	mismatched := len(s.Days) != id.Duration
	s.Normalize()
	if mismatched {
		p.logger.Warn("Skeleton day count repaired",
			"expected", id.Duration,
			"destination", id.Destination)
		p.metrics.repairs.Inc()
	}

	return s, nil
}
