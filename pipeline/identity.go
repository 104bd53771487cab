package pipeline

import (
	"context"
	"fmt"

	"github.com/tripweave/tripweave/images"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/trip"
)

// identityResponse is the JSON shape requested from the model.
type identityResponse struct {
	Destination string `json:"destination"`
	Duration    int    `json:"duration"`
	Tone        string `json:"tone"`
	Palette     string `json:"palette"`
	HeroStyle   string `json:"hero_style"`
	Font        string `json:"font"`
}

// GenerateIdentity runs the visual identity stage. This stage has no safe
// default (the destination is unknowable without the model), so parse or
// transport failure aborts the run with ErrGenerationFailed. A missing
// hero image is tolerated.
func (p *Pipeline) GenerateIdentity(ctx context.Context, req trip.Request, analysis trip.SceneAnalysis, insightText string) (trip.VisualIdentity, error) {
	resp, err := p.generator.Complete(ctx, llm.Request{
		Capability:  "creative",
		Temperature: p.temperature,
		Messages: []llm.Message{
			{Role: "system", Content: identitySystemPrompt},
			{Role: "user", Content: buildIdentityPrompt(req, analysis, insightText)},
		},
		MaxTokens: 800,
	})
	if err != nil {
		return trip.VisualIdentity{}, newGenerationFailed("identity", err)
	}

	parsed, err := llm.DecodeObject[identityResponse](resp.Content)
	if err != nil {
		return trip.VisualIdentity{}, newGenerationFailed("identity", err)
	}
	if parsed.Destination == "" {
		return trip.VisualIdentity{}, newGenerationFailed("identity", fmt.Errorf("no destination in response"))
	}
	if parsed.Duration < 1 {
		parsed.Duration = 3
	}

	palette := trip.Palette(parsed.Palette)
	if !palette.IsValid() {
		palette = analysis.Category.DefaultPalette()
	}

	id := trip.VisualIdentity{
		Destination: parsed.Destination,
		Duration:    parsed.Duration,
		Tone:        parsed.Tone,
		Palette:     palette,
		HeroStyle:   parsed.HeroStyle,
		Font:        trip.LookupFont(parsed.Font),
		Scene:       analysis.Category,
	}

	if urls := p.images.FetchImages(ctx, id.Destination+" landscape", 1, images.Landscape); len(urls) > 0 {
		id.HeroImage = urls[0]
	}

	return id, nil
}
