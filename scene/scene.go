// Package scene classifies a travel request into a scene category. Two
// tiers: an instant keyword match that never touches the network, and an
// optional model-backed confirmation that refines the guess into a full
// SceneAnalysis. Confirmation failures always degrade to a deterministic
// per-category fallback.
package scene

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/trip"
)

// TextGenerator is the slice of the llm client the classifier needs.
type TextGenerator interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Classifier performs two-tier scene classification.
type Classifier struct {
	generator TextGenerator
	logger    *slog.Logger

	// cache holds confirmed analyses keyed by exact input text plus any
	// insight text. Process-lifetime, no eviction: inputs are effectively
	// unique per run.
	mu    sync.RWMutex
	cache map[string]trip.SceneAnalysis
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a classifier. generator may be nil, in which case
// only the instant tier runs and Classify always returns the fallback
// analysis for the matched category.
func NewClassifier(generator TextGenerator, opts ...Option) *Classifier {
	c := &Classifier{
		generator: generator,
		logger:    slog.Default(),
		cache:     make(map[string]trip.SceneAnalysis),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyInstant is the keyword tier: a pure, synchronous function of
// the input string. First category with at least one keyword hit wins,
// in the fixed category order; no hit yields the default category.
func ClassifyInstant(input string) trip.SceneCategory {
	lowered := strings.ToLower(input)
	for _, category := range trip.AllScenes {
		for _, kw := range category.Keywords() {
			if strings.Contains(lowered, kw) {
				return category
			}
		}
	}
	return trip.DefaultScene
}

// Classify runs both tiers: the instant keyword guess, then model
// confirmation when a generator is configured. Any confirmation failure
// (no generator, transport, parse) returns the instant category's
// deterministic fallback analysis.
func (c *Classifier) Classify(ctx context.Context, input, insightText string) trip.SceneAnalysis {
	guess := ClassifyInstant(input)

	if c.generator == nil {
		return guess.FallbackAnalysis()
	}

	cacheKey := input + "\x00" + insightText
	c.mu.RLock()
	cached, ok := c.cache[cacheKey]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	analysis, err := c.confirm(ctx, input, insightText, guess)
	if err != nil {
		c.logger.Debug("Scene confirmation failed, using fallback",
			"category", guess, "error", err)
		return guess.FallbackAnalysis()
	}

	c.mu.Lock()
	c.cache[cacheKey] = analysis
	c.mu.Unlock()
	return analysis
}

// sceneResponse is the JSON shape requested from the model.
type sceneResponse struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Keywords   []string `json:"keywords"`
}

func (c *Classifier) confirm(ctx context.Context, input, insightText string, guess trip.SceneCategory) (trip.SceneAnalysis, error) {
	resp, err := c.generator.Complete(ctx, llm.Request{
		Capability: "analysis",
		Messages: []llm.Message{
			{Role: "system", Content: confirmSystemPrompt},
			{Role: "user", Content: buildConfirmPrompt(input, insightText, guess)},
		},
		MaxTokens: 600,
	})
	if err != nil {
		return trip.SceneAnalysis{}, fmt.Errorf("scene confirmation: %w", err)
	}

	parsed, err := llm.DecodeObject[sceneResponse](resp.Content)
	if err != nil {
		return trip.SceneAnalysis{}, err
	}

	analysis := trip.SceneAnalysis{
		Category:   trip.ParseScene(parsed.Category),
		Confidence: clamp01(parsed.Confidence),
		Summary:    parsed.Summary,
		Highlights: clampList(parsed.Highlights, 3, 5),
		Keywords:   parsed.Keywords,
	}
	if analysis.Summary == "" {
		analysis.Summary = analysis.Category.FallbackSummary()
	}
	if analysis.Highlights == nil {
		analysis.Highlights = analysis.Category.FallbackHighlights()
	}
	return analysis, nil
}

const confirmSystemPrompt = `You classify travel requests into scene categories. ` +
	`Respond with a single JSON object: {"category", "confidence", "summary", "highlights", "keywords"}. ` +
	`category must be one of: romantic, family, adventure, foodie, culture, nature, urban, relaxation. ` +
	`confidence is 0..1, summary is one line, highlights is 3-5 short strings.`

func buildConfirmPrompt(input, insightText string, guess trip.SceneCategory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Travel request: %s\n", input)
	if insightText != "" {
		fmt.Fprintf(&b, "Context from the traveler's references:\n%s\n", insightText)
	}
	fmt.Fprintf(&b, "Keyword-based guess: %s\nConfirm or correct the category.", guess)
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampList trims a list to at most max entries; a list shorter than min
// is returned as nil so callers substitute the fallback set.
func clampList(items []string, min, max int) []string {
	if len(items) < min {
		return nil
	}
	if len(items) > max {
		return items[:max]
	}
	return items
}
