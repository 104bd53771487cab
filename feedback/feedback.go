// Package feedback classifies free-text follow-ups against an existing
// itinerary: regenerate everything, edit one day, answer a question,
// chat, or search.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/trip"
)

// Intent is the classified purpose of a follow-up message.
type Intent string

const (
	IntentFullRegeneration Intent = "full_regeneration"
	IntentSingleDayEdit    Intent = "single_day_edit"
	IntentQuestion         Intent = "question"
	IntentChitChat         Intent = "chit_chat"
	IntentSearch           Intent = "search"
)

// Action is the UI hint paired with each intent: what surface the caller
// should show while acting on the classification.
type Action string

const (
	ActionRegenerate Action = "show_regeneration"
	ActionUpdateDay  Action = "update_day"
	ActionConfirmDay Action = "confirm_day"
	ActionChat       Action = "show_chat"
	ActionSearch     Action = "show_search"
)

// AutoApplyThreshold is the day-confidence at or above which a
// single-day edit proceeds without interactive day selection.
const AutoApplyThreshold = 0.7

// Classification is the classifier's verdict on one follow-up. Consumed
// immediately by the router and discarded, never persisted.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`

	// TargetDay and DayConfidence are set for single-day edits.
	TargetDay     int     `json:"target_day,omitempty"`
	DayConfidence float64 `json:"day_confidence,omitempty"`

	// Query and Category are set for search intents.
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`

	// NewDestination and NewDuration are set when a full regeneration
	// carries changed trip parameters.
	NewDestination string `json:"new_destination,omitempty"`
	NewDuration    int    `json:"new_duration,omitempty"`
}

// AutoApply reports whether a single-day edit may proceed without
// interactive day confirmation.
func (c Classification) AutoApply() bool {
	return c.Intent == IntentSingleDayEdit &&
		c.TargetDay > 0 &&
		c.DayConfidence >= AutoApplyThreshold
}

// TextGenerator is the slice of the llm client the classifier needs.
type TextGenerator interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Classifier routes follow-up messages.
type Classifier struct {
	generator TextGenerator
	logger    *slog.Logger
}

func NewClassifier(generator TextGenerator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{generator: generator, logger: logger}
}

const classifySystemPrompt = `You route follow-up messages about an existing travel itinerary. ` +
	`Respond with a single JSON object: {"intent", "confidence", "reasoning", "target_day", ` +
	`"day_confidence", "query", "category", "new_destination", "new_duration"}. ` +
	`intent is one of "full_regeneration", "single_day_edit", "question", "chit_chat", "search". ` +
	`confidence and day_confidence are 0.0-1.0. ` +
	`Set target_day and day_confidence only for single_day_edit, query and category only for search, ` +
	`new_destination and new_duration only when a full_regeneration changes them. Omit fields that do not apply.`

func buildClassifyPrompt(originalPrompt string, skeleton *trip.Skeleton, followUp string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original request: %s\n\n", originalPrompt)
	if skeleton != nil {
		fmt.Fprintf(&b, "Current itinerary:\n%s\n\n", skeleton.CompactSummary())
	}
	fmt.Fprintf(&b, "Follow-up message: %s\n\nClassify the follow-up as JSON.", followUp)
	return b.String()
}

// Classify runs the follow-up through the analysis model. Any failure,
// transport or parse, degrades to a question classification with no
// extracted parameters; a wrongly destructive regeneration is worse
// than an unnecessary chat answer.
func (c *Classifier) Classify(ctx context.Context, originalPrompt string, skeleton *trip.Skeleton, followUp string) Classification {
	fallback := Classification{Intent: IntentQuestion, Action: ActionChat}
	if c.generator == nil {
		return fallback
	}

	resp, err := c.generator.Complete(ctx, llm.Request{
		Capability: "analysis",
		Messages: []llm.Message{
			{Role: "system", Content: classifySystemPrompt},
			{Role: "user", Content: buildClassifyPrompt(originalPrompt, skeleton, followUp)},
		},
		MaxTokens: 500,
	})
	if err != nil {
		c.logger.Warn("Follow-up classification failed, treating as question", "error", err)
		return fallback
	}

	parsed, err := llm.DecodeObject[Classification](resp.Content)
	if err != nil {
		c.logger.Warn("Follow-up classification unparseable, treating as question", "error", err)
		return fallback
	}

	return normalize(parsed, skeleton)
}

// normalize clamps model output into a routable classification.
func normalize(cl Classification, skeleton *trip.Skeleton) Classification {
	switch cl.Intent {
	case IntentFullRegeneration, IntentSingleDayEdit, IntentQuestion, IntentChitChat, IntentSearch:
	default:
		cl.Intent = IntentQuestion
	}
	cl.Confidence = clamp01(cl.Confidence)
	cl.DayConfidence = clamp01(cl.DayConfidence)

	if cl.Intent == IntentSingleDayEdit {
		days := 0
		if skeleton != nil {
			days = len(skeleton.Days)
		}
		if cl.TargetDay < 1 || cl.TargetDay > days {
			cl.TargetDay = 0
			cl.DayConfidence = 0
		}
	} else {
		cl.TargetDay = 0
		cl.DayConfidence = 0
	}

	cl.Action = actionFor(cl)
	return cl
}

func actionFor(cl Classification) Action {
	switch cl.Intent {
	case IntentFullRegeneration:
		return ActionRegenerate
	case IntentSingleDayEdit:
		if cl.AutoApply() {
			return ActionUpdateDay
		}
		return ActionConfirmDay
	case IntentSearch:
		return ActionSearch
	case IntentChitChat, IntentQuestion:
		return ActionChat
	}
	return ActionChat
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
