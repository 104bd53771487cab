package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/trip"
)

type stubGenerator struct {
	content string
	err     error
}

func (s *stubGenerator) Complete(context.Context, llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

func fiveDaySkeleton() *trip.Skeleton {
	s := &trip.Skeleton{
		Identity: trip.VisualIdentity{Destination: "Rome", Duration: 5, Tone: "slow"},
	}
	for i := 1; i <= 5; i++ {
		s.Days = append(s.Days, trip.DaySkeleton{Day: i, Title: "Day", City: "Rome"})
	}
	return s
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantIntent Intent
		wantAction Action
		wantDay    int
	}{
		{
			name: "confident single day edit",
			content: `{"intent": "single_day_edit", "confidence": 0.9, "target_day": 2,
				"day_confidence": 0.85, "reasoning": "asks about day 2"}`,
			wantIntent: IntentSingleDayEdit,
			wantAction: ActionUpdateDay,
			wantDay:    2,
		},
		{
			name: "low confidence day edit needs confirmation",
			content: `{"intent": "single_day_edit", "confidence": 0.9, "target_day": 3,
				"day_confidence": 0.4}`,
			wantIntent: IntentSingleDayEdit,
			wantAction: ActionConfirmDay,
			wantDay:    3,
		},
		{
			name:       "full regeneration",
			content:    `{"intent": "full_regeneration", "confidence": 0.95, "new_destination": "Florence"}`,
			wantIntent: IntentFullRegeneration,
			wantAction: ActionRegenerate,
		},
		{
			name:       "question",
			content:    `{"intent": "question", "confidence": 0.8}`,
			wantIntent: IntentQuestion,
			wantAction: ActionChat,
		},
		{
			name:       "chit chat",
			content:    `{"intent": "chit_chat", "confidence": 0.7}`,
			wantIntent: IntentChitChat,
			wantAction: ActionChat,
		},
		{
			name:       "search",
			content:    `{"intent": "search", "confidence": 0.85, "query": "gelato near Trevi", "category": "food"}`,
			wantIntent: IntentSearch,
			wantAction: ActionSearch,
		},
		{
			name:       "unknown intent degrades to question",
			content:    `{"intent": "teleport", "confidence": 0.9}`,
			wantIntent: IntentQuestion,
			wantAction: ActionChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&stubGenerator{content: tt.content}, nil)
			got := c.Classify(context.Background(), "a week in Rome", fiveDaySkeleton(), "whatever")

			if got.Intent != tt.wantIntent {
				t.Errorf("Intent = %v, want %v", got.Intent, tt.wantIntent)
			}
			if got.Action != tt.wantAction {
				t.Errorf("Action = %v, want %v", got.Action, tt.wantAction)
			}
			if got.TargetDay != tt.wantDay {
				t.Errorf("TargetDay = %d, want %d", got.TargetDay, tt.wantDay)
			}
		})
	}
}

func TestClassify_FailuresFallBackToQuestion(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"transport error", &stubGenerator{err: errors.New("connection reset")}},
		{"unparseable", &stubGenerator{content: "hmm, hard to say"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.gen, nil)
			got := c.Classify(context.Background(), "a week in Rome", fiveDaySkeleton(), "regenerate everything please")

			if got.Intent != IntentQuestion {
				t.Errorf("Intent = %v, want question (the safest no-op)", got.Intent)
			}
			if got.TargetDay != 0 || got.Query != "" || got.NewDestination != "" {
				t.Errorf("fallback carried extracted parameters: %+v", got)
			}
		})
	}
}

func TestClassify_TargetDayOutOfRange(t *testing.T) {
	c := NewClassifier(&stubGenerator{content: `{"intent": "single_day_edit",
		"confidence": 0.9, "target_day": 9, "day_confidence": 0.95}`}, nil)
	got := c.Classify(context.Background(), "a week in Rome", fiveDaySkeleton(), "change day nine")

	if got.TargetDay != 0 {
		t.Errorf("TargetDay = %d, want 0 for a day outside the skeleton", got.TargetDay)
	}
	if got.Action != ActionConfirmDay {
		t.Errorf("Action = %v, want day confirmation", got.Action)
	}
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	c := NewClassifier(&stubGenerator{content: `{"intent": "single_day_edit",
		"confidence": 7, "target_day": 1, "day_confidence": -2}`}, nil)
	got := c.Classify(context.Background(), "x", fiveDaySkeleton(), "y")

	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", got.Confidence)
	}
	if got.DayConfidence != 0 {
		t.Errorf("DayConfidence = %v, want clamped to 0", got.DayConfidence)
	}
}

func TestAutoApply(t *testing.T) {
	tests := []struct {
		name string
		cl   Classification
		want bool
	}{
		{"at threshold", Classification{Intent: IntentSingleDayEdit, TargetDay: 2, DayConfidence: 0.7}, true},
		{"above threshold", Classification{Intent: IntentSingleDayEdit, TargetDay: 2, DayConfidence: 0.95}, true},
		{"below threshold", Classification{Intent: IntentSingleDayEdit, TargetDay: 2, DayConfidence: 0.69}, false},
		{"no target day", Classification{Intent: IntentSingleDayEdit, DayConfidence: 0.9}, false},
		{"wrong intent", Classification{Intent: IntentQuestion, TargetDay: 2, DayConfidence: 0.9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cl.AutoApply(); got != tt.want {
				t.Errorf("AutoApply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_NilGenerator(t *testing.T) {
	c := NewClassifier(nil, nil)
	got := c.Classify(context.Background(), "x", nil, "y")
	if got.Intent != IntentQuestion {
		t.Errorf("Intent = %v, want question", got.Intent)
	}
}
