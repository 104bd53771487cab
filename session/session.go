// Package session owns the mutable state of one itinerary conversation:
// the current skeleton, its day results, and the version ledger. A
// session is single-writer; conflicting operations are rejected while a
// generation or edit is in flight rather than queued.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tripweave/tripweave/feedback"
	"github.com/tripweave/tripweave/llm"
	"github.com/tripweave/tripweave/pipeline"
	"github.com/tripweave/tripweave/trip"
	"github.com/tripweave/tripweave/version"
)

// ErrBusy is returned when a generation or edit is already in flight.
var ErrBusy = errors.New("session busy: a generation is already in flight")

// ErrNoItinerary is returned for operations that need a generated
// itinerary before one exists.
var ErrNoItinerary = errors.New("no itinerary generated yet")

// TextGenerator is the slice of the llm client used for direct answers.
type TextGenerator interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Session is one conversation's state. All exported methods are safe
// for concurrent use; writes are serialized by a busy flag.
type Session struct {
	ID string

	pipe       *pipeline.Pipeline
	classifier *feedback.Classifier
	generator  TextGenerator
	logger     *slog.Logger

	mu       sync.Mutex
	busy     bool
	gen      uint64 // bumped on every skeleton replacement
	request  trip.Request
	skeleton *trip.Skeleton
	days     []trip.DayResult
	ledger   *version.Ledger
}

func New(pipe *pipeline.Pipeline, classifier *feedback.Classifier, generator TextGenerator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:         uuid.New().String(),
		pipe:       pipe,
		classifier: classifier,
		generator:  generator,
		logger:     logger,
		ledger:     version.NewLedger(),
	}
}

// acquire claims the session for a writing operation.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Generate runs the full pipeline for req and streams progress. On
// success the session's skeleton and days are replaced and one snapshot
// is committed. The returned channel closes after the terminal message.
func (s *Session) Generate(ctx context.Context, req trip.Request) (<-chan pipeline.Message, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}

	stream, outcome := s.pipe.Run(ctx, req)

	out := make(chan pipeline.Message, 16)
	go func() {
		defer close(out)
		defer s.release()
		for msg := range stream {
			out <- msg
		}
		if outcome.Err != nil {
			return
		}

		s.mu.Lock()
		s.request = req
		s.skeleton = outcome.Skeleton
		s.days = outcome.Days
		s.gen++
		s.ledger.Commit(outcome.Skeleton, []version.Change{{
			Scope:       version.ScopeGlobal,
			Description: "Initial itinerary",
		}}, "traveler", outcome.Skeleton.Identity.Destination)
		s.mu.Unlock()
	}()
	return out, nil
}

// FollowUpResult is the routed outcome of one follow-up message.
// Exactly one of Stream, Day, Answer, or Search is set, except for
// unapplied day edits where only the Classification carries the result.
type FollowUpResult struct {
	Classification feedback.Classification

	// Stream is set for full regenerations.
	Stream <-chan pipeline.Message

	// Day is set when a single-day edit was applied.
	Day *trip.DayResult

	// Answer is set for questions and chit-chat.
	Answer string

	// Search is set for search requests.
	Search *pipeline.SearchResult
}

// FollowUp classifies message against the current itinerary and routes
// it. Low-confidence day edits are returned unapplied for the caller to
// confirm via EditDay.
func (s *Session) FollowUp(ctx context.Context, message string) (FollowUpResult, error) {
	s.mu.Lock()
	skeleton := s.skeleton
	prompt := s.request.Prompt
	s.mu.Unlock()

	cl := s.classifier.Classify(ctx, prompt, skeleton, message)
	res := FollowUpResult{Classification: cl}

	switch cl.Intent {
	case feedback.IntentFullRegeneration:
		req := s.regenerationRequest(message, cl)
		stream, err := s.Generate(ctx, req)
		if err != nil {
			return res, err
		}
		res.Stream = stream

	case feedback.IntentSingleDayEdit:
		if !cl.AutoApply() {
			// Caller confirms the day interactively, then calls EditDay.
			return res, nil
		}
		day, err := s.EditDay(ctx, cl.TargetDay, message)
		if err != nil {
			return res, err
		}
		res.Day = day

	case feedback.IntentQuestion, feedback.IntentChitChat:
		res.Answer = s.answer(ctx, skeleton, message)

	case feedback.IntentSearch:
		query := cl.Query
		if query == "" {
			query = message
		}
		var cityHint string
		if skeleton != nil {
			cityHint = skeleton.Identity.Destination
		}
		sr := s.pipe.Search(ctx, query, cityHint, 0)
		res.Search = &sr
	}
	return res, nil
}

// regenerationRequest folds extracted parameter changes into a fresh
// request derived from the original prompt.
func (s *Session) regenerationRequest(message string, cl feedback.Classification) trip.Request {
	s.mu.Lock()
	req := s.request
	s.mu.Unlock()

	req.Prompt = fmt.Sprintf("%s\n\nRevised request: %s", req.Prompt, message)
	if cl.NewDestination != "" {
		req.Prompt += "\nNew destination: " + cl.NewDestination
	}
	if cl.NewDuration > 0 {
		req.Prompt += fmt.Sprintf("\nNew duration: %d days", cl.NewDuration)
	}
	return req
}

// EditDay regenerates one day with the traveler's instruction and
// splices the result into the current itinerary, committing exactly one
// snapshot. A regeneration that replaced the whole skeleton while the
// edit was running discards the stale result.
func (s *Session) EditDay(ctx context.Context, dayNum int, instruction string) (*trip.DayResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	s.mu.Lock()
	if s.skeleton == nil {
		s.mu.Unlock()
		return nil, ErrNoItinerary
	}
	daySkel := s.skeleton.Day(dayNum)
	identity := s.skeleton.Identity
	gen := s.gen
	s.mu.Unlock()

	if daySkel == nil {
		return nil, fmt.Errorf("day %d not in itinerary", dayNum)
	}

	result, err := s.pipe.GenerateDay(ctx, identity, *daySkel, instruction)
	if err != nil {
		return nil, fmt.Errorf("regenerating day %d: %w", dayNum, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil, fmt.Errorf("itinerary changed while editing day %d", dayNum)
	}
	replaced := false
	for i := range s.days {
		if s.days[i].Day == dayNum {
			s.days[i] = result
			replaced = true
			break
		}
	}
	if !replaced {
		// After a restore the day results are cleared until the next
		// full generation, so the edit lands in an empty slice.
		s.days = append(s.days, result)
		sort.Slice(s.days, func(i, j int) bool { return s.days[i].Day < s.days[j].Day })
	}
	s.ledger.Commit(s.skeleton, []version.Change{{
		Scope:       version.ScopeLocal,
		Day:         dayNum,
		Description: instruction,
	}}, "traveler", fmt.Sprintf("Edited day %d", dayNum))
	return &result, nil
}

// answer handles questions and chit-chat with the fast model tier.
func (s *Session) answer(ctx context.Context, skeleton *trip.Skeleton, message string) string {
	if s.generator == nil {
		return "I can answer questions once an itinerary is generated."
	}

	prompt := message
	if skeleton != nil {
		prompt = fmt.Sprintf("The traveler's itinerary:\n%s\n\nThe traveler asks: %s",
			skeleton.CompactSummary(), message)
	}
	resp, err := s.generator.Complete(ctx, llm.Request{
		Capability: "fast",
		Messages: []llm.Message{
			{Role: "system", Content: "You are a concise, friendly travel assistant. Answer in a few sentences."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 400,
	})
	if err != nil {
		s.logger.Warn("Answer generation failed", "error", err)
		return "Sorry, I couldn't answer that right now."
	}
	return resp.Content
}

// Skeleton returns a copy of the current skeleton, or nil before the
// first generation completes.
func (s *Session) Skeleton() *trip.Skeleton {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skeleton.Clone()
}

// Days returns the current day results sorted ascending by day.
func (s *Session) Days() []trip.DayResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]trip.DayResult(nil), s.days...)
}

// Versions lists the committed snapshots oldest first.
func (s *Session) Versions() []version.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

// CompareVersions diffs two committed snapshots.
func (s *Session) CompareVersions(older, newer int) (version.Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CompareVersions(older, newer)
}

// Restore makes snapshot v's skeleton current by appending a rollback
// snapshot. Day details from before the rollback are dropped; callers
// re-render days from the restored skeleton.
func (s *Session) Restore(v int) (version.Snapshot, error) {
	if err := s.acquire(); err != nil {
		return version.Snapshot{}, err
	}
	defer s.release()

	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.ledger.Restore(v, "traveler")
	if err != nil {
		return version.Snapshot{}, err
	}
	s.skeleton = snap.Skeleton.Clone()
	s.days = nil
	s.gen++
	return snap, nil
}
