package pipeline

import "github.com/tripweave/tripweave/trip"

// MessageKind tags the variants of the generation stream. The stream is
// a tagged union rather than a prefix-sniffed text channel so a markup
// fragment can never be mistaken for a progress marker.
type MessageKind string

const (
	// KindFragment carries a markup fragment to append to the document.
	KindFragment MessageKind = "fragment"

	// KindProgress carries a structured progress marker.
	KindProgress MessageKind = "progress"

	// KindSkeleton carries the full skeleton, emitted exactly once after
	// the skeleton stage succeeds and before per-day fragments begin.
	KindSkeleton MessageKind = "skeleton"

	// KindDone terminates a successful stream.
	KindDone MessageKind = "done"

	// KindError terminates a failed stream.
	KindError MessageKind = "error"
)

// Phase names the pipeline stage a progress marker refers to.
type Phase string

const (
	PhaseAnalyzing Phase = "analyzing"
	PhaseIdentity  Phase = "identity"
	PhaseSkeleton  Phase = "skeleton"
	PhaseDays      Phase = "days"
	PhaseAssembly  Phase = "assembly"
)

// Message is one chunk of the generation stream.
type Message struct {
	Kind MessageKind `json:"kind"`

	// Fragment is set for KindFragment.
	Fragment string `json:"fragment,omitempty"`

	// Phase/Progress/Day are set for KindProgress. Progress is 0-100.
	Phase    Phase `json:"phase,omitempty"`
	Progress int   `json:"progress,omitempty"`
	Day      int   `json:"day,omitempty"`

	// Skeleton is set for KindSkeleton.
	Skeleton *trip.Skeleton `json:"skeleton,omitempty"`

	// Err is set for KindError.
	Err string `json:"error,omitempty"`
}

func fragmentMsg(markup string) Message {
	return Message{Kind: KindFragment, Fragment: markup}
}

func progressMsg(phase Phase, progress, day int) Message {
	return Message{Kind: KindProgress, Phase: phase, Progress: progress, Day: day}
}

func skeletonMsg(s *trip.Skeleton) Message {
	return Message{Kind: KindSkeleton, Skeleton: s}
}

func doneMsg() Message {
	return Message{Kind: KindDone}
}

func errorMsg(err error) Message {
	return Message{Kind: KindError, Err: err.Error()}
}
