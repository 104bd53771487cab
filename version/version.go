// Package version keeps an append-only ledger of itinerary snapshots.
// Snapshots are never mutated after commit; restoring an old snapshot
// appends a new one rather than rewinding history.
package version

import (
	"fmt"
	"time"

	"github.com/tripweave/tripweave/trip"
)

// Scope distinguishes whole-trip changes from single-day changes.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
)

// Change records one edit within a snapshot. The list is supplied by
// the caller at commit time, never inferred.
type Change struct {
	Scope       Scope     `json:"scope"`
	Day         int       `json:"day,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Snapshot is one committed itinerary state.
type Snapshot struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Author    string         `json:"author"`
	Summary   string         `json:"summary"`
	Changes   []Change       `json:"changes"`
	Skeleton  *trip.Skeleton `json:"skeleton"`
}

// Diff compares two snapshots' change lists shallowly by scope and day.
type Diff struct {
	Added    []Change `json:"added"`
	Removed  []Change `json:"removed"`
	Modified []Change `json:"modified"`
}

// Empty reports whether the diff holds no changes at all.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Ledger is the append-only snapshot history for one session. Not safe
// for concurrent use; the owning session serializes access.
type Ledger struct {
	snapshots []Snapshot
	now       func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Commit appends a snapshot holding a deep copy of skeleton and returns
// it. Version numbers increase by exactly one starting at 1.
func (l *Ledger) Commit(skeleton *trip.Skeleton, changes []Change, author, summary string) Snapshot {
	now := l.now()
	stamped := make([]Change, len(changes))
	for i, ch := range changes {
		if ch.Timestamp.IsZero() {
			ch.Timestamp = now
		}
		stamped[i] = ch
	}

	snap := Snapshot{
		Version:   len(l.snapshots) + 1,
		CreatedAt: now,
		Author:    author,
		Summary:   summary,
		Changes:   stamped,
		Skeleton:  skeleton.Clone(),
	}
	l.snapshots = append(l.snapshots, snap)
	return snap
}

// Head returns the latest snapshot, or nil for an empty ledger.
func (l *Ledger) Head() *Snapshot {
	if len(l.snapshots) == 0 {
		return nil
	}
	return &l.snapshots[len(l.snapshots)-1]
}

// Get returns snapshot number v.
func (l *Ledger) Get(v int) (*Snapshot, error) {
	if v < 1 || v > len(l.snapshots) {
		return nil, fmt.Errorf("no snapshot %d (ledger has %d)", v, len(l.snapshots))
	}
	return &l.snapshots[v-1], nil
}

// Len returns the number of committed snapshots.
func (l *Ledger) Len() int { return len(l.snapshots) }

// List returns all snapshots oldest first. The slice header is a copy;
// entries still alias the ledger's snapshots and must not be mutated.
func (l *Ledger) List() []Snapshot {
	return append([]Snapshot(nil), l.snapshots...)
}

// CompareVersions diffs snapshot older against newer by change identity
// (scope plus day). Same identity with a different description counts
// as modified.
func (l *Ledger) CompareVersions(older, newer int) (Diff, error) {
	a, err := l.Get(older)
	if err != nil {
		return Diff{}, err
	}
	b, err := l.Get(newer)
	if err != nil {
		return Diff{}, err
	}
	return compare(a.Changes, b.Changes), nil
}

type changeKey struct {
	scope Scope
	day   int
}

func compare(older, newer []Change) Diff {
	old := make(map[changeKey]Change, len(older))
	for _, ch := range older {
		old[changeKey{ch.Scope, ch.Day}] = ch
	}

	var d Diff
	seen := make(map[changeKey]bool, len(newer))
	for _, ch := range newer {
		key := changeKey{ch.Scope, ch.Day}
		seen[key] = true
		prev, ok := old[key]
		switch {
		case !ok:
			d.Added = append(d.Added, ch)
		case prev.Description != ch.Description:
			d.Modified = append(d.Modified, ch)
		}
	}
	for _, ch := range older {
		if !seen[changeKey{ch.Scope, ch.Day}] {
			d.Removed = append(d.Removed, ch)
		}
	}
	return d
}

// Restore appends a new head snapshot whose skeleton equals snapshot
// v's. History before the new head is untouched.
func (l *Ledger) Restore(v int, author string) (Snapshot, error) {
	target, err := l.Get(v)
	if err != nil {
		return Snapshot{}, err
	}
	change := Change{
		Scope:       ScopeGlobal,
		Description: fmt.Sprintf("Restored version %d", v),
	}
	summary := fmt.Sprintf("Rollback to version %d", v)
	return l.Commit(target.Skeleton, []Change{change}, author, summary), nil
}
