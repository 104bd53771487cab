package trip

import "fmt"

// Normalize repairs a freshly parsed skeleton so the day invariants hold:
// exactly Identity.Duration days, indexed densely 1..duration. Extra days
// are truncated; missing days are synthesized from the identity (generic
// title, tone as theme, destination as city). Losing a whole run over a
// day-count mismatch is worse than a placeholder day, so this never fails.
func (s *Skeleton) Normalize() {
	d := s.Identity.Duration
	if d < 1 {
		d = max(len(s.Days), 1)
		s.Identity.Duration = d
	}

	if len(s.Days) > d {
		s.Days = s.Days[:d]
	}
	for len(s.Days) < d {
		s.Days = append(s.Days, PlaceholderDay(len(s.Days)+1, s.Identity))
	}

	// Renumber densely regardless of what the model returned.
	for i := range s.Days {
		s.Days[i].Day = i + 1
		if s.Days[i].Title == "" {
			s.Days[i].Title = fmt.Sprintf("Day %d", i+1)
		}
		if s.Days[i].City == "" {
			s.Days[i].City = s.Identity.Destination
		}
		if s.Days[i].Theme == "" {
			s.Days[i].Theme = s.Identity.Tone
		}
		if s.Days[i].ImageKeyword == "" {
			s.Days[i].ImageKeyword = s.Identity.Destination
		}
	}
}

// PlaceholderDay synthesizes a minimal DaySkeleton for a missing day.
func PlaceholderDay(n int, id VisualIdentity) DaySkeleton {
	return DaySkeleton{
		Day:          n,
		Title:        fmt.Sprintf("Day %d", n),
		Theme:        id.Tone,
		City:         id.Destination,
		ImageKeyword: id.Destination,
	}
}
