package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tripweave/tripweave/trip"
)

// GenerateDays expands the skeleton's days batch by batch: each batch of
// at most dayConcurrency workers runs concurrently and settles fully
// before the next batch starts. A worker that fails or panics is
// replaced by a placeholder result, so the returned slice always holds
// exactly len(s.Days) entries, sorted ascending by day. emit may be
// nil; when set, it receives results in ascending day order regardless
// of completion order.
func (p *Pipeline) GenerateDays(ctx context.Context, s *trip.Skeleton, emit func(trip.DayResult)) []trip.DayResult {
	results := make([]trip.DayResult, 0, len(s.Days))

	// Workers complete in any order. A completed result waits in
	// pending until every lower-numbered day has been emitted.
	pending := make(map[int]trip.DayResult, len(s.Days))
	nextIdx := 0
	var mu sync.Mutex
	deliver := func(res trip.DayResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
		pending[res.Day] = res
		for nextIdx < len(s.Days) {
			ready, ok := pending[s.Days[nextIdx].Day]
			if !ok {
				break
			}
			if emit != nil {
				emit(ready)
			}
			nextIdx++
		}
	}

	for start := 0; start < len(s.Days); start += p.dayConcurrency {
		end := start + p.dayConcurrency
		if end > len(s.Days) {
			end = len(s.Days)
		}

		var wg sync.WaitGroup
		for _, day := range s.Days[start:end] {
			wg.Add(1)
			go func(day trip.DaySkeleton) {
				defer wg.Done()
				deliver(p.generateDayOrFallback(ctx, s.Identity, day))
			}(day)
		}
		wg.Wait()
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Day < results[j].Day })
	return results
}

// generateDayOrFallback isolates one day worker. Errors and panics both
// degrade to the placeholder result; neither can take down the batch.
func (p *Pipeline) generateDayOrFallback(ctx context.Context, id trip.VisualIdentity, day trip.DaySkeleton) (res trip.DayResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Day worker panicked", "day", day.Day, "panic", fmt.Sprint(r))
			p.metrics.fallbacks.WithLabelValues("day_worker").Inc()
			res = fallbackDayResult(day)
		}
	}()

	res, err := p.GenerateDay(ctx, id, day, "")
	if err != nil {
		p.logger.Warn("Day worker failed, substituting placeholder", "day", day.Day, "error", err)
		p.metrics.fallbacks.WithLabelValues("day_worker").Inc()
		return fallbackDayResult(day)
	}
	return res
}
