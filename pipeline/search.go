package pipeline

import (
	"context"
	"sync"

	"github.com/tripweave/tripweave/images"
	"github.com/tripweave/tripweave/trip"
)

// SearchResult holds what the collaborators found for one search query.
// Place is nil when geocoding misses; Images may be empty.
type SearchResult struct {
	Query  string      `json:"query"`
	Place  *trip.Place `json:"place,omitempty"`
	Images []string    `json:"images,omitempty"`
}

// Search resolves a free-text query against the place and image
// collaborators concurrently. A lookup failure degrades to a nil place
// rather than an error; search never blocks a conversation.
func (p *Pipeline) Search(ctx context.Context, query, cityHint string, imageCount int) SearchResult {
	res := SearchResult{Query: query}
	if imageCount <= 0 {
		imageCount = p.imagesPerDay
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Images = p.images.FetchImages(ctx, query, imageCount, images.Landscape)
	}()
	go func() {
		defer wg.Done()
		place, err := p.places.LookupPlace(ctx, query, cityHint)
		if err != nil {
			p.logger.Debug("search lookup miss", "query", query, "error", err)
			return
		}
		res.Place = place
	}()
	wg.Wait()

	return res
}
