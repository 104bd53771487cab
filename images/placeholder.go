package images

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
)

// PlaceholderProvider generates keyless seeded placeholder URLs. It is
// the terminal link of the default chain: it never errors and never
// returns empty, so a run without any API keys still renders with
// images.
type PlaceholderProvider struct{}

func init() {
	RegisterProvider(&PlaceholderProvider{})
}

// Name returns the provider identifier.
func (p *PlaceholderProvider) Name() string {
	return "placeholder"
}

// Search derives deterministic seeded image URLs from the keyword, so the
// same keyword always renders the same placeholders.
func (p *PlaceholderProvider) Search(_ context.Context, keyword string, count int, orientation Orientation) ([]string, error) {
	w, h := 800, 500
	switch orientation {
	case Portrait:
		w, h = 500, 800
	case Square:
		w, h = 600, 600
	}

	hasher := fnv.New32a()
	hasher.Write([]byte(keyword))
	seed := hasher.Sum32()

	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		urls = append(urls, fmt.Sprintf(
			"https://picsum.photos/seed/%s-%d/%d/%d",
			url.PathEscape(keyword), seed+uint32(i), w, h))
	}
	return urls, nil
}
