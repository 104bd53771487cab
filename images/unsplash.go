package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// UnsplashProvider searches the Unsplash photo API. Requires
// UNSPLASH_ACCESS_KEY in the environment.
type UnsplashProvider struct {
	httpClient *http.Client
}

func init() {
	RegisterProvider(&UnsplashProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	})
}

// Name returns the provider identifier.
func (u *UnsplashProvider) Name() string {
	return "unsplash"
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Search queries the Unsplash search endpoint.
func (u *UnsplashProvider) Search(ctx context.Context, keyword string, count int, orientation Orientation) ([]string, error) {
	key := os.Getenv("UNSPLASH_ACCESS_KEY")
	if key == "" {
		return nil, fmt.Errorf("UNSPLASH_ACCESS_KEY not set")
	}

	endpoint := fmt.Sprintf(
		"https://api.unsplash.com/search/photos?query=%s&per_page=%d&orientation=%s",
		url.QueryEscape(keyword), count, orientation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+key)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed unsplashResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse unsplash response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URLs.Regular != "" {
			urls = append(urls, r.URLs.Regular)
		}
	}
	return urls, nil
}
