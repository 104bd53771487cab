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

// PexelsProvider searches the Pexels photo API. Requires PEXELS_API_KEY
// in the environment.
type PexelsProvider struct {
	httpClient *http.Client
}

func init() {
	RegisterProvider(&PexelsProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	})
}

// Name returns the provider identifier.
func (p *PexelsProvider) Name() string {
	return "pexels"
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// Search queries the Pexels search endpoint.
func (p *PexelsProvider) Search(ctx context.Context, keyword string, count int, orientation Orientation) ([]string, error) {
	key := os.Getenv("PEXELS_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY not set")
	}

	endpoint := fmt.Sprintf(
		"https://api.pexels.com/v1/search?query=%s&per_page=%d&orientation=%s",
		url.QueryEscape(keyword), count, orientation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", key)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed pexelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse pexels response: %w", err)
	}

	urls := make([]string, 0, len(parsed.Photos))
	for _, photo := range parsed.Photos {
		if photo.Src.Large != "" {
			urls = append(urls, photo.Src.Large)
		}
	}
	return urls, nil
}
