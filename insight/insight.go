package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tripweave/tripweave/llm"
)

// Result is the condensed context distilled from the traveler's
// references. Empty Summary means no usable insight was collected.
type Result struct {
	Summary string
	Sources []string
}

// TextGenerator is the slice of the llm client the collector needs.
type TextGenerator interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Collector fetches reference links, digests them, and summarizes the
// digests together with any media notes.
type Collector struct {
	fetcher   *Fetcher
	reader    *Reader
	generator TextGenerator
	logger    *slog.Logger
	maxLinks  int
}

// NewCollector creates a collector. generator may be nil; without one the
// summary is the concatenated digest titles and notes.
func NewCollector(timeout time.Duration, maxContentBytes int64, generator TextGenerator, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		fetcher:   NewFetcher(timeout, maxContentBytes),
		reader:    NewReader(4000),
		generator: generator,
		logger:    logger,
		maxLinks:  3,
	}
}

// Collect reads the reference links and media notes. Every failure is
// logged and skipped; the worst case is an empty Result.
func (c *Collector) Collect(ctx context.Context, links, mediaNotes []string) Result {
	var digests []*PageDigest
	for i, link := range links {
		if i >= c.maxLinks {
			break
		}
		body, err := c.fetcher.Fetch(ctx, link)
		if err != nil {
			c.logger.Debug("Reference link skipped", "url", link, "error", err)
			continue
		}
		digest, err := c.reader.Digest(link, body)
		if err != nil {
			c.logger.Debug("Reference digest failed", "url", link, "error", err)
			continue
		}
		digests = append(digests, digest)
	}

	if len(digests) == 0 && len(mediaNotes) == 0 {
		return Result{}
	}

	result := Result{}
	for _, d := range digests {
		result.Sources = append(result.Sources, d.URL)
	}

	if c.generator != nil {
		if summary, err := c.summarize(ctx, digests, mediaNotes); err == nil {
			result.Summary = summary
			return result
		} else {
			c.logger.Debug("Insight summarization failed, using titles", "error", err)
		}
	}

	result.Summary = titlesOnly(digests, mediaNotes)
	return result
}

func (c *Collector) summarize(ctx context.Context, digests []*PageDigest, mediaNotes []string) (string, error) {
	var b strings.Builder
	for _, d := range digests {
		fmt.Fprintf(&b, "## %s (%s)\n%s\n\n", d.Title, d.URL, d.Markdown)
	}
	for _, note := range mediaNotes {
		fmt.Fprintf(&b, "Traveler media note: %s\n", note)
	}

	resp, err := c.generator.Complete(ctx, llm.Request{
		Capability: "analysis",
		Messages: []llm.Message{
			{Role: "system", Content: "Summarize the traveler's reference material in at most 5 sentences, keeping place names, preferences, and constraints. Plain text only."},
			{Role: "user", Content: b.String()},
		},
		MaxTokens: 400,
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary")
	}
	return summary, nil
}

func titlesOnly(digests []*PageDigest, mediaNotes []string) string {
	var parts []string
	for _, d := range digests {
		if d.Title != "" {
			parts = append(parts, d.Title)
		}
	}
	parts = append(parts, mediaNotes...)
	return strings.Join(parts, "; ")
}
