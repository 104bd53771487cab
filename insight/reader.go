package insight

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// PageDigest is the readable core of one fetched reference page.
type PageDigest struct {
	URL      string
	Title    string
	Markdown string
}

// Reader turns fetched HTML into a markdown digest: readability strips
// the page down to its article, html-to-markdown makes it prompt-safe.
type Reader struct {
	converter *md.Converter
	maxChars  int
}

// NewReader creates a page reader. maxChars caps each digest so one long
// article cannot crowd out the rest of the prompt.
func NewReader(maxChars int) *Reader {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Reader{
		converter: converter,
		maxChars:  maxChars,
	}
}

// Digest extracts the readable article from an HTML page.
func (r *Reader) Digest(rawURL string, content []byte) (*PageDigest, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(content), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	markdown, err := r.converter.ConvertString(article.Content)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}
	markdown = cleanMarkdown(markdown)
	if r.maxChars > 0 && len(markdown) > r.maxChars {
		markdown = markdown[:r.maxChars]
	}

	title := article.Title
	if title == "" {
		title = extractHTMLTitle(content)
	}

	return &PageDigest{
		URL:      rawURL,
		Title:    title,
		Markdown: markdown,
	}, nil
}

// extractHTMLTitle pulls the <title> out of raw HTML.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			extract(c)
		}
	}
	extract(doc)

	return title
}

// cleanMarkdown trims converted markdown for prompt embedding.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
