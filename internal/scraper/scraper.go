// Package scraper extracts the full text of an article page.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SummaryLength is the number of characters of content used as a summary.
const SummaryLength = 500

// selectors are tried in order until one yields enough paragraphs.
var selectors = []string{
	"article p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	".text p",
	"p",
}

const (
	minParagraphLength = 20
	minParagraphs      = 3
)

// Extractor fetches article pages and pulls out their body text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Scraper is an Extractor backed by goquery.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a Scraper whose requests time out after timeout.
func New(timeout time.Duration) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (compatible; JBCNewsBot/1.0)",
	}
}

// Extract downloads url and returns its paragraphs joined by blank lines.
func (s *Scraper) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building page request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("loading page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	content := extractParagraphs(doc)
	if content == "" {
		return "", fmt.Errorf("no article text found")
	}
	return content, nil
}

func extractParagraphs(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, aside").Remove()

	var paragraphs []string
	for _, selector := range selectors {
		paragraphs = paragraphs[:0]
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.Join(strings.Fields(sel.Text()), " ")
			if len(text) > minParagraphLength {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= minParagraphs {
			break
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// Summarize returns the first SummaryLength characters of content followed
// by "..." when content is longer.
func Summarize(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= SummaryLength {
		return content
	}
	return string(runes[:SummaryLength]) + "..."
}
