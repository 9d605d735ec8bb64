// Package sources defines the news source adapters and the ranked fallback between them.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Article is a news item as returned by a source, before it is stored.
type Article struct {
	Title       string
	Summary     string
	Content     string
	URL         string
	ImageURL    string
	SourceName  string
	Category    string // empty means the default category
	PublishedAt time.Time
}

// Provider fetches the current headlines of a country.
type Provider interface {
	// Name returns the provider's display name (e.g., "NewsAPI", "RSS").
	Name() string

	// Fetch returns the headlines for an ISO-3166 alpha-2 country code.
	Fetch(ctx context.Context, countryCode string) ([]Article, error)
}

// FetchError wraps a failed provider call.
type FetchError struct {
	Provider string
	Country  string
	Err      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch for %s failed: %v", e.Provider, e.Country, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// getJSON issues a GET request and returns the response for the caller to decode.
// The caller must close the body.
func getJSON(ctx context.Context, client *http.Client, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// the request URL carries the API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("calling source: %w", err)
	}
	return resp, nil
}

func parseTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now()
}

// clean drops articles without a title and trims whitespace.
func clean(articles []Article) []Article {
	out := articles[:0]
	for _, a := range articles {
		a.Title = strings.TrimSpace(a.Title)
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		a.Summary = strings.TrimSpace(a.Summary)
		a.URL = strings.TrimSpace(a.URL)
		out = append(out, a)
	}
	return out
}
