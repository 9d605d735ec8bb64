package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GNewsProvider fetches top headlines from gnews.io.
type GNewsProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
}

// NewGNewsProvider creates a new GNews provider.
func NewGNewsProvider(httpClient *http.Client, baseURL, apiKey string) *GNewsProvider {
	return &GNewsProvider{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Name returns the provider's display name.
func (p *GNewsProvider) Name() string { return "GNews" }

type gnewsResponse struct {
	Errors   []string `json:"errors"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch returns the top headlines for countryCode.
func (p *GNewsProvider) Fetch(ctx context.Context, countryCode string) ([]Article, error) {
	params := url.Values{}
	params.Set("country", strings.ToLower(countryCode))
	params.Set("token", p.apiKey)

	resp, err := getJSON(ctx, p.httpClient, fmt.Sprintf("%s/api/v4/top-headlines?%s", p.baseURL, params.Encode()))
	if err != nil {
		return nil, &FetchError{Provider: p.Name(), Country: countryCode, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var body gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{Provider: p.Name(), Country: countryCode, Err: fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)}
	}
	if resp.StatusCode != http.StatusOK || len(body.Errors) > 0 {
		return nil, &FetchError{Provider: p.Name(), Country: countryCode, Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.Join(body.Errors, "; "))}
	}

	articles := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Summary:     a.Description,
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.Image,
			SourceName:  a.Source.Name,
			PublishedAt: parseTime(a.PublishedAt),
		})
	}
	return clean(articles), nil
}
