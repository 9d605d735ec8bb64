package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// NewsAPIProvider fetches top headlines from newsapi.org.
type NewsAPIProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
}

// NewNewsAPIProvider creates a new NewsAPI provider.
func NewNewsAPIProvider(httpClient *http.Client, baseURL, apiKey string) *NewsAPIProvider {
	return &NewsAPIProvider{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Name returns the provider's display name.
func (p *NewsAPIProvider) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch returns the top headlines for countryCode.
func (p *NewsAPIProvider) Fetch(ctx context.Context, countryCode string) ([]Article, error) {
	params := url.Values{}
	params.Set("country", strings.ToLower(countryCode))
	params.Set("apiKey", p.apiKey)

	resp, err := getJSON(ctx, p.httpClient, fmt.Sprintf("%s/v2/top-headlines?%s", p.baseURL, params.Encode()))
	if err != nil {
		return nil, &FetchError{Provider: p.Name(), Country: countryCode, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{Provider: p.Name(), Country: countryCode, Err: fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)}
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, &FetchError{Provider: p.Name(), Country: countryCode, Err: fmt.Errorf("status %d: %s %s", resp.StatusCode, body.Code, body.Message)}
	}

	articles := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Summary:     a.Description,
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			SourceName:  a.Source.Name,
			PublishedAt: parseTime(a.PublishedAt),
		})
	}
	return clean(articles), nil
}
