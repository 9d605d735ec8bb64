package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"jbcnews/internal/logger"
)

// Feed is one RSS feed entry of the feeds file.
type Feed struct {
	URL      string `yaml:"url"`
	Country  string `yaml:"country"`
	Category string `yaml:"category"`
}

// FeedsConfig is the YAML layout of the feeds file:
//
//	feeds:
//	  - url: https://www.dawn.com/feed
//	    country: PK
//	    category: World
type FeedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads the feed list from a YAML file.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feeds file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding feeds file: %w", err)
	}
	for i := range cfg.Feeds {
		cfg.Feeds[i].Country = strings.ToUpper(strings.TrimSpace(cfg.Feeds[i].Country))
	}
	return cfg.Feeds, nil
}

// RSSProvider reads the configured feeds of a country.
type RSSProvider struct {
	parser *gofeed.Parser
	feeds  []Feed
}

// NewRSSProvider creates a new RSS provider over feeds.
func NewRSSProvider(httpClient *http.Client, feeds []Feed) *RSSProvider {
	parser := gofeed.NewParser()
	parser.Client = httpClient
	return &RSSProvider{parser: parser, feeds: feeds}
}

// Name returns the provider's display name.
func (p *RSSProvider) Name() string { return "RSS" }

// Fetch parses every feed configured for countryCode. A broken feed is logged
// and skipped; the fetch fails only when every feed failed.
func (p *RSSProvider) Fetch(ctx context.Context, countryCode string) ([]Article, error) {
	log := logger.Get()
	code := strings.ToUpper(countryCode)

	var (
		articles []Article
		errs     []error
		tried    int
	)
	for _, feed := range p.feeds {
		if feed.Country != code {
			continue
		}
		tried++

		parsed, err := p.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			log.Warnw("failed to parse rss feed", "url", feed.URL, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, item := range parsed.Items {
			articles = append(articles, fromItem(item, parsed.Title, feed.Category))
		}
		log.Infow("loaded rss feed", "url", feed.URL, "items", len(parsed.Items))
	}

	if tried > 0 && len(errs) == tried {
		return nil, &FetchError{Provider: p.Name(), Country: code, Err: errors.Join(errs...)}
	}
	return clean(articles), nil
}

func fromItem(item *gofeed.Item, feedTitle, category string) Article {
	a := Article{
		Title:       item.Title,
		Summary:     item.Description,
		Content:     item.Content,
		URL:         item.Link,
		SourceName:  feedTitle,
		Category:    category,
		PublishedAt: time.Now(),
	}
	if item.PublishedParsed != nil {
		a.PublishedAt = *item.PublishedParsed
	}
	if item.Image != nil {
		a.ImageURL = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				a.ImageURL = enc.URL
				break
			}
		}
	}
	return a
}
