// Package ingest fetches, deduplicates, stores and translates news per country.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/lock"
	"jbcnews/internal/logger"
	"jbcnews/internal/models"
	"jbcnews/internal/scraper"
	"jbcnews/internal/services"
	"jbcnews/internal/sources"
	"jbcnews/internal/translate"
)

// Fetcher returns the articles of the first source that has any for a country.
type Fetcher interface {
	Fetch(ctx context.Context, countryCode string) (provider string, articles []sources.Article, err error)
}

// ArticleError records an article that could not be stored.
type ArticleError struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// RunResult summarizes one ingestion run for a country.
type RunResult struct {
	Country  string         `json:"country"`
	Provider string         `json:"provider,omitempty"`
	Fetched  int            `json:"fetched"`
	Created  int            `json:"created"`
	Skipped  int            `json:"skipped"`
	Errors   []ArticleError `json:"errors,omitempty"`
	Failure  string         `json:"failure,omitempty"`
}

// Deps are the collaborators of a Pipeline. Extractor and Translator are optional.
type Deps struct {
	News       services.NewsServicer
	Categories services.CategoryServicer
	Countries  services.CountryServicer
	Fetcher    Fetcher
	Extractor  scraper.Extractor
	Translator translate.Translator
	Languages  []string
	// CallTimeout bounds each extraction and translation call.
	CallTimeout time.Duration
}

// Pipeline runs ingestion. Runs for the same country never overlap.
type Pipeline struct {
	db    *gorm.DB
	deps  Deps
	locks *lock.Keyed[string]
}

// New creates a Pipeline.
func New(db *gorm.DB, deps Deps) *Pipeline {
	if deps.Languages == nil {
		deps.Languages = translate.Languages
	}
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = 15 * time.Second
	}
	return &Pipeline{db: db, deps: deps, locks: lock.NewKeyed[string]()}
}

// RunAll ingests every country in turn. A failing country is logged and the
// run moves on to the next one.
func (p *Pipeline) RunAll(ctx context.Context) ([]RunResult, error) {
	countries, err := p.deps.Countries.List()
	if err != nil {
		return nil, err
	}

	log := logger.Get()
	results := make([]RunResult, 0, len(countries))
	for i := range countries {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result, err := p.RunCountry(ctx, &countries[i])
		if err != nil {
			log.Errorw("country ingestion failed", "country", countries[i].Code, "error", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// RunCountryCode ingests the country with the given ISO code.
func (p *Pipeline) RunCountryCode(ctx context.Context, code string) (RunResult, error) {
	country, err := p.deps.Countries.GetByCode(code)
	if err != nil {
		return RunResult{Country: strings.ToUpper(code)}, err
	}
	return p.RunCountry(ctx, country)
}

// RunCountry fetches and stores the headlines of one country. The returned
// error covers only the fetch; per-article failures land in RunResult.Errors.
func (p *Pipeline) RunCountry(ctx context.Context, country *models.Country) (RunResult, error) {
	result := RunResult{Country: country.Code}

	unlock := p.locks.Lock(country.Code)
	defer unlock()

	log := logger.Get().With("country", country.Code)
	started := time.Now()

	provider, articles, err := p.deps.Fetcher.Fetch(ctx, country.Code)
	if err != nil {
		result.Failure = err.Error()
		return result, fmt.Errorf("fetching news for %s: %w", country.Code, err)
	}
	result.Provider = provider
	result.Fetched = len(articles)

	for _, article := range articles {
		if ctx.Err() != nil {
			break
		}
		created, err := p.processArticle(ctx, country, article)
		switch {
		case err != nil:
			log.Warnw("failed to store article", "title", article.Title, "url", article.URL, "error", err)
			result.Errors = append(result.Errors, ArticleError{Title: article.Title, URL: article.URL, Error: err.Error()})
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	log.Infow("ingestion finished",
		"provider", provider,
		"fetched", result.Fetched,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"duration", time.Since(started),
	)
	return result, nil
}

// processArticle stores one article unless it is a duplicate. It reports
// whether a new row was created.
func (p *Pipeline) processArticle(ctx context.Context, country *models.Country, article sources.Article) (bool, error) {
	dup, err := p.deps.News.Exists(nil, article.URL, article.Title)
	if err != nil {
		return false, err
	}
	if dup {
		return false, nil
	}

	p.enrich(ctx, &article)

	var stored *models.News
	err = p.db.Transaction(func(tx *gorm.DB) error {
		dup, err := p.deps.News.Exists(tx, article.URL, article.Title)
		if err != nil || dup {
			return err
		}

		category, err := p.deps.Categories.ResolveCategory(tx, article.Category)
		if err != nil {
			return err
		}

		news := &models.News{
			Title:           article.Title,
			Summary:         article.Summary,
			Content:         article.Content,
			ImageURL:        article.ImageURL,
			SourceURL:       optional(article.URL),
			SourceName:      article.SourceName,
			CategoryID:      &category.ID,
			CountryID:       &country.ID,
			IsPublished:     true,
			IsAutoGenerated: true,
			PublishedAt:     article.PublishedAt,
			Translations:    datatypes.NewJSONType(models.Translations{}),
		}
		if err := p.deps.News.Create(tx, news); err != nil {
			return err
		}
		stored = news
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateNews) {
			return false, nil
		}
		return false, err
	}
	if stored == nil {
		return false, nil
	}

	p.translate(ctx, stored)
	return true, nil
}

// enrich fills missing content from the article page. Failures keep the feed values.
func (p *Pipeline) enrich(ctx context.Context, article *sources.Article) {
	if p.deps.Extractor == nil || article.Content != "" || article.URL == "" {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, p.deps.CallTimeout)
	defer cancel()

	content, err := p.deps.Extractor.Extract(callCtx, article.URL)
	if err != nil {
		logger.Get().Debugw("content extraction failed", "url", article.URL, "error", err)
		return
	}
	article.Content = content
	if article.Summary == "" {
		article.Summary = scraper.Summarize(content)
	}
}

// translate stores the translations of a newly created article. Failures are logged.
func (p *Pipeline) translate(ctx context.Context, news *models.News) {
	if p.deps.Translator == nil || len(p.deps.Languages) == 0 {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, p.deps.CallTimeout*time.Duration(len(p.deps.Languages)))
	defer cancel()

	translations := translate.Article(callCtx, p.deps.Translator, news.Title, news.Summary, p.deps.Languages)
	if len(translations) == 0 {
		return
	}
	if err := p.deps.News.SetTranslations(news.ID, translations); err != nil {
		logger.Get().Warnw("failed to store translations", "news_id", news.ID, "error", err)
		return
	}
	news.Translations = datatypes.NewJSONType(translations)
}

// Retranslate re-runs translation for a stored article.
func (p *Pipeline) Retranslate(ctx context.Context, newsID string) (*models.News, error) {
	news, err := p.deps.News.GetByID(newsID)
	if err != nil {
		return nil, err
	}
	if p.deps.Translator == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "translation is not configured")
	}
	p.translate(ctx, news)
	return news, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
