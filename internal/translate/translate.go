// Package translate calls the public gtx translation endpoint.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jbcnews/internal/logger"
	"jbcnews/internal/models"
	"jbcnews/internal/retry"
)

// Languages every ingested article is translated into.
var Languages = []string{"hi", "ur", "ar", "si"}

// maxRunes bounds the text sent in one request; the endpoint rejects long query strings.
const maxRunes = 4000

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Client talks to a gtx compatible translation endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	retry      retry.Config
}

// NewClient creates a Client against baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		retry:      retry.Config{MaxAttempts: 2, Delay: 500 * time.Millisecond},
	}
}

// Translate returns text in the target language. The source language is detected.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if runes := []rune(text); len(runes) > maxRunes {
		text = string(runes[:maxRunes])
	}

	var translated string
	err := retry.WithRetry(ctx, c.retry, func(ctx context.Context) error {
		out, err := c.fetch(ctx, text, target)
		if err != nil {
			return err
		}
		translated = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return translated, nil
}

func (c *Client) fetch(ctx context.Context, text, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	reqURL := fmt.Sprintf("%s/translate_a/single?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("building translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate returned status %d", resp.StatusCode)
	}

	var payload []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding translate response: %w", err)
	}
	return joinSegments(payload)
}

// joinSegments concatenates the translated segments of a gtx response:
// [[["translated","original",...],...],...]
func joinSegments(payload []interface{}) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}
	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate response had no text")
	}
	return b.String(), nil
}

// Article translates a title and summary into every language in langs.
// A language whose title cannot be translated is left out; a failed summary
// falls back to the original text.
func Article(ctx context.Context, tr Translator, title, summary string, langs []string) models.Translations {
	log := logger.Get()
	out := make(models.Translations, len(langs))
	for _, lang := range langs {
		t, err := tr.Translate(ctx, title, lang)
		if err != nil || t == "" {
			log.Warnw("title translation failed", "lang", lang, "error", err)
			continue
		}
		s := summary
		if summary != "" {
			if translated, err := tr.Translate(ctx, summary, lang); err != nil {
				log.Warnw("summary translation failed", "lang", lang, "error", err)
			} else {
				s = translated
			}
		}
		out[lang] = models.Translation{Title: t, Summary: s}
	}
	return out
}
