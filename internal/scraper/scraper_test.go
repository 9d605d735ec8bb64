package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articlePage = `<html><body>
<nav><p>Home | World | Sports | Business | Technology</p></nav>
<article>
<p>The first paragraph of the story is long enough to keep.</p>
<p>Short.</p>
<p>The second paragraph carries more of the reporting detail.</p>
<p>The third paragraph closes the article with a quote.</p>
</article>
<footer><p>Copyright notice that should never be part of the article.</p></footer>
</body></html>`

func TestExtract(t *testing.T) {
	t.Run("article_paragraphs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(articlePage))
		}))
		defer server.Close()

		got, err := New(time.Second).Extract(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		parts := strings.Split(got, "\n\n")
		if len(parts) != 3 {
			t.Fatalf("expected 3 paragraphs, got %d: %q", len(parts), got)
		}
		if strings.Contains(got, "Short.") || strings.Contains(got, "Copyright") {
			t.Errorf("unexpected text in %q", got)
		}
	})

	t.Run("falls_back_to_any_paragraph", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<div><p>A loose paragraph outside any article container.</p></div>`))
		}))
		defer server.Close()

		got, err := New(time.Second).Extract(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "A loose paragraph outside any article container." {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("empty_page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><body></body></html>`))
		}))
		defer server.Close()

		if _, err := New(time.Second).Extract(context.Background(), server.URL); err == nil {
			t.Error("expected error for a page without text")
		}
	})

	t.Run("http_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		if _, err := New(time.Second).Extract(context.Background(), server.URL); err == nil {
			t.Error("expected status error")
		}
	})
}

func TestSummarize(t *testing.T) {
	if got := Summarize("  short text "); got != "short text" {
		t.Errorf("unexpected short summary %q", got)
	}

	long := strings.Repeat("a", SummaryLength+10)
	got := Summarize(long)
	if len(got) != SummaryLength+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected long summary length %d", len(got))
	}
}
