package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jbcnews/internal/retry"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{httpClient: server.Client(), baseURL: server.URL, retry: retry.Once}
}

func TestTranslate(t *testing.T) {
	t.Run("joins_segments", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/translate_a/single" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("client") != "gtx" || q.Get("tl") != "hi" || q.Get("dt") != "t" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[[["नमस्ते ","Hello ",null,null],["दुनिया","world",null,null]],null,"en"]`))
		}))
		defer server.Close()

		got, err := newTestClient(server).Translate(context.Background(), "Hello world", "hi")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "नमस्ते दुनिया" {
			t.Errorf("unexpected translation %q", got)
		}
	})

	t.Run("empty_text_skips_request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		got, err := newTestClient(server).Translate(context.Background(), "   ", "ar")
		if err != nil || got != "" {
			t.Errorf("expected empty result, got %q, %v", got, err)
		}
	})

	t.Run("http_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server).Translate(context.Background(), "Hello", "ur")
		if err == nil || !strings.Contains(err.Error(), "429") {
			t.Errorf("expected status error, got %v", err)
		}
	})

	t.Run("malformed_response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"unexpected":true}`))
		}))
		defer server.Close()

		if _, err := newTestClient(server).Translate(context.Background(), "Hello", "si"); err == nil {
			t.Error("expected decode error")
		}
	})
}

type stubTranslator struct {
	fail map[string]bool
}

func (s stubTranslator) Translate(_ context.Context, text, target string) (string, error) {
	if s.fail[target+":"+text] {
		return "", errors.New("boom")
	}
	return target + "|" + text, nil
}

func TestArticle(t *testing.T) {
	tr := stubTranslator{fail: map[string]bool{"ur:Title": true, "ar:Summary": true}}

	got := Article(context.Background(), tr, "Title", "Summary", Languages)

	if _, ok := got["ur"]; ok {
		t.Error("expected ur to be skipped after title failure")
	}
	if got["hi"].Title != "hi|Title" || got["hi"].Summary != "hi|Summary" {
		t.Errorf("unexpected hi translation %+v", got["hi"])
	}
	if got["ar"].Title != "ar|Title" || got["ar"].Summary != "Summary" {
		t.Errorf("expected ar summary to fall back to the original, got %+v", got["ar"])
	}
	if len(got) != 3 {
		t.Errorf("expected 3 languages, got %d", len(got))
	}
}
