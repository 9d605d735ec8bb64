// Package delivery pushes news to registered chats: breaking alerts and the daily digest.
package delivery

import (
	"fmt"
	"strings"
	"time"

	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
)

// languageByCountry maps a viewer's country to the language articles are shown in.
// Countries not listed read the original text.
var languageByCountry = map[string]string{
	"IN": "hi",
	"PK": "ur",
	"SA": "ar",
	"LK": "si",
}

// LanguageFor returns the language code for a country, or "" for the original text.
func LanguageFor(countryCode string) string {
	return languageByCountry[strings.ToUpper(countryCode)]
}

// Localize returns the title and summary a viewer from viewer sees. The
// translation is used only when the viewer's country differs from the article's.
func Localize(news *models.News, viewer *models.Country) (title, summary string) {
	title, summary = news.Title, news.Summary
	if viewer == nil || news.CountryID == nil || *news.CountryID == viewer.ID {
		return title, summary
	}
	lang := LanguageFor(viewer.Code)
	if lang == "" {
		return title, summary
	}
	if tr, ok := news.TranslationFor(lang); ok {
		title = tr.Title
		if tr.Summary != "" {
			summary = tr.Summary
		}
	}
	return title, summary
}

// Render builds the chat message for an article.
func Render(chatID int64, news *models.News, viewer *models.Country) messenger.Message {
	title, summary := Localize(news, viewer)

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", messenger.EscapeMarkdown(title))
	if summary != "" {
		fmt.Fprintf(&b, "\n\n%s", messenger.EscapeMarkdown(summary))
	}

	msg := messenger.Message{
		ChatID:   chatID,
		Text:     b.String(),
		Markdown: true,
		PhotoURL: news.ImageURL,
	}
	// Legacy Markdown cannot escape ')' inside a link target, so the source
	// goes on a URL button instead.
	if news.SourceURL != nil && *news.SourceURL != "" {
		msg.Keyboard = [][]messenger.Button{{{Text: "Read more", URL: *news.SourceURL}}}
	}
	return msg
}

// Greeting returns the salutation for an hour of the day.
func Greeting(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour >= 12 && hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// LocalHour returns the hour at now in the country's timezone, falling back to UTC.
func LocalHour(now time.Time, country *models.Country) int {
	if country != nil && country.Timezone != "" {
		if loc, err := time.LoadLocation(country.Timezone); err == nil {
			return now.In(loc).Hour()
		}
	}
	return now.UTC().Hour()
}
