package delivery

import (
	"context"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jbcnews/internal/ingest"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
	"jbcnews/internal/testutil"
)

func article(countryID string, translations models.Translations) *models.News {
	url := "https://news.test/a"
	n := &models.News{
		Title:        "Storm hits coast",
		Summary:      "Heavy rain",
		SourceURL:    &url,
		CountryID:    &countryID,
		Translations: datatypes.NewJSONType(translations),
	}
	return n
}

func country(id, code string) *models.Country {
	c := &models.Country{Code: code}
	c.ID = id
	return c
}

func TestLocalize(t *testing.T) {
	hi := models.Translations{"hi": {Title: "तूफान", Summary: "भारी बारिश"}}

	tests := []struct {
		name        string
		news        *models.News
		viewer      *models.Country
		wantTitle   string
		wantSummary string
	}{
		{"foreign_viewer_with_translation", article("pk", hi), country("in", "IN"), "तूफान", "भारी बारिश"},
		{"same_country_keeps_original", article("in", hi), country("in", "IN"), "Storm hits coast", "Heavy rain"},
		{"viewer_without_language", article("pk", hi), country("us", "US"), "Storm hits coast", "Heavy rain"},
		{"missing_translation", article("pk", models.Translations{}), country("lk", "LK"), "Storm hits coast", "Heavy rain"},
		{"no_viewer_country", article("pk", hi), nil, "Storm hits coast", "Heavy rain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, summary := Localize(tt.news, tt.viewer)
			if title != tt.wantTitle || summary != tt.wantSummary {
				t.Errorf("expected %q/%q, got %q/%q", tt.wantTitle, tt.wantSummary, title, summary)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("with_link", func(t *testing.T) {
		msg := Render(42, article("pk", nil), nil)
		want := "*Storm hits coast*\n\nHeavy rain"
		if msg.Text != want || !msg.Markdown || msg.ChatID != 42 {
			t.Errorf("unexpected message %+v", msg)
		}
		if len(msg.Keyboard) != 1 || msg.Keyboard[0][0].URL != "https://news.test/a" || msg.Keyboard[0][0].Text != "Read more" {
			t.Errorf("expected a Read more button, got %+v", msg.Keyboard)
		}
	})

	t.Run("link_with_parentheses", func(t *testing.T) {
		n := article("pk", nil)
		url := "https://en.wikipedia.org/wiki/Storm_(meteorology)"
		n.SourceURL = &url
		msg := Render(42, n, nil)
		if strings.Contains(msg.Text, url) || strings.Contains(msg.Text, "](") {
			t.Errorf("expected no inline link in %q", msg.Text)
		}
		if len(msg.Keyboard) != 1 || msg.Keyboard[0][0].URL != url {
			t.Errorf("expected the URL on a button unchanged, got %+v", msg.Keyboard)
		}
	})

	t.Run("photo_without_link", func(t *testing.T) {
		n := &models.News{Title: "Under_score", ImageURL: "https://news.test/a.jpg"}
		msg := Render(1, n, nil)
		if msg.PhotoURL != "https://news.test/a.jpg" {
			t.Errorf("expected photo url, got %q", msg.PhotoURL)
		}
		if msg.Text != "*Under\\_score*" {
			t.Errorf("unexpected text %q", msg.Text)
		}
		if msg.Keyboard != nil {
			t.Errorf("expected no keyboard, got %+v", msg.Keyboard)
		}
	})
}

func TestGreeting(t *testing.T) {
	tests := map[int]string{
		4:  "Good evening",
		5:  "Good morning",
		11: "Good morning",
		12: "Good afternoon",
		17: "Good afternoon",
		18: "Good evening",
		23: "Good evening",
	}
	for hour, want := range tests {
		if got := Greeting(hour); got != want {
			t.Errorf("hour %d: expected %q, got %q", hour, want, got)
		}
	}
}

func TestLocalHour(t *testing.T) {
	now := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)

	if got := LocalHour(now, &models.Country{Timezone: "Asia/Kolkata"}); got != 8 {
		t.Errorf("expected 8 in Kolkata, got %d", got)
	}
	if got := LocalHour(now, &models.Country{Timezone: "Not/AZone"}); got != 3 {
		t.Errorf("expected UTC fallback, got %d", got)
	}
	if got := LocalHour(now, nil); got != 3 {
		t.Errorf("expected UTC for nil country, got %d", got)
	}
}

type fixture struct {
	db     *gorm.DB
	sender *testutil.RecordingSender
	svc    *Service
	india  *models.Country
	pak    *models.Country
}

func setup(t *testing.T, ingester Ingester) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	sender := testutil.NewRecordingSender()
	return &fixture{
		db:     db,
		sender: sender,
		svc:    New(services.NewSessionService(db), services.NewNewsService(db), ingester, sender, time.Second),
		india:  testutil.CreateTestCountry(t, db, "IN"),
		pak:    testutil.CreateTestCountry(t, db, "PK"),
	}
}

func (f *fixture) reader(t *testing.T, country *models.Country) *models.ChatSession {
	t.Helper()
	var countryID *string
	if country != nil {
		countryID = &country.ID
	}
	user := testutil.CreateTestUserWithRole(t, f.db, models.RoleUser, countryID)
	return testutil.CreateTestSession(t, f.db, user)
}

func TestBreaking(t *testing.T) {
	f := setup(t, nil)
	indian := f.reader(t, f.india)
	pakistani := f.reader(t, f.pak)
	unreachable := f.reader(t, f.india)
	f.sender.FailFor(unreachable.ChatID)
	testutil.CreateTestSession(t, f.db, nil)

	news := testutil.CreateTestNews(t, f.db, &f.pak.ID, nil)
	translations := models.Translations{"hi": {Title: "तूफान", Summary: "भारी बारिश"}}
	testutil.AssertNoError(t, services.NewNewsService(f.db).SetTranslations(news.ID, translations))

	report, err := f.svc.Breaking(context.Background(), news.ID)
	testutil.AssertNoError(t, err)

	if report.Recipients != 3 || report.Delivered != 2 || len(report.Failures) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Failures[0].ChatID != unreachable.ChatID {
		t.Errorf("expected failure for %d, got %+v", unreachable.ChatID, report.Failures)
	}

	msg, ok := f.sender.Last(indian.ChatID)
	if !ok || !strings.Contains(msg.Text, "तूफान") {
		t.Errorf("expected translated push for India, got %q", msg.Text)
	}
	msg, ok = f.sender.Last(pakistani.ChatID)
	if !ok || !strings.Contains(msg.Text, news.Title) {
		t.Errorf("expected original push for Pakistan, got %q", msg.Text)
	}

	var stored models.News
	f.db.First(&stored, "id = ?", news.ID)
	if !stored.IsBreaking {
		t.Error("expected article to be flagged breaking")
	}
}

func TestBreakingUnknownArticle(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.Breaking(context.Background(), "missing")
	testutil.AssertAppError(t, err, "NEWS_NOT_FOUND")
}

type countingIngester struct {
	calls int
}

func (c *countingIngester) RunAll(context.Context) ([]ingest.RunResult, error) {
	c.calls++
	return nil, nil
}

func TestDigest(t *testing.T) {
	ingester := &countingIngester{}
	f := setup(t, ingester)
	f.db.Model(f.india).Update("timezone", "Asia/Kolkata")
	f.svc.now = func() time.Time { return time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC) }

	indian := f.reader(t, f.india)
	global := f.reader(t, nil)
	for i := 0; i < 4; i++ {
		testutil.CreateTestNews(t, f.db, &f.india.ID, nil)
	}
	testutil.CreateTestNews(t, f.db, &f.pak.ID, nil)

	report, err := f.svc.Digest(context.Background())
	testutil.AssertNoError(t, err)

	if ingester.calls != 1 {
		t.Errorf("expected one refresh, got %d", ingester.calls)
	}
	if report.Delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %+v", report)
	}

	msgs := f.sender.To(indian.ChatID)
	if len(msgs) != 1+DigestSize {
		t.Fatalf("expected header plus %d articles, got %d", DigestSize, len(msgs))
	}
	if !strings.HasPrefix(msgs[0].Text, "📰 *Good morning, ") || !strings.Contains(msgs[0].Text, "daily news digest") {
		t.Errorf("unexpected header %q", msgs[0].Text)
	}
	if len(f.sender.To(global.ChatID)) != 1+DigestSize {
		t.Errorf("expected chat without country to get the global digest")
	}
}

func TestDigestWithoutSender(t *testing.T) {
	svc := New(nil, nil, nil, nil, time.Second)
	if _, err := svc.Digest(context.Background()); err != ErrNoSender {
		t.Errorf("expected ErrNoSender, got %v", err)
	}
}
