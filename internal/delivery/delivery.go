package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jbcnews/internal/ingest"
	"jbcnews/internal/logger"
	"jbcnews/internal/messenger"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

// DigestSize is the number of articles in a daily digest.
const DigestSize = 3

// ErrNoSender is returned when the news bot is disabled.
var ErrNoSender = errors.New("news bot is not configured")

// Ingester refreshes the article store before a digest.
type Ingester interface {
	RunAll(ctx context.Context) ([]ingest.RunResult, error)
}

// Failure is a recipient that could not be reached.
type Failure struct {
	ChatID int64  `json:"chat_id"`
	Error  string `json:"error"`
}

// Report summarizes one push.
type Report struct {
	NewsID     string    `json:"news_id,omitempty"`
	Recipients int       `json:"recipients"`
	Delivered  int       `json:"delivered"`
	Failures   []Failure `json:"failures,omitempty"`
}

func (r *Report) fail(chatID int64, err error) {
	r.Failures = append(r.Failures, Failure{ChatID: chatID, Error: err.Error()})
}

// Service delivers news to every subscribed chat. One recipient's failure never
// stops delivery to the others.
type Service struct {
	sessions services.SessionServicer
	news     services.NewsServicer
	ingester Ingester
	sender   messenger.Sender
	timeout  time.Duration
	now      func() time.Time
}

// New creates a delivery Service. sender may be nil when the news bot is
// disabled; ingester may be nil to skip the refresh before a digest.
func New(sessions services.SessionServicer, news services.NewsServicer, ingester Ingester, sender messenger.Sender, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		sessions: sessions,
		news:     news,
		ingester: ingester,
		sender:   sender,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Breaking flags an article as breaking and pushes it to every recipient in
// the recipient's language.
func (s *Service) Breaking(ctx context.Context, newsID string) (*Report, error) {
	news, err := s.news.MarkBreaking(newsID)
	if err != nil {
		return nil, err
	}
	if s.sender == nil {
		return nil, ErrNoSender
	}

	recipients, err := s.sessions.Recipients()
	if err != nil {
		return nil, err
	}

	log := logger.Get().With("news_id", news.ID)
	report := &Report{NewsID: news.ID, Recipients: len(recipients)}
	for _, session := range recipients {
		if ctx.Err() != nil {
			report.fail(session.ChatID, ctx.Err())
			continue
		}
		msg := Render(session.ChatID, news, session.User.Country)
		msg.Text = "🔴 *BREAKING NEWS* 🔴\n\n" + msg.Text
		if err := s.send(ctx, msg); err != nil {
			log.Warnw("breaking push failed", "chat_id", session.ChatID, "error", err)
			report.fail(session.ChatID, err)
			continue
		}
		report.Delivered++
	}

	log.Infow("breaking push finished",
		"recipients", report.Recipients,
		"delivered", report.Delivered,
		"failed", len(report.Failures),
	)
	return report, nil
}

// Digest refreshes the store and sends every recipient a greeting and the
// latest articles of their country.
func (s *Service) Digest(ctx context.Context) (*Report, error) {
	if s.sender == nil {
		return nil, ErrNoSender
	}
	log := logger.Get()

	if s.ingester != nil {
		if _, err := s.ingester.RunAll(ctx); err != nil {
			log.Errorw("refresh before digest failed", "error", err)
		}
	}

	recipients, err := s.sessions.Recipients()
	if err != nil {
		return nil, err
	}

	latest := make(map[string][]models.News)
	report := &Report{Recipients: len(recipients)}
	for _, session := range recipients {
		if ctx.Err() != nil {
			report.fail(session.ChatID, ctx.Err())
			continue
		}

		user := session.User
		countryID := ""
		if user.Country != nil {
			countryID = user.Country.ID
		}
		articles, ok := latest[countryID]
		if !ok {
			articles, err = s.news.Latest(services.NewsFilter{CountryID: countryID}, DigestSize)
			if err != nil {
				log.Errorw("failed to load digest articles", "country_id", countryID, "error", err)
				report.fail(session.ChatID, err)
				continue
			}
			latest[countryID] = articles
		}

		if err := s.sendDigest(ctx, session.ChatID, user, articles); err != nil {
			log.Warnw("digest delivery failed", "chat_id", session.ChatID, "error", err)
			report.fail(session.ChatID, err)
			continue
		}
		report.Delivered++
	}

	log.Infow("daily digest finished",
		"recipients", report.Recipients,
		"delivered", report.Delivered,
		"failed", len(report.Failures),
	)
	return report, nil
}

func (s *Service) sendDigest(ctx context.Context, chatID int64, user *models.User, articles []models.News) error {
	greeting := Greeting(LocalHour(s.now(), user.Country))
	header := messenger.Message{
		ChatID:   chatID,
		Text:     fmt.Sprintf("📰 *%s, %s!*\n\nHere's your daily news digest from JBC News:", greeting, messenger.EscapeMarkdown(user.Username)),
		Markdown: true,
	}
	if err := s.send(ctx, header); err != nil {
		return err
	}
	for i := range articles {
		if err := s.send(ctx, Render(chatID, &articles[i], user.Country)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) send(ctx context.Context, msg messenger.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.sender.Send(ctx, msg)
	return err
}
