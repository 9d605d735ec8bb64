// Package app wires the services, bots, scheduler and HTTP API of JBC News
// and runs them as one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"jbcnews/internal/chatbot"
	"jbcnews/internal/config"
	"jbcnews/internal/delivery"
	"jbcnews/internal/ingest"
	"jbcnews/internal/lock"
	"jbcnews/internal/logger"
	"jbcnews/internal/messenger"
	"jbcnews/internal/middleware"
	"jbcnews/internal/scheduler"
	"jbcnews/internal/scraper"
	"jbcnews/internal/services"
	"jbcnews/internal/sources"
	"jbcnews/internal/telegram"
	"jbcnews/internal/translate"
)

const shutdownTimeout = 10 * time.Second

// NewServices creates every data service on db.
func NewServices(db *gorm.DB) Services {
	return Services{
		Users:      services.NewUserService(db),
		Staff:      services.NewStaffService(db),
		Countries:  services.NewCountryService(db),
		Categories: services.NewCategoryService(db),
		News:       services.NewNewsService(db),
		Tickets:    services.NewTicketService(db),
		Sessions:   services.NewSessionService(db),
		Stats:      services.NewStatsService(db),
		Audit:      services.NewAuditService(db),
	}
}

// NewFetcher builds the ranked source list: NewsAPI, then GNews, then RSS.
// A source without a key or feed file is left out.
func NewFetcher(cfg *config.Config) (*sources.Ranked, error) {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	log := logger.Get()

	var providers []sources.Provider
	if cfg.NewsAPIKey != "" {
		providers = append(providers, sources.NewNewsAPIProvider(client, cfg.NewsAPIURL, cfg.NewsAPIKey))
	}
	if cfg.GNewsAPIKey != "" {
		providers = append(providers, sources.NewGNewsProvider(client, cfg.GNewsAPIURL, cfg.GNewsAPIKey))
	}
	if cfg.RSSFeedsPath != "" {
		feeds, err := sources.LoadFeeds(cfg.RSSFeedsPath)
		if err != nil {
			return nil, fmt.Errorf("loading rss feeds: %w", err)
		}
		providers = append(providers, sources.NewRSSProvider(client, feeds))
	}

	ranked := sources.NewRanked(cfg.HTTPTimeout, providers...)
	if len(providers) == 0 {
		log.Warnw("no news sources configured, ingestion will find nothing")
	} else {
		log.Infow("news sources configured", "providers", ranked.Providers())
	}
	return ranked, nil
}

// App is the running JBC News process.
type App struct {
	cfg      *config.Config
	services Services
	pipeline *ingest.Pipeline
	delivery *delivery.Service
	bots     []*telegram.Client
	router   http.Handler
	log      *zap.SugaredLogger
}

// New wires the whole application. Bots without a token are skipped.
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	svc := NewServices(db)
	log := logger.Named("app")

	fetcher, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}
	pipeline := ingest.New(db, ingest.Deps{
		News:        svc.News,
		Categories:  svc.Categories,
		Countries:   svc.Countries,
		Fetcher:     fetcher,
		Extractor:   scraper.New(cfg.HTTPTimeout),
		Translator:  translate.NewClient(cfg.TranslateURL, cfg.HTTPTimeout),
		CallTimeout: cfg.HTTPTimeout,
	})

	deps := chatbot.Deps{
		Sessions:   svc.Sessions,
		Users:      svc.Users,
		Countries:  svc.Countries,
		Categories: svc.Categories,
		News:       svc.News,
		Tickets:    svc.Tickets,
		Stats:      svc.Stats,
		Audit:      svc.Audit,
		Locks:      lock.NewKeyed[int64](),
	}

	clients := map[string]*telegram.Client{}
	for name, token := range map[string]string{
		chatbot.RegistrationBotName: cfg.Bots.Registration,
		chatbot.SupportBotName:      cfg.Bots.Support,
		chatbot.NewsBotName:         cfg.Bots.News,
		chatbot.StaffBotName:        cfg.Bots.Staff,
	} {
		client, err := telegram.New(name, token, cfg.TelegramTimeout)
		if errors.Is(err, telegram.ErrNoToken) {
			log.Warnw("bot disabled, no token", "bot", name)
			continue
		}
		if err != nil {
			return nil, err
		}
		clients[name] = client
	}

	// Pushed news goes out through the news bot, so delivery has no sender
	// when that bot is off.
	var sender messenger.Sender
	if client, ok := clients[chatbot.NewsBotName]; ok {
		sender = client
	}
	deliverer := delivery.New(svc.Sessions, svc.News, pipeline, sender, cfg.TelegramTimeout)

	a := &App{
		cfg:      cfg,
		services: svc,
		pipeline: pipeline,
		delivery: deliverer,
		log:      log,
	}
	for name, client := range clients {
		var bot chatbot.Bot
		switch name {
		case chatbot.RegistrationBotName:
			bot = chatbot.NewRegistrationBot(deps, client)
		case chatbot.SupportBotName:
			bot = chatbot.NewSupportBot(deps, client)
		case chatbot.NewsBotName:
			bot = chatbot.NewNewsBot(deps, client, chatbot.DefaultRegistrationURL)
		case chatbot.StaffBotName:
			bot = chatbot.NewStaffBot(deps, client, deliverer, pipeline)
		}
		client.Register(bot.Routes())
		a.bots = append(a.bots, client)
	}

	a.router = NewRouter(RouterDeps{
		Services:       svc,
		Auth:           middleware.NewJWTAuth(cfg.JWTSecret, cfg.JWTExpirationDur),
		Pusher:         deliverer,
		Ingester:       pipeline,
		PipelineAPIKey: cfg.PipelineAPIKey,
		CORSOrigins:    cfg.CORSOrigins,
	})
	return a, nil
}

// Run serves the HTTP API, polls every enabled bot and runs the scheduler
// until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	sched, err := scheduler.New(scheduler.Config{
		IngestInterval: a.cfg.IngestInterval,
		DigestCron:     a.cfg.DigestCron,
	}, a.pipeline, a.delivery)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		a.log.Infow("starting http server", "port", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	for _, client := range a.bots {
		g.Go(func() error {
			client.Start(ctx)
			return nil
		})
	}

	g.Go(func() error {
		return sched.Run(ctx)
	})

	a.log.Infow("jbc news started", "bots", len(a.bots))
	return g.Wait()
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler { return a.router }
