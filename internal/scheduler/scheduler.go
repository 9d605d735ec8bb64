// Package scheduler runs the periodic news refresh and the daily digest.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"jbcnews/internal/delivery"
	"jbcnews/internal/ingest"
	"jbcnews/internal/logger"
)

// Job names.
const (
	JobNewsRefresh = "news_refresh"
	JobDailyDigest = "daily_digest"
)

// Refresher ingests news for every country.
type Refresher interface {
	RunAll(ctx context.Context) ([]ingest.RunResult, error)
}

// Digester sends the daily digest.
type Digester interface {
	Digest(ctx context.Context) (*delivery.Report, error)
}

// Config holds the job schedules.
type Config struct {
	IngestInterval time.Duration
	DigestCron     string
	// Location is the timezone of DigestCron. Nil means UTC.
	Location *time.Location
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	cron      gocron.Scheduler
	cfg       Config
	refresher Refresher
	digester  Digester
	log       *zap.SugaredLogger
}

// New creates a scheduler. A nil digester leaves the digest job out.
func New(cfg Config, refresher Refresher, digester Digester) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cron, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Location),
		gocron.WithLogger(logger.NewGocronLogger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		cron:      cron,
		cfg:       cfg,
		refresher: refresher,
		digester:  digester,
		log:       logger.Named("scheduler"),
	}, nil
}

// Run schedules the jobs and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.schedule(ctx); err != nil {
		_ = s.cron.Shutdown()
		return err
	}

	s.cron.Start()
	s.log.Infow("scheduler started", "ingest_interval", s.cfg.IngestInterval, "digest_cron", s.cfg.DigestCron)

	<-ctx.Done()
	s.log.Infow("stopping scheduler")
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) schedule(ctx context.Context) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.IngestInterval),
		gocron.NewTask(func() { s.run(ctx, JobNewsRefresh, s.refresh) }),
		gocron.WithName(JobNewsRefresh),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobNewsRefresh, err)
	}

	if s.digester == nil {
		s.log.Infow("daily digest disabled")
		return nil
	}
	_, err = s.cron.NewJob(
		gocron.CronJob(s.cfg.DigestCron, false),
		gocron.NewTask(func() { s.run(ctx, JobDailyDigest, s.digest) }),
		gocron.WithName(JobDailyDigest),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", JobDailyDigest, err)
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, job func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.log.Infow("running scheduled job", "job", name)
	if err := job(ctx); err != nil {
		s.log.Errorw("scheduled job failed", "job", name, "error", err, "duration", time.Since(start))
		return
	}
	s.log.Infow("finished scheduled job", "job", name, "duration", time.Since(start))
}

func (s *Scheduler) refresh(ctx context.Context) error {
	results, err := s.refresher.RunAll(ctx)
	if err != nil {
		return err
	}
	created := 0
	for _, r := range results {
		created += r.Created
	}
	s.log.Infow("news refreshed", "countries", len(results), "created", created)
	return nil
}

func (s *Scheduler) digest(ctx context.Context) error {
	report, err := s.digester.Digest(ctx)
	if err != nil {
		return err
	}
	s.log.Infow("daily digest sent", "recipients", report.Recipients, "delivered", report.Delivered, "failed", len(report.Failures))
	return nil
}
