package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"jbcnews/internal/delivery"
	"jbcnews/internal/ingest"
)

type countingRefresher struct {
	runs atomic.Int32
}

func (r *countingRefresher) RunAll(context.Context) ([]ingest.RunResult, error) {
	r.runs.Add(1)
	return []ingest.RunResult{{Country: "IN", Created: 2}}, nil
}

type stubDigester struct{}

func (stubDigester) Digest(context.Context) (*delivery.Report, error) {
	return &delivery.Report{}, nil
}

func TestRunRefreshesImmediately(t *testing.T) {
	refresher := &countingRefresher{}
	s, err := New(Config{IngestInterval: time.Hour, DigestCron: "0 8 * * *"}, refresher, stubDigester{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for refresher.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if refresher.runs.Load() != 1 {
		t.Errorf("expected one refresh at startup, got %d", refresher.runs.Load())
	}
}

func TestRunRejectsBadCron(t *testing.T) {
	s, err := New(Config{IngestInterval: time.Hour, DigestCron: "not a cron"}, &countingRefresher{}, stubDigester{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Run(context.Background()); err == nil {
		t.Error("expected an error for an invalid cron expression")
	}
}

func TestRunWithoutDigester(t *testing.T) {
	s, err := New(Config{IngestInterval: time.Hour, DigestCron: "not a cron"}, &countingRefresher{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Errorf("expected the digest job to be skipped, got %v", err)
	}
}
