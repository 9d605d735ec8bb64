package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jbcnews/internal/logger"
)

// Ranked tries providers in order and keeps the first non-empty result.
type Ranked struct {
	providers []Provider
	timeout   time.Duration
}

// NewRanked creates a Ranked fallback. Each provider call gets its own timeout.
func NewRanked(timeout time.Duration, providers ...Provider) *Ranked {
	return &Ranked{providers: providers, timeout: timeout}
}

// Providers returns the provider names in rank order.
func (r *Ranked) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Fetch returns the name and articles of the first provider that returned any.
// An error is returned only when no provider produced articles and at least
// one of them failed.
func (r *Ranked) Fetch(ctx context.Context, countryCode string) (string, []Article, error) {
	log := logger.Get()
	var errs []error
	for _, p := range r.providers {
		articles, err := r.call(ctx, p, countryCode)
		if err != nil {
			log.Warnw("news source failed", "provider", p.Name(), "country", countryCode, "error", err)
			errs = append(errs, err)
			continue
		}
		if len(articles) > 0 {
			return p.Name(), articles, nil
		}
		log.Infow("news source returned nothing", "provider", p.Name(), "country", countryCode)
	}
	if ctx.Err() != nil {
		return "", nil, ctx.Err()
	}
	return "", nil, errors.Join(errs...)
}

// call runs one provider under a timeout and converts a panic into an error.
func (r *Ranked) call(ctx context.Context, p Provider, countryCode string) (articles []Article, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			articles = nil
			err = &FetchError{Provider: p.Name(), Country: countryCode, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	return p.Fetch(ctx, countryCode)
}
