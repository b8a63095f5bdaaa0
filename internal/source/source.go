// Package source resolves one data domain through its primary source, the
// last cached value, and a bundled static fallback, in that order.
package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Failure stages reported in fetch_failures_total.
const (
	StagePrimary    = "primary"
	StageCacheRead  = "cache_read"
	StageCacheWrite = "cache_write"
	StageFallback   = "fallback"
)

var errNoFallback = errors.New("no fallback configured")

// Loader produces a value from one source.
type Loader[T any] interface {
	Load(ctx context.Context) (T, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc[T any] func(ctx context.Context) (T, error)

func (f LoaderFunc[T]) Load(ctx context.Context) (T, error) { return f(ctx) }

// Cache stores the last successful primary value. A miss is reported as
// (zero, false, nil).
type Cache[T any] interface {
	Read(ctx context.Context, key string) (T, bool, error)
	Write(ctx context.Context, key string, value T) error
}

// Config describes one data domain. Cache may be nil, in which case a primary
// failure goes straight to the fallback. Timeout bounds the primary fetch; zero
// means no bound beyond the caller's context.
type Config[T any] struct {
	Domain   string
	Primary  Loader[T]
	Fallback Loader[T]
	Cache    Cache[T]
	CacheKey string
	Timeout  time.Duration
}

// Fetcher implements the primary, cache, fallback resolution for one domain.
type Fetcher[T any] struct {
	cfg     Config[T]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Fetcher.
func New[T any](cfg Config[T], logger *slog.Logger, metrics *observability.Metrics) *Fetcher[T] {
	return &Fetcher[T]{
		cfg:     cfg,
		logger:  logger.With("domain", cfg.Domain),
		metrics: metrics,
	}
}

// Domain returns the data domain name.
func (f *Fetcher[T]) Domain() string { return f.cfg.Domain }

// Fetch returns the primary value when it succeeds, caching it. Otherwise it
// returns the cached value, and otherwise the static fallback. When the
// fallback also fails the outcome is tagged unavailable and the error is an
// *domain.ExhaustedFallbackError carrying both failures.
func (f *Fetcher[T]) Fetch(ctx context.Context) (domain.FetchOutcome[T], error) {
	value, primaryErr := f.loadPrimary(ctx)
	if primaryErr == nil {
		f.store(ctx, value)
		return f.outcome(value, domain.OriginLive), nil
	}

	f.metrics.FetchFailures.WithLabelValues(f.cfg.Domain, StagePrimary).Inc()
	f.logger.Warn("primary failed, trying cache", "error", primaryErr)

	if cached, ok := f.lookup(ctx); ok {
		f.logger.Warn("using cached value", "origin", domain.OriginCache)
		return f.outcome(cached, domain.OriginCache), nil
	}

	fallback, fallbackErr := f.loadFallback(ctx)
	if fallbackErr == nil {
		f.logger.Warn("using static fallback", "origin", domain.OriginStaticFallback)
		return f.outcome(fallback, domain.OriginStaticFallback), nil
	}

	f.metrics.FetchFailures.WithLabelValues(f.cfg.Domain, StageFallback).Inc()
	f.logger.Error("all sources failed", "primary_error", primaryErr, "fallback_error", fallbackErr)

	var zero T
	return f.outcome(zero, domain.OriginUnavailable), &domain.ExhaustedFallbackError{
		Domain:   f.cfg.Domain,
		Primary:  primaryErr,
		Fallback: fallbackErr,
	}
}

func (f *Fetcher[T]) loadPrimary(ctx context.Context) (T, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	v, err := f.cfg.Primary.Load(ctx)
	if err == nil {
		return v, nil
	}

	// A timeout is a network failure like any other.
	var ne *domain.NetworkError
	var mpe *domain.MalformedPayloadError
	if !errors.As(err, &ne) && !errors.As(err, &mpe) {
		err = &domain.NetworkError{Source: f.cfg.Domain, Err: err}
	}
	return v, err
}

func (f *Fetcher[T]) loadFallback(ctx context.Context) (T, error) {
	if f.cfg.Fallback == nil {
		var zero T
		return zero, errNoFallback
	}
	return f.cfg.Fallback.Load(ctx)
}

func (f *Fetcher[T]) store(ctx context.Context, value T) {
	if f.cfg.Cache == nil {
		return
	}
	if err := f.cfg.Cache.Write(ctx, f.cfg.CacheKey, value); err != nil {
		f.metrics.FetchFailures.WithLabelValues(f.cfg.Domain, StageCacheWrite).Inc()
		f.logger.Warn("cache write failed", "error", err)
	}
}

func (f *Fetcher[T]) lookup(ctx context.Context) (T, bool) {
	var zero T
	if f.cfg.Cache == nil {
		return zero, false
	}
	v, ok, err := f.cfg.Cache.Read(ctx, f.cfg.CacheKey)
	if err != nil {
		f.metrics.FetchFailures.WithLabelValues(f.cfg.Domain, StageCacheRead).Inc()
		f.logger.Warn("cache read failed", "error", err)
		return zero, false
	}
	return v, ok
}

func (f *Fetcher[T]) outcome(value T, origin domain.Origin) domain.FetchOutcome[T] {
	f.metrics.FetchOutcomes.WithLabelValues(f.cfg.Domain, string(origin)).Inc()
	return domain.FetchOutcome[T]{Value: value, Origin: origin}
}
