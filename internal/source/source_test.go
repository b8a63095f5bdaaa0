package source_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/adapter/cache"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/source"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDomain = "weather"
	testKey    = "weather:test"
)

var errUnreachable = errors.New("connection refused")

// --- stubs ---

type stubLoader struct {
	value string
	err   error
	calls atomic.Int32
}

func (s *stubLoader) Load(_ context.Context) (string, error) {
	s.calls.Add(1)
	return s.value, s.err
}

type brokenCache struct {
	readErr  error
	writeErr error
}

func (b brokenCache) Read(context.Context, string) (string, bool, error) {
	return "", false, b.readErr
}

func (b brokenCache) Write(context.Context, string, string) error {
	return b.writeErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func newFetcher(cfg source.Config[string], metrics *observability.Metrics) *source.Fetcher[string] {
	if cfg.Domain == "" {
		cfg.Domain = testDomain
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = testKey
	}
	return source.New(cfg, discardLogger(), metrics)
}

// --- tests ---

func TestFetch_LiveSuccessWritesCache(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetricsForTesting()
	store := cache.NewMemory[string](4)
	fallback := &stubLoader{value: "static"}

	f := newFetcher(source.Config[string]{
		Primary:  &stubLoader{value: "live"},
		Fallback: fallback,
		Cache:    store,
	}, metrics)

	out, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "live", out.Value)
	assert.Equal(t, domain.OriginLive, out.Origin)
	assert.Equal(t, int32(0), fallback.calls.Load(), "fallback must not be consulted")

	cached, ok, err := store.Read(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "live", cached)
	assert.Equal(t, 1.0, counterValue(t, metrics.FetchOutcomes.WithLabelValues(testDomain, "live")))
}

func TestFetch_PrimaryFailsCacheHit(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetricsForTesting()
	store := cache.NewMemory[string](4)
	require.NoError(t, store.Write(ctx, testKey, "yesterday"))

	f := newFetcher(source.Config[string]{
		Primary:  &stubLoader{err: errUnreachable},
		Fallback: &stubLoader{value: "static"},
		Cache:    store,
	}, metrics)

	out, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "yesterday", out.Value)
	assert.Equal(t, domain.OriginCache, out.Origin)
	assert.Equal(t, 1.0, counterValue(t, metrics.FetchFailures.WithLabelValues(testDomain, source.StagePrimary)))
}

func TestFetch_FailedPrimaryDoesNotOverwriteCache(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory[string](4)
	require.NoError(t, store.Write(ctx, testKey, "good"))

	f := newFetcher(source.Config[string]{
		Primary:  &stubLoader{err: errUnreachable},
		Fallback: &stubLoader{value: "static"},
		Cache:    store,
	}, observability.NewMetricsForTesting())

	_, err := f.Fetch(ctx)
	require.NoError(t, err)

	v, _, _ := store.Read(ctx, testKey)
	assert.Equal(t, "good", v)
}

func TestFetch_CacheMissUsesStaticFallback(t *testing.T) {
	f := newFetcher(source.Config[string]{
		Primary:  &stubLoader{err: errUnreachable},
		Fallback: &stubLoader{value: "static"},
		Cache:    cache.NewMemory[string](4),
	}, observability.NewMetricsForTesting())

	out, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", out.Value)
	assert.Equal(t, domain.OriginStaticFallback, out.Origin)
}

func TestFetch_NilCacheGoesStraightToFallback(t *testing.T) {
	f := newFetcher(source.Config[string]{
		Domain:   "tide",
		Primary:  &stubLoader{err: errUnreachable},
		Fallback: &stubLoader{value: "static"},
	}, observability.NewMetricsForTesting())

	out, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OriginStaticFallback, out.Origin)
	assert.Equal(t, "tide", f.Domain())
}

func TestFetch_CacheErrorsAreNotFatal(t *testing.T) {
	metrics := observability.NewMetricsForTesting()

	t.Run("read error falls through to fallback", func(t *testing.T) {
		f := newFetcher(source.Config[string]{
			Primary:  &stubLoader{err: errUnreachable},
			Fallback: &stubLoader{value: "static"},
			Cache:    brokenCache{readErr: errors.New("disk gone")},
		}, metrics)

		out, err := f.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.OriginStaticFallback, out.Origin)
		assert.Equal(t, 1.0, counterValue(t, metrics.FetchFailures.WithLabelValues(testDomain, source.StageCacheRead)))
	})

	t.Run("write error keeps live value", func(t *testing.T) {
		f := newFetcher(source.Config[string]{
			Primary:  &stubLoader{value: "live"},
			Fallback: &stubLoader{value: "static"},
			Cache:    brokenCache{writeErr: errors.New("read-only fs")},
		}, metrics)

		out, err := f.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.OriginLive, out.Origin)
		assert.Equal(t, 1.0, counterValue(t, metrics.FetchFailures.WithLabelValues(testDomain, source.StageCacheWrite)))
	})
}

func TestFetch_Exhausted(t *testing.T) {
	primaryErr := &domain.NetworkError{Source: "open-meteo", StatusCode: 503, Err: errors.New("unavailable")}
	fallbackErr := &domain.MalformedPayloadError{Source: "static", Field: "hourly", Err: errors.New("missing")}

	f := newFetcher(source.Config[string]{
		Primary:  &stubLoader{err: primaryErr},
		Fallback: &stubLoader{err: fallbackErr},
		Cache:    cache.NewMemory[string](4),
	}, observability.NewMetricsForTesting())

	out, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.OriginUnavailable, out.Origin)

	var exhausted *domain.ExhaustedFallbackError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, testDomain, exhausted.Domain)
	assert.Same(t, primaryErr, exhausted.Primary)

	var mpe *domain.MalformedPayloadError
	assert.ErrorAs(t, err, &mpe, "fallback failure stays inspectable")
}

func TestFetch_MissingFallbackIsExhausted(t *testing.T) {
	f := newFetcher(source.Config[string]{
		Primary: &stubLoader{err: errUnreachable},
	}, observability.NewMetricsForTesting())

	_, err := f.Fetch(context.Background())
	var exhausted *domain.ExhaustedFallbackError
	assert.ErrorAs(t, err, &exhausted)
}

func TestFetch_PrimaryTimeoutIsNetworkError(t *testing.T) {
	slow := source.LoaderFunc[string](func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	f := newFetcher(source.Config[string]{
		Primary:  slow,
		Fallback: &stubLoader{err: errors.New("no snapshot")},
		Timeout:  20 * time.Millisecond,
	}, observability.NewMetricsForTesting())

	start := time.Now()
	_, err := f.Fetch(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)

	var ne *domain.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
