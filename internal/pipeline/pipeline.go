package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// ErrUpdateFailed is returned when neither weather nor tide data could be
// obtained from any source. The per-domain errors are joined beneath it.
var ErrUpdateFailed = errors.New("update failed: no data available")

// Update run results reported in updates_total.
const (
	resultComplete = "complete"
	resultDegraded = "degraded"
	resultFailed   = "failed"
)

// Update stages, logged under the "stage" key.
const (
	stageFetchingWeather = "fetching_weather"
	stageFetchingTide    = "fetching_tide"
	stageSelectingSample = "selecting_sample"
	stageScoring         = "scoring"
	stageDone            = "done"
	stageFailed          = "failed"
)

// DefaultSinkTimeout bounds a single sink delivery.
const DefaultSinkTimeout = 10 * time.Second

// Fetcher resolves one data domain, falling back as needed.
type Fetcher[T any] interface {
	Fetch(ctx context.Context) (domain.FetchOutcome[T], error)
}

// Sink receives the outcome of every accepted invocation.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, inv domain.Invocation, result domain.UpdateResult) error
	ReportFailure(ctx context.Context, inv domain.Invocation, err error)
}

// Pipeline orchestrates the fetch-select-score cycle and fans results out to sinks.
type Pipeline struct {
	weather   Fetcher[domain.WeatherSeries]
	tide      Fetcher[domain.TideSnapshot]
	sinks     []Sink
	sequencer *Sequencer
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	sinkTimeout time.Duration
}

// New creates a Pipeline. The time source is taken from domain.Clock at
// construction.
func New(
	weather Fetcher[domain.WeatherSeries],
	tide Fetcher[domain.TideSnapshot],
	logger *slog.Logger,
	metrics *observability.Metrics,
	sinks ...Sink,
) *Pipeline {
	return &Pipeline{
		weather:   weather,
		tide:      tide,
		sinks:     sinks,
		sequencer: NewSequencer(),
		clock:     domain.Clock(),
		logger:    logger,
		metrics:   metrics,

		sinkTimeout: DefaultSinkTimeout,
	}
}

// SetSinkTimeout bounds each sink delivery so a slow sink cannot hold back
// later invocations. Call it before Trigger or Run.
func (p *Pipeline) SetSinkTimeout(d time.Duration) {
	if d > 0 {
		p.sinkTimeout = d
	}
}

// CheckReadiness returns nil once at least one update has produced a result.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no update has completed yet")
	}
	return nil
}

// Update fetches both domains concurrently, selects the current sample, and
// scores the risk. Only the loss of both domains is an error.
func (p *Pipeline) Update(ctx context.Context) (domain.UpdateResult, error) {
	return p.update(ctx, p.logger)
}

func (p *Pipeline) update(ctx context.Context, logger *slog.Logger) (domain.UpdateResult, error) {
	start := p.clock.Now()

	var (
		weather    domain.FetchOutcome[domain.WeatherSeries]
		tide       domain.FetchOutcome[domain.TideSnapshot]
		weatherErr error
		tideErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	// Each domain records its own failure so the other is never cancelled.
	g.Go(func() error {
		logger.Debug("fetching weather", "stage", stageFetchingWeather)
		weather, weatherErr = p.weather.Fetch(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Debug("fetching tide", "stage", stageFetchingTide)
		tide, tideErr = p.tide.Fetch(gctx)
		return nil
	})
	_ = g.Wait()

	if weatherErr != nil && tideErr != nil {
		logger.Debug("no data available", "stage", stageFailed)
		p.metrics.Updates.WithLabelValues(resultFailed).Inc()
		return domain.UpdateResult{}, fmt.Errorf("%w: %w", ErrUpdateFailed, errors.Join(weatherErr, tideErr))
	}

	now := p.clock.Now()

	logger.Debug("selecting sample", "stage", stageSelectingSample, "weather_origin", weather.Origin, "samples", weather.Value.Len())
	current := domain.CurrentFrom(weather.Value, now)
	precipitation := domain.SummarizePrecipitation(weather.Value, now)

	logger.Debug("scoring", "stage", stageScoring, "tide_origin", tide.Origin)
	risk := domain.Score(current.Precipitation, tide.Value.CurrentHeight)

	result := domain.UpdateResult{
		Current:       current,
		Precipitation: precipitation,
		Tide:          tide.Value,
		Risk:          risk,
		WeatherOrigin: weather.Origin,
		TideOrigin:    tide.Origin,
		Notes:         notes(weather.Origin, tide.Origin),
		Timestamp:     now,
	}
	if weatherErr != nil {
		result.WeatherError = weatherErr.Error()
		result.WeatherFailure = weatherErr
	}
	if tideErr != nil {
		result.TideError = tideErr.Error()
		result.TideFailure = tideErr
	}

	if result.Degraded() {
		p.metrics.Updates.WithLabelValues(resultDegraded).Inc()
	} else {
		p.metrics.Updates.WithLabelValues(resultComplete).Inc()
	}
	p.metrics.UpdateDuration.Observe(p.clock.Since(start).Seconds())
	logger.Debug("update scored", "stage", stageDone, "risk_level", risk.Level)
	return result, nil
}

// Trigger runs one invocation and delivers its outcome to every sink, unless
// a newer invocation has already been delivered. The result is returned to
// the caller either way.
func (p *Pipeline) Trigger(ctx context.Context) (domain.Invocation, domain.UpdateResult, error) {
	inv := domain.Invocation{
		Sequence: p.sequencer.Next(),
		RunID:    uuid.NewString(),
	}
	logger := p.logger.With("sequence", inv.Sequence, "run_id", inv.RunID)

	result, err := p.update(ctx, logger)
	if err != nil {
		logger.Error("update failed", "error", err)
	} else {
		logger.Info("update completed",
			"risk_level", result.Risk.Level,
			"points", result.Risk.Points,
			"notes", result.StatusNote(),
		)
	}

	accepted := p.sequencer.Deliver(inv.Sequence, func() {
		if err != nil {
			p.reportFailure(ctx, inv, err)
			return
		}
		p.deliver(ctx, inv, result)
	})
	if !accepted {
		p.metrics.StaleResultsDropped.Inc()
		logger.Info("stale result dropped", "latest_delivered", p.sequencer.Delivered())
	}

	return inv, result, err
}

// Run triggers an update immediately and then once per interval until ctx is
// cancelled.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	p.logger.Info("refresh loop started", "interval", interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	_, _, _ = p.Trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			_, _, _ = p.Trigger(ctx)
		}
	}
}

func (p *Pipeline) deliver(ctx context.Context, inv domain.Invocation, result domain.UpdateResult) {
	p.ready.Store(true)
	p.metrics.RiskPoints.Set(float64(result.Risk.Points))
	for _, level := range []domain.RiskLevel{domain.RiskLow, domain.RiskModerate, domain.RiskHigh} {
		v := 0.0
		if level == result.Risk.Level {
			v = 1
		}
		p.metrics.RiskLevel.WithLabelValues(string(level)).Set(v)
	}

	for _, s := range p.sinks {
		if err := p.deliverTo(ctx, s, inv, result); err != nil {
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			p.logger.Warn("sink delivery failed", "sink", s.Name(), "sequence", inv.Sequence, "error", err)
		}
	}
}

func (p *Pipeline) deliverTo(ctx context.Context, s Sink, inv domain.Invocation, result domain.UpdateResult) error {
	ctx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
	defer cancel()
	return s.Deliver(ctx, inv, result)
}

func (p *Pipeline) reportFailure(ctx context.Context, inv domain.Invocation, err error) {
	for _, s := range p.sinks {
		sctx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
		s.ReportFailure(sctx, inv, err)
		cancel()
	}
}

func notes(weather, tide domain.Origin) []string {
	out := make([]string, 0, 2)
	if n := domain.WeatherNote(weather); n != "" {
		out = append(out, n)
	}
	if n := domain.TideNote(tide); n != "" {
		out = append(out, n)
	}
	return out
}
