package main

import (
	"log/slog"

	"github.com/couchcryptid/flood-risk-service/internal/adapter/cache"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/static"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/tides"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/source"
)

const (
	weatherDomain = "weather"
	tideDomain    = "tide"

	memoryCacheEntries = 8
)

// fetchers holds the two data domains and anything that must be closed on exit.
type fetchers struct {
	weather *source.Fetcher[domain.WeatherSeries]
	tide    *source.Fetcher[domain.TideSnapshot]
	closers []func() error
}

func (f *fetchers) close(logger *slog.Logger) {
	for _, c := range f.closers {
		if err := c(); err != nil {
			logger.Error("close error", "error", err)
		}
	}
}

func buildFetchers(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*fetchers, error) {
	f := &fetchers{}

	client := openmeteo.NewClient(openmeteo.Options{
		BaseURL:            cfg.WeatherAPIURL,
		Latitude:           cfg.Latitude,
		Longitude:          cfg.Longitude,
		Timezone:           cfg.Timezone,
		Location:           cfg.Location,
		Timeout:            cfg.WeatherTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, logger, metrics)

	var weatherCache source.Cache[domain.WeatherSeries]
	if cfg.CacheDir != "" {
		fc, err := cache.NewFile[domain.WeatherSeries](cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, fc.Close)
		weatherCache = fc
		logger.Info("weather cache on disk", "dir", cfg.CacheDir)
	} else {
		weatherCache = cache.NewMemory[domain.WeatherSeries](memoryCacheEntries)
		logger.Info("weather cache in memory")
	}

	f.weather = source.New(source.Config[domain.WeatherSeries]{
		Domain:   weatherDomain,
		Primary:  client,
		Fallback: static.WeatherLoader(cfg.Location),
		Cache:    weatherCache,
		CacheKey: client.CacheKey(),
		Timeout:  cfg.WeatherTimeout,
	}, logger, metrics)

	f.tide = source.New(source.Config[domain.TideSnapshot]{
		Domain:   tideDomain,
		Primary:  tides.NewSource(cfg.TideSource, cfg.TideTimeout, logger),
		Fallback: static.TideLoader(),
		Timeout:  cfg.TideTimeout,
	}, logger, metrics)

	return f, nil
}
