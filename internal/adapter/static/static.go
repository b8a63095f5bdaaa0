// Package static serves the bundled weather and tide snapshots used when both
// the live source and the cache are unavailable.
package static

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/source"
)

// SourceName identifies the bundled snapshots in errors and logs.
const SourceName = "static"

const (
	weatherFile = "data/weather.json"
	tideFile    = "data/tides.json"
)

//go:embed data/*.json
var files embed.FS

// Weather parses the bundled forecast snapshot.
func Weather(loc *time.Location) (domain.WeatherSeries, error) {
	data, err := files.ReadFile(weatherFile)
	if err != nil {
		return domain.WeatherSeries{}, fmt.Errorf("read %s: %w", weatherFile, err)
	}
	return domain.ParseWeatherSeries(SourceName, data, loc)
}

// Tides parses the bundled tide snapshot.
func Tides() (domain.TideSnapshot, error) {
	data, err := files.ReadFile(tideFile)
	if err != nil {
		return domain.TideSnapshot{}, fmt.Errorf("read %s: %w", tideFile, err)
	}
	return domain.ParseTideSnapshot(SourceName, data)
}

// WeatherLoader adapts Weather to a source.Loader.
func WeatherLoader(loc *time.Location) source.LoaderFunc[domain.WeatherSeries] {
	return func(context.Context) (domain.WeatherSeries, error) {
		return Weather(loc)
	}
}

// TideLoader adapts Tides to a source.Loader.
func TideLoader() source.LoaderFunc[domain.TideSnapshot] {
	return func(context.Context) (domain.TideSnapshot, error) {
		return Tides()
	}
}
