package domain

import (
	"strings"
	"time"
)

// Origin tags where a fetched value came from.
type Origin string

const (
	OriginLive           Origin = "live"
	OriginCache          Origin = "cache"
	OriginStaticFallback Origin = "static_fallback"
	// OriginUnavailable marks a data domain whose sources were all exhausted.
	OriginUnavailable Origin = "unavailable"
)

// FetchOutcome is a value together with the path that produced it.
type FetchOutcome[T any] struct {
	Value  T
	Origin Origin
}

// Status notes appended when a data domain is served from a fallback path.
const (
	NoteCachedWeather = "cached data"
	NoteStaticWeather = "static data"
	NoteCachedTide    = "cached tide data"
	NoteStaticTide    = "static tide data"
)

// WeatherNote returns the status note for a weather origin, or "" for live data.
func WeatherNote(o Origin) string {
	switch o {
	case OriginCache:
		return NoteCachedWeather
	case OriginStaticFallback:
		return NoteStaticWeather
	default:
		return ""
	}
}

// TideNote returns the status note for a tide origin, or "" for live data.
func TideNote(o Origin) string {
	switch o {
	case OriginCache:
		return NoteCachedTide
	case OriginStaticFallback:
		return NoteStaticTide
	default:
		return ""
	}
}

// UpdateResult is everything the renderer needs from one pipeline run. It is
// built once per run and never modified afterwards.
type UpdateResult struct {
	Current       CurrentWeather       `json:"current"`
	Precipitation PrecipitationSummary `json:"precipitation"`
	Tide          TideSnapshot         `json:"tide"`
	Risk          RiskAssessment       `json:"risk"`
	WeatherOrigin Origin               `json:"weather_origin"`
	TideOrigin    Origin               `json:"tide_origin"`
	Notes         []string             `json:"notes"`
	WeatherError  string               `json:"weather_error,omitempty"`
	TideError     string               `json:"tide_error,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`

	// WeatherFailure and TideFailure keep the typed errors behind
	// WeatherError and TideError for errors.As. They are not serialized.
	WeatherFailure error `json:"-"`
	TideFailure    error `json:"-"`
}

// StatusNote joins the fallback notes for display, e.g. "(cached data) (static tide data)".
func (r UpdateResult) StatusNote() string {
	parts := make([]string, 0, len(r.Notes))
	for _, n := range r.Notes {
		parts = append(parts, "("+n+")")
	}
	return strings.Join(parts, " ")
}

// Degraded reports whether any data domain was not served live.
func (r UpdateResult) Degraded() bool {
	return r.WeatherOrigin != OriginLive || r.TideOrigin != OriginLive
}

// Invocation identifies one pipeline trigger. Sequence increases monotonically
// within a process; sinks use it to discard results that arrive out of order.
type Invocation struct {
	Sequence uint64 `json:"sequence"`
	RunID    string `json:"run_id"`
}
