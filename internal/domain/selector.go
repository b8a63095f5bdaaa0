package domain

import "time"

// SelectCurrent returns the index of the first timestamp, in sequence order,
// that is not before now. The scan is linear so unsorted or duplicated
// timestamps resolve to the earliest qualifying position. ok is false when
// every timestamp is in the past.
func SelectCurrent(times []time.Time, now time.Time) (index int, ok bool) {
	for i, t := range times {
		if !t.Before(now) {
			return i, true
		}
	}
	return -1, false
}

// CurrentFrom selects the sample representing now. When the series only
// covers the past, every field is unknown.
func CurrentFrom(series WeatherSeries, now time.Time) CurrentWeather {
	i, ok := SelectCurrent(series.Times, now)
	if !ok {
		return UnknownWeather()
	}
	return series.At(i)
}

// PrecipitationSummary totals precipitation around the reference instant.
type PrecipitationSummary struct {
	Past24h Measurement `json:"past_24h"` // mm in [now-24h, now)
	Next24h Measurement `json:"next_24h"` // mm in [now, now+24h)
}

// SummarizePrecipitation sums known precipitation in the 24 hours before and
// after now. A window with no known samples is unknown rather than zero.
func SummarizePrecipitation(series WeatherSeries, now time.Time) PrecipitationSummary {
	var summary PrecipitationSummary
	pastStart := now.Add(-24 * time.Hour)
	nextEnd := now.Add(24 * time.Hour)

	for i, t := range series.Times {
		m := measurementAt(series.Precipitation, i)
		if !m.Known {
			continue
		}
		switch {
		case !t.Before(pastStart) && t.Before(now):
			summary.Past24h = Measured(summary.Past24h.Value + m.Value)
		case !t.Before(now) && t.Before(nextEnd):
			summary.Next24h = Measured(summary.Next24h.Value + m.Value)
		}
	}
	return summary
}
