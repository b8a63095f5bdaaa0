package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// openMeteoTimeLayout is the local timestamp format used by Open-Meteo when a
// timezone is requested.
const openMeteoTimeLayout = "2006-01-02T15:04"

// WeatherSeries is an hourly series of samples. The four measurement slices
// are index-aligned with Times; a slice may be shorter than Times, in which
// case the missing positions are unknown.
type WeatherSeries struct {
	Times         []time.Time   `json:"times"`
	Temperature   []Measurement `json:"temperature"`
	Precipitation []Measurement `json:"precipitation"`
	Humidity      []Measurement `json:"humidity"`
	WindSpeed     []Measurement `json:"wind_speed"`
}

// CurrentWeather is the sample selected as representing "now".
type CurrentWeather struct {
	Temperature   Measurement `json:"temperature"`   // °C
	Precipitation Measurement `json:"precipitation"` // mm
	Humidity      Measurement `json:"humidity"`      // %
	WindSpeed     Measurement `json:"wind_speed"`    // km/h
}

// UnknownWeather returns a CurrentWeather with every field unknown.
func UnknownWeather() CurrentWeather {
	return CurrentWeather{}
}

// Len returns the number of timestamps in the series.
func (s WeatherSeries) Len() int {
	return len(s.Times)
}

// At returns the sample at index i. Fields whose slice does not reach i are unknown.
func (s WeatherSeries) At(i int) CurrentWeather {
	if i < 0 || i >= len(s.Times) {
		return UnknownWeather()
	}
	return CurrentWeather{
		Temperature:   measurementAt(s.Temperature, i),
		Precipitation: measurementAt(s.Precipitation, i),
		Humidity:      measurementAt(s.Humidity, i),
		WindSpeed:     measurementAt(s.WindSpeed, i),
	}
}

func measurementAt(values []Measurement, i int) Measurement {
	if i < 0 || i >= len(values) {
		return Unknown()
	}
	return values[i]
}

// openMeteoResponse is the subset of the Open-Meteo forecast body we read.
type openMeteoResponse struct {
	UTCOffsetSeconds *int             `json:"utc_offset_seconds"`
	Hourly           *openMeteoHourly `json:"hourly"`
}

type openMeteoHourly struct {
	Time          []string      `json:"time"`
	Temperature   []Measurement `json:"temperature_2m"`
	Precipitation []Measurement `json:"precipitation"`
	Humidity      []Measurement `json:"relative_humidity_2m"`
	WindSpeed     []Measurement `json:"windspeed_10m"`
}

// ParseWeatherSeries decodes an Open-Meteo hourly forecast body. Timestamps are
// interpreted in the offset the payload declares, or in loc when it declares
// none. A body that is not JSON, has no "hourly" object, or has no "time" array
// yields a *MalformedPayloadError.
func ParseWeatherSeries(source string, data []byte, loc *time.Location) (WeatherSeries, error) {
	var resp openMeteoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return WeatherSeries{}, &MalformedPayloadError{Source: source, Err: err}
	}
	if resp.Hourly == nil {
		return WeatherSeries{}, &MalformedPayloadError{Source: source, Field: "hourly", Err: errors.New("missing")}
	}
	if resp.Hourly.Time == nil {
		return WeatherSeries{}, &MalformedPayloadError{Source: source, Field: "hourly.time", Err: errors.New("missing")}
	}

	if resp.UTCOffsetSeconds != nil {
		loc = time.FixedZone("", *resp.UTCOffsetSeconds)
	}
	if loc == nil {
		loc = time.UTC
	}

	times := make([]time.Time, len(resp.Hourly.Time))
	for i, raw := range resp.Hourly.Time {
		t, err := parseSeriesTime(raw, loc)
		if err != nil {
			return WeatherSeries{}, &MalformedPayloadError{
				Source: source,
				Field:  fmt.Sprintf("hourly.time[%d]", i),
				Err:    err,
			}
		}
		times[i] = t
	}

	return WeatherSeries{
		Times:         times,
		Temperature:   resp.Hourly.Temperature,
		Precipitation: resp.Hourly.Precipitation,
		Humidity:      resp.Hourly.Humidity,
		WindSpeed:     resp.Hourly.WindSpeed,
	}, nil
}

// parseSeriesTime accepts the Open-Meteo local layout and RFC 3339.
func parseSeriesTime(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(openMeteoTimeLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
