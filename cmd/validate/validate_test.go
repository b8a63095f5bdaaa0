package main

import (
	"testing"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodWeather = `{
	"utc_offset_seconds": -10800,
	"hourly": {
		"time": ["2025-01-15T11:00", "2025-01-15T12:00", "2025-01-15T13:00"],
		"temperature_2m": [27.1, 27.8, 28.2],
		"precipitation": [0.0, 35.0, 4.0],
		"relative_humidity_2m": [78, 80, 81],
		"windspeed_10m": [12.0, 13.5, 14.1]
	}
}`

const goodTides = `{
	"mare_atual": {"altura": 2.4, "status": "enchente"},
	"proxima_mare": {"tipo": "alta", "altura": 2.5, "hora": "13:10"},
	"horas": [{"hora": "11:00", "altura": 1.9}, {"hora": "12:00", "altura": 2.3}]
}`

func TestWeatherPhases_Pass(t *testing.T) {
	p, series := validateWeatherParse([]byte(goodWeather))
	assert.True(t, p.passed(), p.errors)
	assert.Equal(t, 3, series.Len())
	assert.True(t, validateAlignment([]byte(goodWeather)).passed())
	assert.True(t, validateMonotonic(series).passed())
}

func TestValidateWeatherParse_Malformed(t *testing.T) {
	p, series := validateWeatherParse([]byte(`{"latitude": -8.05}`))
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "hourly")
	assert.Zero(t, series.Len())
}

func TestValidateAlignment_ShortAndMissingArrays(t *testing.T) {
	body := `{"hourly": {
		"time": ["2025-01-15T11:00", "2025-01-15T12:00"],
		"temperature_2m": [27.1],
		"precipitation": [0, 1],
		"relative_humidity_2m": [78, 80]
	}}`
	p := validateAlignment([]byte(body))
	assert.Equal(t, []string{
		"hourly.temperature_2m: 1 values for 2 timestamps",
		"hourly.windspeed_10m: missing",
	}, p.errors)
}

func TestValidateMonotonic_Regression(t *testing.T) {
	base := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	series := domain.WeatherSeries{Times: []time.Time{base, base.Add(time.Hour), base.Add(time.Hour)}}
	p := validateMonotonic(series)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "hourly.time[2]")
}

func TestTidePhases(t *testing.T) {
	p, snap := validateTideParse([]byte(goodTides))
	assert.True(t, p.passed(), p.errors)
	assert.True(t, validateChartSamples(snap).passed())

	t.Run("too few samples", func(t *testing.T) {
		snap := domain.TideSnapshot{Samples: []domain.TideSample{
			{Time: "11:00", Height: domain.Measured(1.9)},
			{Time: "noon", Height: domain.Measured(2.3)},
			{Time: "13:00", Height: domain.Unknown()},
		}}
		p := validateChartSamples(snap)
		assert.Len(t, p.errors, 3)
		assert.Contains(t, p.errors[2], "1 usable samples")
	})

	t.Run("unparseable next tide time", func(t *testing.T) {
		body := `{"mare_atual":{"altura":1,"status":"vazante"},"proxima_mare":{"tipo":"baixa","altura":0.3,"hora":"soon"}}`
		p, _ := validateTideParse([]byte(body))
		require.Len(t, p.errors, 1)
		assert.Contains(t, p.errors[0], "proxima_mare.hora")
	})
}

func TestRiskPreview(t *testing.T) {
	_, series := validateWeatherParse([]byte(goodWeather))
	_, snap := validateTideParse([]byte(goodTides))

	line, err := riskPreview(series, snap, "2025-01-15T11:30:00-03:00")
	require.NoError(t, err)
	assert.Contains(t, line, "high (7 points; rain 35mm, tide 2.4m)")

	line, err = riskPreview(series, snap, "")
	require.NoError(t, err)
	assert.Contains(t, line, "moderate (2 points; rain 0mm, tide 2.4m)")

	_, err = riskPreview(series, snap, "yesterday")
	assert.Error(t, err)
}
