package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCurve = tideCurve{Mean: 1.3, Amplitude: 0.9, Phase: 3 * time.Hour}

func TestTideCurve_Extremes(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.InDelta(t, 2.2, testCurve.height(day.Add(3*time.Hour)), 1e-9)
	assert.InDelta(t, 0.4, testCurve.height(day.Add(3*time.Hour).Add(semidiurnal/2)), 1e-9)

	when, high := testCurve.nextExtreme(day.Add(time.Hour))
	assert.True(t, high)
	assert.Equal(t, day.Add(3*time.Hour), when)

	when, high = testCurve.nextExtreme(day.Add(3 * time.Hour))
	assert.False(t, high, "an extreme at t is not after t")
	assert.Equal(t, day.Add(3*time.Hour).Add(semidiurnal/2), when)
}

func TestTideCurve_DocumentParses(t *testing.T) {
	now := time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)
	doc := testCurve.document(now)

	assert.Equal(t, "enchente", doc.Current.Status)
	assert.Equal(t, "alta", doc.Next.Type)
	assert.Equal(t, "03:00", doc.Next.Time)
	require.Len(t, doc.Hours, 24)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	snap, err := domain.ParseTideSnapshot("genmock", data)
	require.NoError(t, err)
	assert.Equal(t, domain.Measured(doc.Current.Height), snap.CurrentHeight)

	peak, ok := snap.Peak()
	require.True(t, ok)
	assert.Equal(t, "03:00", peak.Time)
}

func TestSyntheticForecast_SelectableAndScored(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	fc := syntheticForecast(now, 40)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	series, err := domain.ParseWeatherSeries("genmock", data, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 48, series.Len())

	cur := domain.CurrentFrom(series, now)
	assert.True(t, cur.Precipitation.Known)
	assert.Greater(t, cur.Precipitation.Value, 10.0)

	summary := domain.SummarizePrecipitation(series, now)
	assert.True(t, summary.Next24h.Known)
	assert.Greater(t, summary.Next24h.Value, summary.Past24h.Value)
}
