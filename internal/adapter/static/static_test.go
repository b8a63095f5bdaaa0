package static

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeather(t *testing.T) {
	series, err := Weather(time.UTC)
	require.NoError(t, err)
	require.Equal(t, 24, series.Len())

	for i := range series.Len() {
		cur := series.At(i)
		assert.True(t, cur.Temperature.Known, "hour %d", i)
		assert.True(t, cur.Precipitation.Known, "hour %d", i)
		assert.True(t, cur.Humidity.Known, "hour %d", i)
		assert.True(t, cur.WindSpeed.Known, "hour %d", i)
	}
	for i := 1; i < series.Len(); i++ {
		assert.True(t, series.Times[i].After(series.Times[i-1]))
	}
}

func TestTides(t *testing.T) {
	snap, err := Tides()
	require.NoError(t, err)
	assert.True(t, snap.CurrentHeight.Known)
	assert.NotEmpty(t, snap.NextTideTime)
	assert.Len(t, snap.Samples, 24)

	_, ok := snap.Peak()
	assert.True(t, ok)
}

func TestLoaders(t *testing.T) {
	series, err := WeatherLoader(time.UTC).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, series.Len())

	snap, err := TideLoader().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alta", snap.NextTideType)
}
