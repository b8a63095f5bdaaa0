package main

import (
	"math"
	"time"
)

const openMeteoLayout = "2006-01-02T15:04"

type forecast struct {
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Timezone         string         `json:"timezone"`
	UTCOffsetSeconds int            `json:"utc_offset_seconds"`
	Hourly           forecastHourly `json:"hourly"`
}

type forecastHourly struct {
	Time          []string  `json:"time"`
	Temperature   []float64 `json:"temperature_2m"`
	Precipitation []float64 `json:"precipitation"`
	Humidity      []float64 `json:"relative_humidity_2m"`
	WindSpeed     []float64 `json:"windspeed_10m"`
}

// syntheticForecast covers the 24 hours before and after now, with a rain
// band peaking at rainPeak mm two hours after now.
func syntheticForecast(now time.Time, rainPeak float64) forecast {
	start := now.Truncate(time.Hour).Add(-24 * time.Hour)
	_, offset := now.Zone()

	fc := forecast{
		Latitude:         -8.05,
		Longitude:        -34.88,
		Timezone:         now.Location().String(),
		UTCOffsetSeconds: offset,
	}
	peak := now.Add(2 * time.Hour)
	for h := range 48 {
		t := start.Add(time.Duration(h) * time.Hour)
		dayAngle := 2 * math.Pi * float64(t.Hour()-9) / 24
		dist := t.Sub(peak).Hours()

		fc.Hourly.Time = append(fc.Hourly.Time, t.Format(openMeteoLayout))
		fc.Hourly.Temperature = append(fc.Hourly.Temperature, round1(25.5+2.5*math.Sin(dayAngle)))
		fc.Hourly.Precipitation = append(fc.Hourly.Precipitation, round1(rainPeak*math.Exp(-dist*dist/8)))
		fc.Hourly.Humidity = append(fc.Hourly.Humidity, math.Round(80-8*math.Sin(dayAngle)))
		fc.Hourly.WindSpeed = append(fc.Hourly.WindSpeed, round1(12+3*math.Cos(dayAngle)))
	}
	return fc
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
