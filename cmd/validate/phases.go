package main

import (
	"encoding/json"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

const snapshotSource = "snapshot"

// hourlyVariables are the forecast arrays that must line up with hourly.time.
var hourlyVariables = []string{"temperature_2m", "precipitation", "relative_humidity_2m", "windspeed_10m"}

func validateWeatherParse(data []byte) (*phase, domain.WeatherSeries) {
	p := &phase{name: "Weather: payload parses"}
	series, err := domain.ParseWeatherSeries(snapshotSource, data, time.UTC)
	if err != nil {
		p.errorf("%v", err)
		return p, domain.WeatherSeries{}
	}
	if series.Len() == 0 {
		p.errorf("hourly.time is empty")
	}
	return p, series
}

// validateAlignment compares raw array lengths, since the parsed series
// treats short arrays as unknown trailing values.
func validateAlignment(data []byte) *phase {
	p := &phase{name: "Weather: arrays aligned with hourly.time"}

	var doc struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Hourly == nil {
		p.errorf("no hourly object to compare")
		return p
	}

	var times []json.RawMessage
	if err := json.Unmarshal(doc.Hourly["time"], &times); err != nil {
		p.errorf("hourly.time: %v", err)
		return p
	}

	for _, name := range hourlyVariables {
		raw, ok := doc.Hourly[name]
		if !ok {
			p.errorf("hourly.%s: missing", name)
			continue
		}
		var values []json.RawMessage
		if err := json.Unmarshal(raw, &values); err != nil {
			p.errorf("hourly.%s: %v", name, err)
			continue
		}
		if len(values) != len(times) {
			p.errorf("hourly.%s: %d values for %d timestamps", name, len(values), len(times))
		}
	}
	return p
}

func validateMonotonic(series domain.WeatherSeries) *phase {
	p := &phase{name: "Weather: timestamps strictly increasing"}
	for i := 1; i < len(series.Times); i++ {
		if !series.Times[i].After(series.Times[i-1]) {
			p.errorf("hourly.time[%d] %s does not follow %s", i,
				series.Times[i].Format(time.RFC3339), series.Times[i-1].Format(time.RFC3339))
		}
	}
	return p
}

func validateTideParse(data []byte) (*phase, domain.TideSnapshot) {
	p := &phase{name: "Tides: document parses"}
	snap, err := domain.ParseTideSnapshot(snapshotSource, data)
	if err != nil {
		p.errorf("%v", err)
		return p, domain.TideSnapshot{}
	}
	if !snap.CurrentHeight.Known {
		p.errorf("mare_atual.altura is not numeric")
	}
	if _, err := time.Parse("15:04", snap.NextTideTime); err != nil {
		p.errorf("proxima_mare.hora %q is not HH:MM", snap.NextTideTime)
	}
	return p, snap
}

func validateChartSamples(snap domain.TideSnapshot) *phase {
	p := &phase{name: "Tides: at least two chartable samples"}
	usable := 0
	for i, s := range snap.Samples {
		if _, err := time.Parse("15:04", s.Time); err != nil {
			p.errorf("horas[%d].hora %q is not HH:MM", i, s.Time)
			continue
		}
		if !s.Height.Known {
			p.errorf("horas[%d].altura is not numeric", i)
			continue
		}
		usable++
	}
	if usable < 2 {
		p.errorf("%d usable samples, need 2", usable)
	}
	return p
}
