// Command validate checks weather and tide snapshot files before they are
// used as fallback data or fixtures. It parses both documents the way the
// service does and verifies series alignment, timestamp ordering, and that
// the tide curve has enough samples to chart.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -weather internal/adapter/static/data/weather.json \
//	  -tides data/mares.json \
//	  -at 2025-01-15T12:00:00-03:00
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	weatherPath := flag.String("weather", "", "path to an Open-Meteo style forecast JSON")
	tidePath := flag.String("tides", "", "path to a tide document JSON")
	at := flag.String("at", "", "reference instant for the risk preview (RFC 3339); defaults to the first forecast hour")
	flag.Parse()

	if *weatherPath == "" || *tidePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*weatherPath, *tidePath, *at); code != 0 {
		os.Exit(code)
	}
}

func run(weatherPath, tidePath, at string) int {
	fmt.Println("=== Flood Data Integrity Validation ===")
	fmt.Println()

	weatherData, err := os.ReadFile(weatherPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load weather: %v\n", err)
		return 1
	}
	tideData, err := os.ReadFile(tidePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load tides: %v\n", err)
		return 1
	}

	weatherParse, series := validateWeatherParse(weatherData)
	tideParse, snap := validateTideParse(tideData)

	phases := []*phase{
		weatherParse,
		validateAlignment(weatherData),
		validateMonotonic(series),
		tideParse,
		validateChartSamples(snap),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Samples: %d forecast hours, %d tide points\n", series.Len(), len(snap.Samples))

	if weatherParse.passed() && tideParse.passed() {
		if line, err := riskPreview(series, snap, at); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: risk preview: %v\n", err)
		} else {
			fmt.Println(line)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// riskPreview scores the snapshot pair at the given instant, with the clock
// frozen there so selection matches what the service would have produced.
func riskPreview(series domain.WeatherSeries, snap domain.TideSnapshot, at string) (string, error) {
	ref, err := referenceInstant(series, at)
	if err != nil {
		return "", err
	}
	domain.SetClock(clockwork.NewFakeClockAt(ref))
	defer domain.SetClock(nil)

	current := domain.CurrentFrom(series, domain.Now())
	risk := domain.Score(current.Precipitation, snap.CurrentHeight)
	return fmt.Sprintf("Risk at %s: %s (%d points; rain %smm, tide %sm)",
		ref.Format(time.RFC3339), risk.Level, risk.Points,
		current.Precipitation, snap.CurrentHeight), nil
}

func referenceInstant(series domain.WeatherSeries, at string) (time.Time, error) {
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse -at: %w", err)
		}
		return t, nil
	}
	if series.Len() == 0 {
		return time.Time{}, fmt.Errorf("forecast has no hours")
	}
	return series.Times[0], nil
}
