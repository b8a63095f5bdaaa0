// Command genmock writes synthetic tide and weather documents for fixtures,
// demos, and local runs without network access. Output is reproducible: the
// reference instant is fixed by flags, not taken from the wall clock.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -date 2025-06-01 -at 10:30 \
//	  -tide-out data/mares.json \
//	  -weather-out data/weather.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	date := flag.String("date", "2025-06-01", "day to generate (YYYY-MM-DD)")
	at := flag.String("at", "12:00", "local time of the current tide reading (HH:MM)")
	tz := flag.String("tz", "America/Sao_Paulo", "IANA timezone of the generated data")
	tideOut := flag.String("tide-out", "", "output path for the tide document")
	weatherOut := flag.String("weather-out", "", "output path for the Open-Meteo style forecast")
	mean := flag.Float64("mean", 1.3, "mean tide height in metres")
	amplitude := flag.Float64("amplitude", 0.9, "tide amplitude in metres")
	phase := flag.Float64("phase-hours", 3.2, "hours after midnight of the first high tide")
	rain := flag.Float64("rain-peak", 12, "peak hourly precipitation in mm")
	flag.Parse()

	if *tideOut == "" && *weatherOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -tide-out and/or -weather-out")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	ref, err := time.ParseInLocation("2006-01-02 15:04", *date+" "+*at, loc)
	if err != nil {
		return fmt.Errorf("parse -date/-at: %w", err)
	}

	// Fixed clock so every run with the same flags produces identical output.
	domain.SetClock(clockwork.NewFakeClockAt(ref))
	defer domain.SetClock(nil)

	curve := tideCurve{Mean: *mean, Amplitude: *amplitude, Phase: time.Duration(*phase * float64(time.Hour))}

	if *tideOut != "" {
		doc := curve.document(domain.Now())
		if err := writeJSON(*tideOut, doc); err != nil {
			return fmt.Errorf("writing tide document: %w", err)
		}
		log.Printf("wrote tide document: %s (current %.2fm %s, next %s %.2fm at %s)",
			*tideOut, doc.Current.Height, doc.Current.Status, doc.Next.Type, doc.Next.Height, doc.Next.Time)
	}

	if *weatherOut != "" {
		fc := syntheticForecast(domain.Now(), *rain)
		if err := writeJSON(*weatherOut, fc); err != nil {
			return fmt.Errorf("writing forecast: %w", err)
		}
		log.Printf("wrote forecast: %s (%d hours)", *weatherOut, len(fc.Hourly.Time))
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
