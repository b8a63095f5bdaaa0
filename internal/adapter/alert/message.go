// Package alert e-mails a flood warning when the assessed risk rises to high.
package alert

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

//go:embed templates/alert.html templates/alert.txt
var templateFS embed.FS

var (
	htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/alert.html"))
	textTemplate = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/alert.txt"))
)

const generatedAtLayout = "02/01/2006 15:04"

// Message is a rendered alert ready for a Mailer.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// templateData is the flattened view of an UpdateResult the templates read.
type templateData struct {
	Location    string
	GeneratedAt string
	Level       string
	Points      int
	Reasons     []string

	Temperature   string
	Precipitation string
	Humidity      string
	WindSpeed     string
	Past24h       string
	Next24h       string

	TideHeight     string
	TideStatus     string
	NextTideType   string
	NextTideHeight string
	NextTideTime   string
	Peak           string

	StatusNote string
}

// Compose renders the alert for one result. Times are shown in loc.
func Compose(location string, loc *time.Location, result domain.UpdateResult) (Message, error) {
	if loc == nil {
		loc = time.UTC
	}
	data := templateData{
		Location:    location,
		GeneratedAt: result.Timestamp.In(loc).Format(generatedAtLayout),
		Level:       strings.ToUpper(string(result.Risk.Level)),
		Points:      result.Risk.Points,
		Reasons:     result.Risk.DisplayReasons(),

		Temperature:   result.Current.Temperature.String(),
		Precipitation: result.Current.Precipitation.String(),
		Humidity:      result.Current.Humidity.String(),
		WindSpeed:     result.Current.WindSpeed.String(),
		Past24h:       result.Precipitation.Past24h.String(),
		Next24h:       result.Precipitation.Next24h.String(),

		TideHeight:     result.Tide.CurrentHeight.String(),
		TideStatus:     orUnknown(result.Tide.CurrentStatus),
		NextTideType:   orUnknown(result.Tide.NextTideType),
		NextTideHeight: result.Tide.NextTideHeight.String(),
		NextTideTime:   orUnknown(result.Tide.NextTideTime),
		Peak:           "--",

		StatusNote: result.StatusNote(),
	}
	if peak, ok := result.Tide.Peak(); ok {
		data.Peak = fmt.Sprintf("%sm at %s", peak.Height, peak.Time)
	}

	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render alert html: %w", err)
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render alert text: %w", err)
	}

	return Message{
		Subject: fmt.Sprintf("ALERT: %s flood risk in %s", data.Level, location),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "--"
	}
	return s
}
