// Package render draws update results for a terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

const (
	chartWidth  = 48
	chartHeight = 10

	timestampLayout = "2006-01-02 15:04"
)

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	faint  lipgloss.Style
	err    lipgloss.Style
	levels map[domain.RiskLevel]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("45")),
		label: r.NewStyle().Foreground(lipgloss.Color("244")),
		faint: r.NewStyle().Faint(true),
		err:   r.NewStyle().Foreground(lipgloss.Color("196")),
		levels: map[domain.RiskLevel]lipgloss.Style{
			domain.RiskLow:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
			domain.RiskModerate: r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
			domain.RiskHigh:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Reverse(true),
		},
	}
}

// Terminal renders each delivered result to a writer. It implements
// pipeline.Sink.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	location string
	loc      *time.Location
	styles   styles
	chart    *ChartHandle
}

// NewTerminal creates a terminal renderer for the named location. Colors are
// enabled only when w is a terminal that supports them.
func NewTerminal(w io.Writer, location string, loc *time.Location) *Terminal {
	if loc == nil {
		loc = time.UTC
	}
	return &Terminal{
		w:        w,
		location: location,
		loc:      loc,
		styles:   newStyles(lipgloss.NewRenderer(w)),
		chart:    NewChartHandle(chartWidth, chartHeight, loc),
	}
}

func (t *Terminal) Name() string { return "terminal" }

// Deliver renders the full conditions view.
func (t *Terminal) Deliver(_ context.Context, _ domain.Invocation, result domain.UpdateResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.chart.Replace(result.Tide.Samples, result.Timestamp)
	_, err := io.WriteString(t.w, t.view(result))
	return err
}

// ReportFailure writes an error line. Previously rendered values stay on screen.
func (t *Terminal) ReportFailure(_ context.Context, _ domain.Invocation, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = fmt.Fprintln(t.w, t.styles.err.Render("Error loading data: "+err.Error()))
}

func (t *Terminal) view(r domain.UpdateResult) string {
	s := t.styles
	b := &strings.Builder{}

	line := func(label, value string) {
		b.WriteString(s.label.Render(fmt.Sprintf("%-14s", label+":")))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString(s.title.Render("Flood conditions for " + t.location))
	b.WriteString("\n")

	line("Temperature", r.Current.Temperature.String()+"°C")
	line("Precipitation", r.Current.Precipitation.String()+"mm")
	line("Humidity", r.Current.Humidity.String()+"%")
	line("Wind", r.Current.WindSpeed.String()+"km/h")
	line("Rain", fmt.Sprintf("%smm past 24h, %smm next 24h", r.Precipitation.Past24h, r.Precipitation.Next24h))

	tide := r.Tide.CurrentHeight.String() + "m"
	if r.Tide.CurrentStatus != "" {
		tide += " (" + r.Tide.CurrentStatus + ")"
	}
	line("Tide", tide)
	line("Next tide", fmt.Sprintf("%s %sm at %s", r.Tide.NextTideType, r.Tide.NextTideHeight, r.Tide.NextTideTime))
	if peak, ok := r.Tide.Peak(); ok {
		line("Peak tide", fmt.Sprintf("%sm at %s", peak.Height, peak.Time))
	}

	level := strings.ToUpper(string(r.Risk.Level))
	if level == "" {
		level = domain.UnknownMarker
	}
	line("Flood risk", t.levelStyle(r.Risk.Level).Render(level))
	for _, reason := range r.Risk.DisplayReasons() {
		b.WriteString("  - ")
		b.WriteString(reason)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.chart.View())
	b.WriteString("\n\n")

	status := "Last update: " + r.Timestamp.In(t.loc).Format(timestampLayout)
	if note := r.StatusNote(); note != "" {
		status += " " + note
	}
	b.WriteString(s.faint.Render(status))
	b.WriteString("\n")
	return b.String()
}

func (t *Terminal) levelStyle(level domain.RiskLevel) lipgloss.Style {
	if st, ok := t.styles.levels[level]; ok {
		return st
	}
	return t.styles.faint
}
