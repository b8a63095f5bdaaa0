package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// ChartPlaceholder is shown when there are too few samples to draw a line.
const ChartPlaceholder = "(not enough tide samples to chart)"

// ChartHandle owns the single tide chart of a renderer. Replace always
// discards the previous chart before drawing the new one.
type ChartHandle struct {
	width  int
	height int
	loc    *time.Location
	chart  *timeserieslinechart.Model
	view   string
}

// NewChartHandle creates an empty chart handle drawing width x height cells.
func NewChartHandle(width, height int, loc *time.Location) *ChartHandle {
	if loc == nil {
		loc = time.UTC
	}
	return &ChartHandle{width: width, height: height, loc: loc, view: ChartPlaceholder}
}

// Replace draws a new chart from samples. Sample times are "HH:MM" clock
// times on the day of ref; a time earlier than its predecessor rolls over to
// the next day. Unknown heights and unparseable times are skipped.
func (h *ChartHandle) Replace(samples []domain.TideSample, ref time.Time) {
	h.chart = nil

	points := tidePoints(samples, ref.In(h.loc))
	if len(points) < 2 {
		h.view = ChartPlaceholder
		return
	}

	minT, maxT := points[0].Time, points[len(points)-1].Time
	minV, maxV := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		minV = min(minV, p.Value)
		maxV = max(maxV, p.Value)
	}
	if minV == maxV {
		minV -= 0.1
		maxV += 0.1
	}

	lc := timeserieslinechart.New(h.width, h.height)
	lc.SetTimeRange(minT, maxT)
	lc.SetViewTimeAndYRange(minT, maxT, minV, maxV)

	hours := int(maxT.Sub(minT).Hours())
	if hours <= 0 {
		hours = 1
	}
	xStep := 1
	if hours < lc.GraphWidth() {
		xStep = max(1, lc.GraphWidth()/hours)
	}
	lc.SetXStep(xStep)

	loc := h.loc
	lc.Model.XLabelFormatter = func(_ int, v float64) string {
		return time.Unix(int64(v), 0).In(loc).Format("15:04")
	}
	for _, p := range points {
		lc.Push(p)
	}
	lc.DrawBraille()

	h.chart = &lc
	h.view = lc.View()
}

// View returns the rendered chart, or the placeholder.
func (h *ChartHandle) View() string {
	return h.view
}

func tidePoints(samples []domain.TideSample, day time.Time) []timeserieslinechart.TimePoint {
	points := make([]timeserieslinechart.TimePoint, 0, len(samples))
	offset := 0
	var prev time.Time
	for _, s := range samples {
		if !s.Height.Known {
			continue
		}
		hour, minute, ok := parseClock(s.Time)
		if !ok {
			continue
		}
		t := time.Date(day.Year(), day.Month(), day.Day()+offset, hour, minute, 0, 0, day.Location())
		if !prev.IsZero() && t.Before(prev) {
			offset++
			t = t.AddDate(0, 0, 1)
		}
		prev = t
		points = append(points, timeserieslinechart.TimePoint{Time: t, Value: s.Height.Value})
	}
	return points
}

// parseClock parses "H:MM" or "HH:MM".
func parseClock(s string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
