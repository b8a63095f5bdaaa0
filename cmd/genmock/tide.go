package main

import (
	"math"
	"time"
)

// semidiurnal is the principal lunar semi-diurnal period (M2).
const semidiurnal = 12*time.Hour + 25*time.Minute + 12*time.Second

const clockLayout = "15:04"

// tideCurve is a single-constituent tide model: highs at Phase + k*period.
type tideCurve struct {
	Mean      float64
	Amplitude float64
	Phase     time.Duration
}

type tideDocument struct {
	Current tideCurrent `json:"mare_atual"`
	Next    tideNext    `json:"proxima_mare"`
	Hours   []tideHour  `json:"horas"`
}

type tideCurrent struct {
	Height float64 `json:"altura"`
	Status string  `json:"status"`
}

type tideNext struct {
	Type   string  `json:"tipo"`
	Height float64 `json:"altura"`
	Time   string  `json:"hora"`
}

type tideHour struct {
	Time   string  `json:"hora"`
	Height float64 `json:"altura"`
}

func (c tideCurve) height(t time.Time) float64 {
	return c.Mean + c.Amplitude*math.Cos(c.angle(t))
}

// rising reports whether the tide is flooding at t.
func (c tideCurve) rising(t time.Time) bool {
	return math.Sin(c.angle(t)) < 0
}

func (c tideCurve) angle(t time.Time) float64 {
	elapsed := t.Sub(midnight(t)) - c.Phase
	return 2 * math.Pi * float64(elapsed) / float64(semidiurnal)
}

// nextExtreme returns the first high or low water strictly after t.
func (c tideCurve) nextExtreme(t time.Time) (time.Time, bool) {
	half := semidiurnal / 2
	first := midnight(t).Add(c.Phase)
	elapsed := t.Sub(first)
	k := int64(math.Floor(float64(elapsed)/float64(half))) + 1
	when := first.Add(time.Duration(k) * half)
	return when, k%2 == 0
}

func (c tideCurve) document(now time.Time) tideDocument {
	status := "vazante"
	if c.rising(now) {
		status = "enchente"
	}

	when, high := c.nextExtreme(now)
	kind := "baixa"
	if high {
		kind = "alta"
	}

	day := midnight(now)
	hours := make([]tideHour, 0, 24)
	for h := range 24 {
		t := day.Add(time.Duration(h) * time.Hour)
		hours = append(hours, tideHour{Time: t.Format(clockLayout), Height: round2(c.height(t))})
	}

	return tideDocument{
		Current: tideCurrent{Height: round2(c.height(now)), Status: status},
		Next:    tideNext{Type: kind, Height: round2(c.height(when)), Time: when.Format(clockLayout)},
		Hours:   hours,
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
