package domain

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// TideSample is one charted point of the tide curve.
type TideSample struct {
	Time   string      `json:"time"`
	Height Measurement `json:"height"` // m
}

// TideSnapshot is the current tide state for the station plus its chart series.
type TideSnapshot struct {
	CurrentHeight  Measurement  `json:"current_height"` // m
	CurrentStatus  string       `json:"current_status"`
	NextTideType   string       `json:"next_tide_type"`
	NextTideHeight Measurement  `json:"next_tide_height"` // m
	NextTideTime   string       `json:"next_tide_time"`
	Samples        []TideSample `json:"samples"`
}

// Peak returns the highest known chart sample.
func (t TideSnapshot) Peak() (TideSample, bool) {
	var peak TideSample
	found := false
	for _, s := range t.Samples {
		if !s.Height.Known {
			continue
		}
		if !found || s.Height.Value > peak.Height.Value {
			peak = s
			found = true
		}
	}
	return peak, found
}

type tideDocument struct {
	Current *tideCurrent `json:"mare_atual" validate:"required"`
	Next    *tideNext    `json:"proxima_mare" validate:"required"`
	Hours   []tideHour   `json:"horas"`
}

type tideCurrent struct {
	Height Measurement `json:"altura"`
	Status string      `json:"status"`
}

type tideNext struct {
	Type   string      `json:"tipo"`
	Height Measurement `json:"altura"`
	Time   string      `json:"hora"`
}

type tideHour struct {
	Time   string      `json:"hora"`
	Height Measurement `json:"altura"`
}

// ParseTideSnapshot decodes a tide document. The "mare_atual" and
// "proxima_mare" objects are required; "horas" may be empty.
func ParseTideSnapshot(source string, data []byte) (TideSnapshot, error) {
	var doc tideDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return TideSnapshot{}, &MalformedPayloadError{Source: source, Err: err}
	}
	if err := validate.Struct(doc); err != nil {
		return TideSnapshot{}, malformedFromValidation(source, err)
	}

	samples := make([]TideSample, 0, len(doc.Hours))
	for _, h := range doc.Hours {
		samples = append(samples, TideSample{Time: h.Time, Height: h.Height})
	}

	return TideSnapshot{
		CurrentHeight:  doc.Current.Height,
		CurrentStatus:  doc.Current.Status,
		NextTideType:   doc.Next.Type,
		NextTideHeight: doc.Next.Height,
		NextTideTime:   doc.Next.Time,
		Samples:        samples,
	}, nil
}

func malformedFromValidation(source string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &MalformedPayloadError{
			Source: source,
			Field:  tideFieldName(fe.StructField()),
			Err:    errors.New("failed " + fe.Tag() + " check"),
		}
	}
	return &MalformedPayloadError{Source: source, Err: err}
}

// tideFieldName maps struct fields back to the document's JSON keys.
func tideFieldName(structField string) string {
	switch structField {
	case "Current":
		return "mare_atual"
	case "Next":
		return "proxima_mare"
	case "Hours":
		return "horas"
	default:
		return structField
	}
}
