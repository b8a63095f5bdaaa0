package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnknownMarker is rendered in place of a measurement that is absent.
const UnknownMarker = "--"

// Measurement is a numeric reading that may be missing. The zero value is unknown.
type Measurement struct {
	Value float64
	Known bool
}

// Measured returns a known measurement holding v.
func Measured(v float64) Measurement {
	return Measurement{Value: v, Known: true}
}

// Unknown returns a measurement with no value.
func Unknown() Measurement {
	return Measurement{}
}

// OrZero returns the value, or 0 when the measurement is unknown.
func (m Measurement) OrZero() float64 {
	if !m.Known {
		return 0
	}
	return m.Value
}

// String formats the value with the minimal number of digits, or the unknown marker.
func (m Measurement) String() string {
	if !m.Known {
		return UnknownMarker
	}
	return formatNumber(m.Value)
}

// MarshalJSON encodes known values as numbers and unknown values as null.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number, a numeric string, or null. Strings that do
// not parse as a number decode to an unknown measurement.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Unknown()
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode measurement: %w", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*m = Unknown()
			return nil
		}
		*m = Measured(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode measurement: %w", err)
	}
	*m = Measured(v)
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
