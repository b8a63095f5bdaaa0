package domain

import (
	"fmt"
)

// NetworkError reports a transport failure or a non-success HTTP status from
// an external source. StatusCode is 0 when no response was received.
type NetworkError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedPayloadError reports a response body that is not valid JSON or is
// missing a field the parser requires.
type MalformedPayloadError struct {
	Source string
	Field  string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: malformed payload: field %q: %v", e.Source, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: malformed payload: %v", e.Source, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// ExhaustedFallbackError reports that the primary source failed, no cached
// value was available, and the static fallback failed as well.
type ExhaustedFallbackError struct {
	Domain   string
	Primary  error
	Fallback error
}

func (e *ExhaustedFallbackError) Error() string {
	return fmt.Sprintf("%s: all sources failed: primary: %v; fallback: %v", e.Domain, e.Primary, e.Fallback)
}

// Unwrap exposes both underlying failures to errors.Is and errors.As.
func (e *ExhaustedFallbackError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}
	return errs
}
