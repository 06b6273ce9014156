package analysis

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for pipeline failures. Indicator warm-up gaps and
// zero-variance cases are represented as absent values, never as errors;
// only structural violations surface through these.
var (
	ErrNoData            = errors.New("no data")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrInvalidTargetDate = errors.New("invalid target date")
	ErrHorizonTooLong    = errors.New("horizon too long")
	ErrComputation       = errors.New("computation error")
)

// Error attaches the offending symbol and request context to a sentinel
// kind so batch callers can tag per-symbol result slots and retry with
// corrected input.
type Error struct {
	Kind     error
	Symbol   string
	Period   string
	Interval string
	Detail   string
}

// NewError builds a contextual pipeline error.
func NewError(kind error, symbol, period, interval, detail string) *Error {
	return &Error{
		Kind:     kind,
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Detail:   detail,
	}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s [%s %s/%s]: %s", e.Kind.Error(), e.Symbol, e.Period, e.Interval, e.Detail)
	}
	return fmt.Sprintf("%s [%s %s/%s]", e.Kind.Error(), e.Symbol, e.Period, e.Interval)
}

// Unwrap exposes the sentinel kind for errors.Is checks.
func (e *Error) Unwrap() error {
	return e.Kind
}

// KindOf returns the matching sentinel kind of err, or nil if err does not
// carry one.
func KindOf(err error) error {
	for _, kind := range []error{ErrNoData, ErrInsufficientData, ErrInvalidTargetDate, ErrHorizonTooLong, ErrComputation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
