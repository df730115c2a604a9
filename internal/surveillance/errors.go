package surveillance

import "fmt"

// NoDataError indicates that filtering left no observations to aggregate.
type NoDataError struct {
	Pathogen      string
	Antimicrobial string
	Region        string
}

func (e *NoDataError) Error() string {
	if e.Region != "" {
		return fmt.Sprintf("no data available for %s/%s in region %s", e.Pathogen, e.Antimicrobial, e.Region)
	}
	return fmt.Sprintf("no data available for %s/%s", e.Pathogen, e.Antimicrobial)
}

// InsufficientDataError indicates too few usable history points for a trend fit.
type InsufficientDataError struct {
	Points   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for prediction: %d usable points, need at least %d", e.Points, e.Required)
}

// NumericalFitError indicates the polynomial fit could not be computed,
// typically because the design matrix is singular (e.g. all periods identical).
type NumericalFitError struct {
	Reason string
	Err    error
}

func (e *NumericalFitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trend fit failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("trend fit failed: %s", e.Reason)
}

func (e *NumericalFitError) Unwrap() error {
	return e.Err
}

// ValidationError identifies a malformed observation by its position in the
// input batch.
type ValidationError struct {
	Index       int
	Field       string
	Reason      string
	Observation Observation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid observation at index %d (%s/%s, period %d): %s %s",
		e.Index, e.Observation.Pathogen, e.Observation.Antimicrobial, e.Observation.Period, e.Field, e.Reason)
}
