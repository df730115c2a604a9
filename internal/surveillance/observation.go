// Package surveillance implements weighted resistance-trend aggregation and
// polynomial trend forecasting over isolate-level surveillance records.
//
// The aggregation and forecasting functions are pure: they never mutate their
// inputs, hold no state between calls, and are safe to call concurrently as
// long as each caller passes its own slices.
package surveillance

import (
	"fmt"
	"math"
)

// Observation is a single surveillance record: the resistance percentage
// observed for one pathogen/antimicrobial combination in one reporting
// period, backed by SampleSize tested isolates.
type Observation struct {
	Pathogen             string  `json:"pathogen"`
	Antimicrobial        string  `json:"antimicrobial"`
	Region               string  `json:"region,omitempty"`
	Period               int     `json:"period"`
	ResistancePercentage float64 `json:"resistance_percentage"`
	SampleSize           int     `json:"sample_size"`
}

// PeriodStatistic is one aggregated row: the sample-size-weighted resistance
// rate for a single period with its standard error and 95% confidence
// interval. Bounds are clamped to [0,100] and CILower <= ResistanceRate <=
// CIUpper always holds.
type PeriodStatistic struct {
	Period         int     `json:"period"`
	ResistanceRate float64 `json:"resistance_rate"`
	StandardError  float64 `json:"standard_error"`
	SampleSize     int     `json:"sample_size"`
	CILower        float64 `json:"ci_lower"`
	CIUpper        float64 `json:"ci_upper"`
}

// ForecastKind tags forecast rows so consumers can distinguish them from
// historical statistics when the two series are concatenated for display.
const ForecastKind = "forecast"

// ForecastPoint is one extrapolated row for a future period. Periods are
// contiguous starting at max(history period)+1, and all three values are
// clamped to [0,100].
type ForecastPoint struct {
	Period              int     `json:"period"`
	PredictedResistance float64 `json:"predicted_resistance"`
	CILower             float64 `json:"ci_lower"`
	CIUpper             float64 `json:"ci_upper"`
	Kind                string  `json:"kind"`
}

// Validate checks the numeric contract for a single observation: a
// non-negative sample size and a resistance percentage within [0,100].
func (o Observation) Validate() error {
	if o.SampleSize < 0 {
		return &ValidationError{Field: "sample_size", Reason: fmt.Sprintf("must be non-negative, got %d", o.SampleSize), Observation: o}
	}
	if math.IsNaN(o.ResistancePercentage) || o.ResistancePercentage < 0 || o.ResistancePercentage > 100 {
		return &ValidationError{Field: "resistance_percentage", Reason: fmt.Sprintf("must be within [0,100], got %v", o.ResistancePercentage), Observation: o}
	}
	return nil
}

// ValidateAll validates a batch of observations, returning a ValidationError
// naming the first offending record.
func ValidateAll(observations []Observation) error {
	for i, o := range observations {
		if err := o.Validate(); err != nil {
			ve := err.(*ValidationError)
			ve.Index = i
			return ve
		}
	}
	return nil
}
