package surveillance

import (
	"math"
	"sort"
)

// zScore95 is the normal-approximation multiplier for a 95% interval.
const zScore95 = 1.96

// Aggregate filters observations to the given pathogen/antimicrobial
// combination (and region, when non-empty; all matches are case-sensitive),
// groups them by reporting period, and computes the sample-size-weighted
// resistance rate per period with standard error and 95% confidence interval.
//
// The standard error uses a weighted binomial-variance approximation that
// treats each record's percentage as if it came from an independent binomial
// sample of its own size:
//
//	SE = sqrt( sum( n_i/(sum n)^2 * r_i*(100-r_i) ) ) / 100
//
// This is not exact for heterogeneous pooled data and is kept deliberately:
// it is the established numeric contract for these statistics, and the tests
// pin it.
//
// Groups whose total sample size is zero are skipped without error. Results
// are sorted by ascending period. Returns NoDataError when the filter leaves
// nothing.
func Aggregate(observations []Observation, pathogen, antimicrobial, region string) ([]PeriodStatistic, error) {
	var filtered []Observation
	for _, o := range observations {
		if o.Pathogen != pathogen || o.Antimicrobial != antimicrobial {
			continue
		}
		if region != "" && o.Region != region {
			continue
		}
		filtered = append(filtered, o)
	}

	if len(filtered) == 0 {
		return nil, &NoDataError{Pathogen: pathogen, Antimicrobial: antimicrobial, Region: region}
	}

	byPeriod := make(map[int][]Observation)
	for _, o := range filtered {
		byPeriod[o.Period] = append(byPeriod[o.Period], o)
	}

	stats := make([]PeriodStatistic, 0, len(byPeriod))
	for period, group := range byPeriod {
		totalIsolates := 0
		for _, o := range group {
			totalIsolates += o.SampleSize
		}
		if totalIsolates == 0 {
			// A period with no isolates carries no information; skip it.
			continue
		}

		total := float64(totalIsolates)
		var weightedSum, varianceSum float64
		for _, o := range group {
			n := float64(o.SampleSize)
			r := o.ResistancePercentage
			weightedSum += n * r
			varianceSum += n / (total * total) * r * (100 - r)
		}

		rate := weightedSum / total
		se := math.Sqrt(varianceSum) / 100

		stats = append(stats, PeriodStatistic{
			Period:         period,
			ResistanceRate: rate,
			StandardError:  se,
			SampleSize:     totalIsolates,
			CILower:        math.Max(0, rate-zScore95*se),
			CIUpper:        math.Min(100, rate+zScore95*se),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Period < stats[j].Period
	})

	return stats, nil
}
