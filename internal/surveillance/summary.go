package surveillance

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// defaultSummaryLimit caps how many pathogens/antimicrobials a heatmap shows
// when the caller does not name them explicitly.
const defaultSummaryLimit = 10

// HeatmapCell is one pathogen/antimicrobial cell of the resistance heatmap:
// the pooled unweighted mean of all matching records. Combinations with no
// data produce no cell.
type HeatmapCell struct {
	Pathogen      string  `json:"pathogen"`
	Antimicrobial string  `json:"antimicrobial"`
	MeanRate      float64 `json:"mean_rate"`
	Records       int     `json:"records"`
}

// PriorityCombination is a pathogen/antimicrobial pair whose pooled mean
// resistance meets the priority threshold with at least minPriorityRecords
// supporting records.
type PriorityCombination struct {
	Pathogen      string  `json:"pathogen"`
	Antimicrobial string  `json:"antimicrobial"`
	MeanRate      float64 `json:"mean_rate"`
	Records       int     `json:"records"`
}

// minPriorityRecords is the floor below which a combination's pooled mean is
// too thin to rank as a priority threat.
const minPriorityRecords = 3

// Catalog lists the distinct dimensions present in a dataset, each sorted.
type Catalog struct {
	Pathogens      []string `json:"pathogens"`
	Antimicrobials []string `json:"antimicrobials"`
	Regions        []string `json:"regions"`
	MinPeriod      int      `json:"min_period"`
	MaxPeriod      int      `json:"max_period"`
}

// Heatmap computes pooled mean resistance per pathogen/antimicrobial cell.
// Empty pathogen or antimicrobial lists default to the first
// defaultSummaryLimit values present in the data (in sorted order).
func Heatmap(observations []Observation, pathogens, antimicrobials []string) []HeatmapCell {
	if len(pathogens) == 0 {
		pathogens = distinctLimited(observations, func(o Observation) string { return o.Pathogen }, defaultSummaryLimit)
	}
	if len(antimicrobials) == 0 {
		antimicrobials = distinctLimited(observations, func(o Observation) string { return o.Antimicrobial }, defaultSummaryLimit)
	}

	var cells []HeatmapCell
	for _, pathogen := range pathogens {
		for _, antimicrobial := range antimicrobials {
			rates := collectRates(observations, pathogen, antimicrobial)
			if len(rates) == 0 {
				continue
			}
			cells = append(cells, HeatmapCell{
				Pathogen:      pathogen,
				Antimicrobial: antimicrobial,
				MeanRate:      stat.Mean(rates, nil),
				Records:       len(rates),
			})
		}
	}
	return cells
}

// Priorities identifies pathogen/antimicrobial combinations whose pooled mean
// resistance is at or above threshold, backed by at least three records.
// Results are sorted by descending mean rate. Returns NoDataError when no
// combination qualifies.
func Priorities(observations []Observation, threshold float64) ([]PriorityCombination, error) {
	pathogens := distinctLimited(observations, func(o Observation) string { return o.Pathogen }, 0)
	antimicrobials := distinctLimited(observations, func(o Observation) string { return o.Antimicrobial }, 0)

	var priorities []PriorityCombination
	for _, pathogen := range pathogens {
		for _, antimicrobial := range antimicrobials {
			rates := collectRates(observations, pathogen, antimicrobial)
			if len(rates) < minPriorityRecords {
				continue
			}
			mean := stat.Mean(rates, nil)
			if mean < threshold {
				continue
			}
			priorities = append(priorities, PriorityCombination{
				Pathogen:      pathogen,
				Antimicrobial: antimicrobial,
				MeanRate:      mean,
				Records:       len(rates),
			})
		}
	}

	if len(priorities) == 0 {
		return nil, &NoDataError{Pathogen: "any", Antimicrobial: "any"}
	}

	sort.Slice(priorities, func(i, j int) bool {
		return priorities[i].MeanRate > priorities[j].MeanRate
	})
	return priorities, nil
}

// BuildCatalog summarizes the distinct pathogens, antimicrobials, regions and
// period range present in the dataset.
func BuildCatalog(observations []Observation) Catalog {
	catalog := Catalog{
		Pathogens:      distinctLimited(observations, func(o Observation) string { return o.Pathogen }, 0),
		Antimicrobials: distinctLimited(observations, func(o Observation) string { return o.Antimicrobial }, 0),
		Regions:        distinctLimited(observations, func(o Observation) string { return o.Region }, 0),
	}
	for i, o := range observations {
		if i == 0 || o.Period < catalog.MinPeriod {
			catalog.MinPeriod = o.Period
		}
		if i == 0 || o.Period > catalog.MaxPeriod {
			catalog.MaxPeriod = o.Period
		}
	}
	return catalog
}

func collectRates(observations []Observation, pathogen, antimicrobial string) []float64 {
	var rates []float64
	for _, o := range observations {
		if o.Pathogen == pathogen && o.Antimicrobial == antimicrobial {
			rates = append(rates, o.ResistancePercentage)
		}
	}
	return rates
}

// distinctLimited returns the sorted distinct non-empty values of key, capped
// at limit when limit > 0.
func distinctLimited(observations []Observation, key func(Observation) string, limit int) []string {
	seen := make(map[string]bool)
	for _, o := range observations {
		if v := key(o); v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}
