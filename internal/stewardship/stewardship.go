// Package stewardship models the impact of antimicrobial stewardship
// interventions: resistance and usage trajectories over time, hospital
// cost-benefit, and side-by-side intervention comparison.
package stewardship

import (
	"fmt"
	"math"
)

// Simulation baselines. Resistance starts at a typical hospital-wide rate
// and usage is indexed to 100.
const (
	baselineResistance = 30.0
	baselineUsage      = 100.0

	// resistanceLagYears is how long resistance rates take to respond to a
	// usage change.
	resistanceLagYears = 2
)

// Intervention describes a stewardship intervention's expected effects and
// costs.
type Intervention struct {
	Name                string  `json:"name"`
	UsageReduction      float64 `json:"usage_reduction"`      // percent reduction in usage at full effect
	ResistanceImpact    float64 `json:"resistance_impact"`    // fractional change in resistance rates
	ImplementationCost  float64 `json:"implementation_cost"`  // upfront cost
	AnnualCost          float64 `json:"annual_cost"`          // recurring maintenance cost
	InfectionsPrevented float64 `json:"infections_prevented"` // resistant infections avoided per year
}

// Hospital parameterizes the cost side of the model.
type Hospital struct {
	Beds            int     `json:"beds"`
	DailyBedCost    float64 `json:"daily_bed_cost"`
	AvgLengthOfStay float64 `json:"avg_length_of_stay"` // days per prevented infection
}

// DefaultHospital returns the reference 500-bed hospital used by the
// training material.
func DefaultHospital() Hospital {
	return Hospital{Beds: 500, DailyBedCost: 1500, AvgLengthOfStay: 5}
}

// YearOutcome is one simulated year of an intervention's effect.
type YearOutcome struct {
	Year           int     `json:"year"`
	ResistanceRate float64 `json:"resistance_rate"`
	UsageRate      float64 `json:"usage_rate"`
}

// Simulation is the full trajectory for one intervention, year 0 (baseline)
// through the final simulation year.
type Simulation struct {
	Intervention string        `json:"intervention"`
	Years        []YearOutcome `json:"years"`
}

// CostBenefit summarizes the financial case for an intervention at a given
// hospital.
type CostBenefit struct {
	AnnualCostSavings  float64 `json:"annual_cost_savings"`
	ImplementationCost float64 `json:"implementation_cost"`
	AnnualMaintenance  float64 `json:"annual_maintenance"`
	NetBenefitYear1    float64 `json:"net_benefit_year1"`
	ROIYear1           float64 `json:"roi_year1"` // percent
	PaybackPeriodYears float64 `json:"payback_period_years"`
}

// ComparisonRow is one intervention's three-year outcome next to its
// financial summary.
type ComparisonRow struct {
	Intervention      string  `json:"intervention"`
	ResistanceRate3Yr float64 `json:"resistance_rate_3yr"`
	UsageRate3Yr      float64 `json:"usage_rate_3yr"`
	AnnualCostSavings float64 `json:"annual_cost_savings"`
	PaybackYears      float64 `json:"payback_years"`
}

// Simulate projects resistance and usage over the given number of years.
// Usage ramps down linearly toward the intervention's full reduction.
// Resistance holds at baseline for resistanceLagYears, then declines in
// proportion to the intervention's impact. Both are floored at zero.
func Simulate(intervention Intervention, years int) (Simulation, error) {
	if years < 1 {
		return Simulation{}, fmt.Errorf("simulation years must be positive, got %d", years)
	}

	sim := Simulation{Intervention: intervention.Name}
	for year := 0; year <= years; year++ {
		resistance := baselineResistance
		usage := baselineUsage

		if year > 0 {
			reduction := intervention.UsageReduction / 100
			usage = baselineUsage * (1 - reduction*float64(year)/float64(years))

			if year > resistanceLagYears {
				resistance = baselineResistance * (1 - math.Abs(intervention.ResistanceImpact)*float64(year-resistanceLagYears)/float64(years))
			}
		}

		sim.Years = append(sim.Years, YearOutcome{
			Year:           year,
			ResistanceRate: math.Max(0, resistance),
			UsageRate:      math.Max(0, usage),
		})
	}
	return sim, nil
}

// CalculateCostBenefit computes the financial summary for an intervention at
// a hospital. Payback divides by at least 1 so a zero-savings intervention
// reports its full implementation cost in years rather than infinity.
func CalculateCostBenefit(intervention Intervention, hospital Hospital) CostBenefit {
	bedDaysSaved := intervention.InfectionsPrevented * hospital.AvgLengthOfStay
	savings := bedDaysSaved * hospital.DailyBedCost

	net := savings - intervention.AnnualCost

	roi := 0.0
	if intervention.ImplementationCost > 0 {
		roi = net / intervention.ImplementationCost * 100
	}

	return CostBenefit{
		AnnualCostSavings:  savings,
		ImplementationCost: intervention.ImplementationCost,
		AnnualMaintenance:  intervention.AnnualCost,
		NetBenefitYear1:    net,
		ROIYear1:           roi,
		PaybackPeriodYears: intervention.ImplementationCost / math.Max(savings, 1),
	}
}

// comparisonYears is the fixed window for side-by-side comparison.
const comparisonYears = 3

// Compare runs the three-year simulation and cost-benefit for each
// intervention and tabulates the endpoints.
func Compare(interventions []Intervention, hospital Hospital) ([]ComparisonRow, error) {
	rows := make([]ComparisonRow, 0, len(interventions))
	for _, intervention := range interventions {
		sim, err := Simulate(intervention, comparisonYears)
		if err != nil {
			return nil, err
		}
		final := sim.Years[len(sim.Years)-1]
		cb := CalculateCostBenefit(intervention, hospital)

		rows = append(rows, ComparisonRow{
			Intervention:      intervention.Name,
			ResistanceRate3Yr: final.ResistanceRate,
			UsageRate3Yr:      final.UsageRate,
			AnnualCostSavings: cb.AnnualCostSavings,
			PaybackYears:      cb.PaybackPeriodYears,
		})
	}
	return rows, nil
}

// ReferenceInterventions returns the preset interventions used by the
// dashboard and training material.
func ReferenceInterventions() []Intervention {
	return []Intervention{
		{
			Name:                "Antibiotic Timeout",
			UsageReduction:      15,
			ResistanceImpact:    -0.2,
			ImplementationCost:  30000,
			AnnualCost:          15000,
			InfectionsPrevented: 75,
		},
		{
			Name:                "Prospective Audit and Feedback",
			UsageReduction:      25,
			ResistanceImpact:    -0.3,
			ImplementationCost:  80000,
			AnnualCost:          45000,
			InfectionsPrevented: 140,
		},
		{
			Name:                "Formulary Restriction",
			UsageReduction:      20,
			ResistanceImpact:    -0.25,
			ImplementationCost:  50000,
			AnnualCost:          25000,
			InfectionsPrevented: 100,
		},
		{
			Name:                "Rapid Diagnostics",
			UsageReduction:      10,
			ResistanceImpact:    -0.15,
			ImplementationCost:  120000,
			AnnualCost:          35000,
			InfectionsPrevented: 90,
		},
	}
}

// FindIntervention looks up a reference intervention by name.
func FindIntervention(name string) (Intervention, bool) {
	for _, intervention := range ReferenceInterventions() {
		if intervention.Name == name {
			return intervention, true
		}
	}
	return Intervention{}, false
}
