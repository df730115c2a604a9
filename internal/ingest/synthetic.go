package ingest

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/amrlab/amrserver/internal/surveillance"
	"github.com/amrlab/amrserver/internal/transmission"
)

// Reference dimensions for the synthetic dataset, mirroring the WHO priority
// pathogen list used in the training material.
var (
	syntheticPathogens = []string{
		"E. coli", "K. pneumoniae", "S. aureus", "P. aeruginosa",
		"A. baumannii", "S. pneumoniae", "Enterococcus spp.",
	}
	syntheticAntimicrobials = []string{
		"Ciprofloxacin", "Ceftriaxone", "Meropenem", "Vancomycin",
		"Amoxicillin", "Gentamicin", "Colistin",
	}
	syntheticRegions = []string{
		"North America", "South America", "Europe", "Africa",
		"Asia", "Middle East", "Australia",
	}

	// regionModifier shifts the base rate per region; regions not listed get
	// no shift.
	regionModifier = map[string]float64{
		"Africa":        15,
		"Asia":          12,
		"Europe":        -5,
		"North America": 0,
		"South America": 8,
	}

	syntheticYears = []int{2020, 2021, 2022, 2023}
)

// GenerateObservations produces a deterministic synthetic surveillance
// dataset over the full pathogen x antimicrobial x region x year grid. Rates
// follow a uniform base in [5,30) shifted by region, a +2/year secular trend
// and Gaussian noise, clamped to [2,95] and rounded to one decimal. Sample
// sizes are uniform in [50,500).
func GenerateObservations(seed int64) []surveillance.Observation {
	rng := rand.New(rand.NewSource(seed))

	var observations []surveillance.Observation
	for _, pathogen := range syntheticPathogens {
		for _, antimicrobial := range syntheticAntimicrobials {
			for _, region := range syntheticRegions {
				for _, year := range syntheticYears {
					baseRate := 5 + rng.Float64()*25
					trend := float64(year-2020) * 2
					noise := rng.NormFloat64() * 5

					rate := baseRate + regionModifier[region] + trend + noise
					rate = math.Min(95, math.Max(2, rate))
					rate = math.Round(rate*10) / 10

					observations = append(observations, surveillance.Observation{
						Pathogen:             pathogen,
						Antimicrobial:        antimicrobial,
						Region:               region,
						Period:               year,
						ResistancePercentage: rate,
						SampleSize:           50 + rng.Intn(450),
					})
				}
			}
		}
	}
	return observations
}

// sequenceAlphabet is the nucleotide set for synthetic outbreak sequences.
const sequenceAlphabet = "ACGT"

// GenerateOutbreakSequences simulates a small outbreak for transmission
// network demonstrations: each isolate derives from a common ancestor
// sequence with up to maxMutations random point mutations, so close
// relatives land within the default distance threshold. Metadata assigns
// each isolate a pathogen and region from the reference tables.
func GenerateOutbreakSequences(isolates, sequenceLength, maxMutations int, seed int64) (map[string]string, map[string]transmission.IsolateMetadata) {
	rng := rand.New(rand.NewSource(seed))

	ancestor := make([]byte, sequenceLength)
	for i := range ancestor {
		ancestor[i] = sequenceAlphabet[rng.Intn(len(sequenceAlphabet))]
	}

	sequences := make(map[string]string, isolates)
	metadata := make(map[string]transmission.IsolateMetadata, isolates)

	for i := 0; i < isolates; i++ {
		id := fmt.Sprintf("ISO-%03d", i+1)

		mutated := make([]byte, sequenceLength)
		copy(mutated, ancestor)
		mutations := rng.Intn(maxMutations + 1)
		for m := 0; m < mutations; m++ {
			pos := rng.Intn(sequenceLength)
			mutated[pos] = sequenceAlphabet[rng.Intn(len(sequenceAlphabet))]
		}

		sequences[id] = string(mutated)
		metadata[id] = transmission.IsolateMetadata{
			Pathogen: syntheticPathogens[rng.Intn(3)],
			Region:   syntheticRegions[rng.Intn(len(syntheticRegions))],
		}
	}

	return sequences, metadata
}
