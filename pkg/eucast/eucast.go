// Package eucast provides MIC interpretation against EUCAST clinical
// breakpoints
package eucast

// Interpretation is the standard susceptibility category for an isolate.
type Interpretation string

const (
	Susceptible  Interpretation = "S"
	Intermediate Interpretation = "I"
	Resistant    Interpretation = "R"
)

// Breakpoint holds the EUCAST MIC bounds (mg/L) for one pathogen/agent
// combination: at or below Susceptible is S, above Resistant is R, anything
// between is I.
type Breakpoint struct {
	Pathogen      string  `json:"pathogen"`
	Antimicrobial string  `json:"antimicrobial"`
	Susceptible   float64 `json:"susceptible"`
	Resistant     float64 `json:"resistant"`
}

// Interpret classifies an MIC value against a breakpoint.
func Interpret(mic float64, bp Breakpoint) Interpretation {
	switch {
	case mic <= bp.Susceptible:
		return Susceptible
	case mic > bp.Resistant:
		return Resistant
	default:
		return Intermediate
	}
}

// ReferenceBreakpoints is a small teaching subset of the EUCAST tables.
var ReferenceBreakpoints = []Breakpoint{
	{Pathogen: "E. coli", Antimicrobial: "Ciprofloxacin", Susceptible: 0.25, Resistant: 0.5},
	{Pathogen: "E. coli", Antimicrobial: "Meropenem", Susceptible: 2, Resistant: 8},
	{Pathogen: "S. aureus", Antimicrobial: "Vancomycin", Susceptible: 2, Resistant: 2},
	{Pathogen: "K. pneumoniae", Antimicrobial: "Ceftriaxone", Susceptible: 1, Resistant: 2},
	{Pathogen: "P. aeruginosa", Antimicrobial: "Colistin", Susceptible: 2, Resistant: 2},
}

// Lookup finds the reference breakpoint for a pathogen/antimicrobial pair.
func Lookup(pathogen, antimicrobial string) (Breakpoint, bool) {
	for _, bp := range ReferenceBreakpoints {
		if bp.Pathogen == pathogen && bp.Antimicrobial == antimicrobial {
			return bp, true
		}
	}
	return Breakpoint{}, false
}
