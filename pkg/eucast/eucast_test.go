package eucast

import "testing"

func TestInterpret(t *testing.T) {
	bp := Breakpoint{Pathogen: "E. coli", Antimicrobial: "Ciprofloxacin", Susceptible: 0.25, Resistant: 0.5}

	tests := []struct {
		name     string
		mic      float64
		expected Interpretation
	}{
		{name: "well below susceptible bound", mic: 0.06, expected: Susceptible},
		{name: "exactly at susceptible bound", mic: 0.25, expected: Susceptible},
		{name: "between the bounds", mic: 0.4, expected: Intermediate},
		{name: "exactly at resistant bound", mic: 0.5, expected: Intermediate},
		{name: "above resistant bound", mic: 1.0, expected: Resistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpret(tt.mic, bp); got != tt.expected {
				t.Errorf("MIC %.2f: expected %s, got %s", tt.mic, tt.expected, got)
			}
		})
	}
}

func TestInterpretCollapsedBreakpoint(t *testing.T) {
	// Agents like vancomycin have S and R bounds at the same MIC, so no
	// intermediate category exists.
	bp, ok := Lookup("S. aureus", "Vancomycin")
	if !ok {
		t.Fatal("expected reference breakpoint for S. aureus / Vancomycin")
	}
	if got := Interpret(2, bp); got != Susceptible {
		t.Errorf("MIC at bound: expected S, got %s", got)
	}
	if got := Interpret(4, bp); got != Resistant {
		t.Errorf("MIC above bound: expected R, got %s", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("E. coli", "Vancomycin"); ok {
		t.Error("unexpected breakpoint for unlisted combination")
	}
}
