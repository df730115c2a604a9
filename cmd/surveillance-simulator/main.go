package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/amrlab/amrserver/internal/ingest"
)

func main() {
	var (
		output = flag.String("output", "surveillance.csv", "Output CSV file path ('-' for stdout)")
		seed   = flag.Int64("seed", 42, "Random seed for reproducible datasets")
	)
	flag.Parse()

	observations := ingest.GenerateObservations(*seed)

	out := os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := ingest.WriteObservations(out, observations); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing observations: %v\n", err)
		os.Exit(1)
	}

	if *output != "-" {
		fmt.Printf("Wrote %d observations to %s (seed %d)\n", len(observations), *output, *seed)
	}
}
