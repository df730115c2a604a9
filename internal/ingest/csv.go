// Package ingest loads surveillance observations and genetic sequences from
// external formats (GLASS-style CSV, FASTA) and generates synthetic datasets
// for demonstration and testing.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amrlab/amrserver/internal/surveillance"
)

// columnAliases maps the header names seen in the wild (WHO GLASS exports,
// EARS-Net extracts, lab spreadsheets) onto canonical field names.
var columnAliases = map[string]string{
	"pathogen":              "pathogen",
	"organism":              "pathogen",
	"antimicrobial":         "antimicrobial",
	"antibiotic":            "antimicrobial",
	"region":                "region",
	"country":               "region",
	"country_name":          "region",
	"period":                "period",
	"year":                  "period",
	"reporting_year":        "period",
	"resistance_percentage": "resistance_percentage",
	"resistance_rate":       "resistance_percentage",
	"sample_size":           "sample_size",
	"total_isolates":        "sample_size",
}

// ReadObservations parses a CSV stream of surveillance records. The header
// row is required; column names are matched case-insensitively through the
// GLASS alias table. Pathogen, antimicrobial, period, resistance percentage
// and sample size columns are mandatory; region is optional. Every record is
// validated, so a malformed row surfaces as a surveillance.ValidationError.
func ReadObservations(r io.Reader) ([]surveillance.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := columns[canonical]; !dup {
			columns[canonical] = i
		}
	}

	for _, required := range []string{"pathogen", "antimicrobial", "period", "resistance_percentage", "sample_size"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV is missing a %s column (or a recognized alias)", required)
		}
	}

	var observations []surveillance.Observation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		period, err := strconv.Atoi(strings.TrimSpace(record[columns["period"]]))
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid period: %w", line, err)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(record[columns["resistance_percentage"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid resistance percentage: %w", line, err)
		}
		sampleSize, err := strconv.Atoi(strings.TrimSpace(record[columns["sample_size"]]))
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid sample size: %w", line, err)
		}

		obs := surveillance.Observation{
			Pathogen:             strings.TrimSpace(record[columns["pathogen"]]),
			Antimicrobial:        strings.TrimSpace(record[columns["antimicrobial"]]),
			Period:               period,
			ResistancePercentage: rate,
			SampleSize:           sampleSize,
		}
		if idx, ok := columns["region"]; ok {
			obs.Region = strings.TrimSpace(record[idx])
		}
		observations = append(observations, obs)
	}

	if err := surveillance.ValidateAll(observations); err != nil {
		return nil, err
	}
	return observations, nil
}

// WriteObservations writes observations as canonical-header CSV.
func WriteObservations(w io.Writer, observations []surveillance.Observation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"pathogen", "antimicrobial", "region", "period", "resistance_percentage", "sample_size"}); err != nil {
		return err
	}
	for _, o := range observations {
		record := []string{
			o.Pathogen,
			o.Antimicrobial,
			o.Region,
			strconv.Itoa(o.Period),
			strconv.FormatFloat(o.ResistancePercentage, 'f', 1, 64),
			strconv.Itoa(o.SampleSize),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
