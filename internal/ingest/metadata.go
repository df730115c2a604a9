package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/amrlab/amrserver/internal/transmission"
)

// metadataAliases maps isolate-metadata header names onto canonical fields.
var metadataAliases = map[string]string{
	"isolate_id": "isolate_id",
	"isolate":    "isolate_id",
	"id":         "isolate_id",
	"pathogen":   "pathogen",
	"organism":   "pathogen",
	"region":     "region",
	"country":    "region",
}

// ReadIsolateMetadata parses a CSV stream of isolate metadata for joining
// onto transmission networks by isolate ID. The header row is required and
// must carry an isolate ID column (or a recognized alias); pathogen and
// region columns are optional. Rows with an empty isolate ID are rejected;
// IDs not present in the sequence set are harmless and simply never joined.
func ReadIsolateMetadata(r io.Reader) (map[string]transmission.IsolateMetadata, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading metadata CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		canonical, ok := metadataAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := columns[canonical]; !dup {
			columns[canonical] = i
		}
	}

	if _, ok := columns["isolate_id"]; !ok {
		return nil, fmt.Errorf("metadata CSV is missing an isolate_id column (or a recognized alias)")
	}

	metadata := make(map[string]transmission.IsolateMetadata)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading metadata CSV line %d: %w", line, err)
		}

		id := strings.TrimSpace(record[columns["isolate_id"]])
		if id == "" {
			return nil, fmt.Errorf("metadata CSV line %d: empty isolate ID", line)
		}
		if _, dup := metadata[id]; dup {
			return nil, fmt.Errorf("metadata CSV line %d: duplicate isolate ID %q", line, id)
		}

		var m transmission.IsolateMetadata
		if idx, ok := columns["pathogen"]; ok {
			m.Pathogen = strings.TrimSpace(record[idx])
		}
		if idx, ok := columns["region"]; ok {
			m.Region = strings.TrimSpace(record[idx])
		}
		metadata[id] = m
	}

	return metadata, nil
}
