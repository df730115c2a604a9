package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadFASTA parses FASTA-formatted sequence data. Each record starts with a
// `>` header line whose first whitespace-separated token is the isolate ID;
// subsequent lines up to the next header are concatenated into the sequence.
// Duplicate IDs and sequence data before the first header are errors.
func ReadFASTA(r io.Reader) (map[string]string, error) {
	sequences := make(map[string]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var currentID string
	var current strings.Builder
	line := 0

	flush := func() {
		if currentID != "" {
			sequences[currentID] = current.String()
			current.Reset()
		}
	}

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, ">") {
			flush()
			fields := strings.Fields(text[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("FASTA line %d: header has no isolate ID", line)
			}
			currentID = fields[0]
			if _, dup := sequences[currentID]; dup {
				return nil, fmt.Errorf("FASTA line %d: duplicate isolate ID %q", line, currentID)
			}
			continue
		}

		if currentID == "" {
			return nil, fmt.Errorf("FASTA line %d: sequence data before first header", line)
		}
		current.WriteString(strings.ToUpper(text))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading FASTA: %w", err)
	}
	flush()

	if len(sequences) == 0 {
		return nil, fmt.Errorf("no FASTA records found")
	}
	return sequences, nil
}
