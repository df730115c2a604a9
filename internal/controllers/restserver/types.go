package restserver

import (
	"github.com/amrlab/amrserver/internal/stewardship"
	"github.com/amrlab/amrserver/internal/surveillance"
	"github.com/amrlab/amrserver/internal/transmission"
	"github.com/amrlab/amrserver/pkg/eucast"
)

// ForecastResponse carries the observed history alongside the projected
// points so clients can chart both on one axis.
type ForecastResponse struct {
	Pathogen      string                         `json:"pathogen"`
	Antimicrobial string                         `json:"antimicrobial"`
	Region        string                         `json:"region,omitempty"`
	History       []surveillance.PeriodStatistic `json:"history"`
	Forecast      []surveillance.ForecastPoint   `json:"forecast"`
}

// UploadResponse reports a CSV observation upload.
type UploadResponse struct {
	Inserted int `json:"inserted"`
}

// SimulateRequest names a reference intervention or supplies a custom one.
type SimulateRequest struct {
	Name         string                    `json:"name,omitempty"`
	Intervention *stewardship.Intervention `json:"intervention,omitempty"`
	Years        int                       `json:"years"`
}

// CostBenefitRequest evaluates an intervention at a hospital. Hospital is
// optional and defaults to the 500-bed reference hospital.
type CostBenefitRequest struct {
	Name         string                    `json:"name,omitempty"`
	Intervention *stewardship.Intervention `json:"intervention,omitempty"`
	Hospital     *stewardship.Hospital     `json:"hospital,omitempty"`
}

// CompareRequest compares interventions side by side. An empty list
// compares the reference interventions.
type CompareRequest struct {
	Interventions []stewardship.Intervention `json:"interventions,omitempty"`
	Hospital      *stewardship.Hospital      `json:"hospital,omitempty"`
}

// NetworkRequest builds a transmission network from uploaded sequences (a
// JSON map or FASTA text), or from a seeded synthetic outbreak when
// Synthetic is positive. Isolate metadata may come inline or as CSV text
// joined by isolate ID.
type NetworkRequest struct {
	Sequences      map[string]string                       `json:"sequences,omitempty"`
	Fasta          string                                  `json:"fasta,omitempty"`
	Metadata       map[string]transmission.IsolateMetadata `json:"metadata,omitempty"`
	MetadataCSV    string                                  `json:"metadata_csv,omitempty"`
	Synthetic      int                                     `json:"synthetic,omitempty"`
	Seed           int64                                   `json:"seed,omitempty"`
	Threshold      int                                     `json:"threshold,omitempty"`
	MinClusterSize int                                     `json:"min_cluster_size,omitempty"`
}

// NetworkResponse summarizes a transmission network.
type NetworkResponse struct {
	Nodes      int                                     `json:"nodes"`
	Isolates   []string                                `json:"isolates"`
	Metadata   map[string]transmission.IsolateMetadata `json:"metadata,omitempty"`
	Edges      []transmission.Edge                     `json:"edges"`
	Clusters   []transmission.Cluster                  `json:"clusters"`
	Centrality []transmission.CentralityRow            `json:"centrality"`
}

// EucastResponse is one reference breakpoint, with the interpretation of a
// submitted MIC when one was given.
type EucastResponse struct {
	Breakpoint     eucast.Breakpoint     `json:"breakpoint"`
	MIC            *float64              `json:"mic,omitempty"`
	Interpretation eucast.Interpretation `json:"interpretation,omitempty"`
}

// GradeRequest maps question IDs to selected option indexes.
type GradeRequest struct {
	Answers map[int]int `json:"answers"`
}
