package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amrlab/amrserver/internal/ingest"
	"github.com/amrlab/amrserver/internal/log"
	"github.com/amrlab/amrserver/internal/quiz"
	"github.com/amrlab/amrserver/internal/stewardship"
	"github.com/amrlab/amrserver/internal/surveillance"
	"github.com/amrlab/amrserver/internal/transmission"
	"github.com/amrlab/amrserver/pkg/eucast"
	"github.com/amrlab/amrserver/pkg/responseformat"
)

// Defaults for optional query and body parameters.
const (
	defaultForecastHorizon   = 3
	defaultPriorityThreshold = 20.0
	defaultMinClusterSize    = 3

	syntheticSequenceLength = 200
	syntheticMaxMutations   = 8
	syntheticDefaultSeed    = 42
)

// maxUploadBytes caps CSV observation uploads.
const maxUploadBytes = 16 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// writeDomainError maps the analytics error taxonomy onto HTTP statuses.
func (h *Handlers) writeDomainError(w http.ResponseWriter, req *http.Request, err error) {
	var (
		noData       *surveillance.NoDataError
		insufficient *surveillance.InsufficientDataError
		fitErr       *surveillance.NumericalFitError
		validation   *surveillance.ValidationError
	)
	switch {
	case errors.As(err, &validation):
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
	case errors.As(err, &noData):
		h.formatter.WriteError(w, req, http.StatusNotFound, err.Error())
	case errors.As(err, &insufficient), errors.As(err, &fitErr):
		h.formatter.WriteError(w, req, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Errorf("internal error handling %v: %v", req.URL.Path, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "internal error")
	}
}

// requireCombination pulls the mandatory pathogen/antimicrobial query
// parameters plus the optional region filter.
func (h *Handlers) requireCombination(w http.ResponseWriter, req *http.Request) (pathogen, antimicrobial, region string, ok bool) {
	pathogen = req.URL.Query().Get("pathogen")
	antimicrobial = req.URL.Query().Get("antimicrobial")
	region = req.URL.Query().Get("region")
	if pathogen == "" || antimicrobial == "" {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "pathogen and antimicrobial parameters are required")
		return "", "", "", false
	}
	return pathogen, antimicrobial, region, true
}

// GetTrends serves aggregated resistance trends for one combination.
func (h *Handlers) GetTrends(w http.ResponseWriter, req *http.Request) {
	pathogen, antimicrobial, region, ok := h.requireCombination(w, req)
	if !ok {
		return
	}

	observations, err := h.controller.DB.FetchObservations(pathogen, antimicrobial, region)
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	stats, err := surveillance.Aggregate(observations, pathogen, antimicrobial, region)
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, stats, nil)
}

// GetForecast serves a trend-plus-forecast for one combination.
func (h *Handlers) GetForecast(w http.ResponseWriter, req *http.Request) {
	pathogen, antimicrobial, region, ok := h.requireCombination(w, req)
	if !ok {
		return
	}

	horizon := defaultForecastHorizon
	if raw := req.URL.Query().Get("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "horizon must be an integer")
			return
		}
		horizon = parsed
	}
	if horizon < 1 {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "horizon must be a positive integer")
		return
	}

	observations, err := h.controller.DB.FetchObservations(pathogen, antimicrobial, region)
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	history, err := surveillance.Aggregate(observations, pathogen, antimicrobial, region)
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	forecast, err := surveillance.Forecast(history, horizon)
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, &ForecastResponse{
		Pathogen:      pathogen,
		Antimicrobial: antimicrobial,
		Region:        region,
		History:       history,
		Forecast:      forecast,
	}, nil)
}

// csvListParam splits a comma-separated query parameter, dropping empty
// entries.
func csvListParam(req *http.Request, name string) []string {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// GetHeatmap serves the pathogen x antimicrobial mean-resistance grid.
func (h *Handlers) GetHeatmap(w http.ResponseWriter, req *http.Request) {
	observations, err := h.controller.DB.FetchAll()
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	pathogens := csvListParam(req, "pathogens")
	antimicrobials := csvListParam(req, "antimicrobials")

	h.formatter.WriteResponse(w, req, surveillance.Heatmap(observations, pathogens, antimicrobials), nil)
}

// GetPriorities serves combinations whose mean resistance exceeds the
// threshold.
func (h *Handlers) GetPriorities(w http.ResponseWriter, req *http.Request) {
	threshold := defaultPriorityThreshold
	if raw := req.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = parsed
	}

	observations, err := h.controller.DB.FetchAll()
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	priorities, err := surveillance.Priorities(observations, threshold)
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, priorities, nil)
}

// GetCatalog serves the distinct dimensions present in storage.
func (h *Handlers) GetCatalog(w http.ResponseWriter, req *http.Request) {
	observations, err := h.controller.DB.FetchAll()
	if err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, surveillance.BuildCatalog(observations), nil)
}

// PostObservations ingests a CSV body of surveillance observations.
func (h *Handlers) PostObservations(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	observations, err := ingest.ReadObservations(http.MaxBytesReader(w, req.Body, maxUploadBytes))
	if err != nil {
		var validation *surveillance.ValidationError
		if errors.As(err, &validation) {
			h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		} else {
			h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("could not parse CSV: %v", err))
		}
		return
	}

	if err := h.controller.DB.InsertObservations(observations); err != nil {
		h.writeDomainError(w, req, err)
		return
	}

	log.Infof("stored %d uploaded observations", len(observations))
	h.formatter.WriteResponse(w, req, &UploadResponse{Inserted: len(observations)}, nil)
}

// decodeJSONBody decodes a JSON request body, rejecting unknown fields.
func (h *Handlers) decodeJSONBody(w http.ResponseWriter, req *http.Request, dst any) bool {
	defer req.Body.Close()
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// resolveIntervention picks a reference intervention by name or accepts a
// caller-supplied one.
func (h *Handlers) resolveIntervention(w http.ResponseWriter, req *http.Request, name string, custom *stewardship.Intervention) (stewardship.Intervention, bool) {
	if custom != nil {
		return *custom, true
	}
	if name == "" {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "either name or intervention must be provided")
		return stewardship.Intervention{}, false
	}
	intervention, found := stewardship.FindIntervention(name)
	if !found {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("unknown intervention %q", name))
		return stewardship.Intervention{}, false
	}
	return intervention, true
}

// PostStewardshipSimulate projects resistance and usage under an
// intervention.
func (h *Handlers) PostStewardshipSimulate(w http.ResponseWriter, req *http.Request) {
	var body SimulateRequest
	if !h.decodeJSONBody(w, req, &body) {
		return
	}

	intervention, ok := h.resolveIntervention(w, req, body.Name, body.Intervention)
	if !ok {
		return
	}

	simulation, err := stewardship.Simulate(intervention, body.Years)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	h.formatter.WriteResponse(w, req, simulation, nil)
}

// PostStewardshipCostBenefit evaluates an intervention's financial case.
func (h *Handlers) PostStewardshipCostBenefit(w http.ResponseWriter, req *http.Request) {
	var body CostBenefitRequest
	if !h.decodeJSONBody(w, req, &body) {
		return
	}

	intervention, ok := h.resolveIntervention(w, req, body.Name, body.Intervention)
	if !ok {
		return
	}

	hospital := stewardship.DefaultHospital()
	if body.Hospital != nil {
		hospital = *body.Hospital
	}

	h.formatter.WriteResponse(w, req, stewardship.CalculateCostBenefit(intervention, hospital), nil)
}

// PostStewardshipCompare tabulates interventions side by side. With no
// interventions in the body, the reference set is compared.
func (h *Handlers) PostStewardshipCompare(w http.ResponseWriter, req *http.Request) {
	var body CompareRequest
	if !h.decodeJSONBody(w, req, &body) {
		return
	}

	interventions := body.Interventions
	if len(interventions) == 0 {
		interventions = stewardship.ReferenceInterventions()
	}

	hospital := stewardship.DefaultHospital()
	if body.Hospital != nil {
		hospital = *body.Hospital
	}

	rows, err := stewardship.Compare(interventions, hospital)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	h.formatter.WriteResponse(w, req, rows, nil)
}

// PostNetwork builds a transmission network from uploaded sequences or a
// synthetic outbreak and summarizes it.
func (h *Handlers) PostNetwork(w http.ResponseWriter, req *http.Request) {
	var body NetworkRequest
	if !h.decodeJSONBody(w, req, &body) {
		return
	}

	sequences := body.Sequences
	metadata := body.Metadata
	if len(sequences) == 0 && body.Fasta != "" {
		parsed, err := ingest.ReadFASTA(strings.NewReader(body.Fasta))
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("could not parse FASTA: %v", err))
			return
		}
		sequences = parsed
	}
	if len(sequences) == 0 {
		if body.Synthetic <= 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "either sequences, fasta, or a positive synthetic isolate count must be provided")
			return
		}
		seed := body.Seed
		if seed == 0 {
			seed = syntheticDefaultSeed
		}
		sequences, metadata = ingest.GenerateOutbreakSequences(body.Synthetic, syntheticSequenceLength, syntheticMaxMutations, seed)
	}

	if body.MetadataCSV != "" {
		parsed, err := ingest.ReadIsolateMetadata(strings.NewReader(body.MetadataCSV))
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("could not parse metadata CSV: %v", err))
			return
		}
		metadata = parsed
	}

	threshold := body.Threshold
	if threshold == 0 {
		threshold = transmission.DefaultDistanceThreshold
	}

	network, err := transmission.BuildNetwork(sequences, metadata, threshold)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	minSize := body.MinClusterSize
	if minSize == 0 {
		minSize = defaultMinClusterSize
	}

	joined := make(map[string]transmission.IsolateMetadata)
	for _, id := range network.Isolates() {
		if m, ok := network.Metadata(id); ok {
			joined[id] = m
		}
	}

	h.formatter.WriteResponse(w, req, &NetworkResponse{
		Nodes:      network.NodeCount(),
		Isolates:   network.Isolates(),
		Metadata:   joined,
		Edges:      network.Edges(),
		Clusters:   network.Clusters(minSize),
		Centrality: network.Centrality(),
	}, nil)
}

// GetEucast serves the reference breakpoint table, or interprets an MIC
// against one pathogen/antimicrobial breakpoint when those parameters are
// given.
func (h *Handlers) GetEucast(w http.ResponseWriter, req *http.Request) {
	pathogen := req.URL.Query().Get("pathogen")
	antimicrobial := req.URL.Query().Get("antimicrobial")

	if pathogen == "" && antimicrobial == "" {
		h.formatter.WriteResponse(w, req, eucast.ReferenceBreakpoints, nil)
		return
	}
	if pathogen == "" || antimicrobial == "" {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "pathogen and antimicrobial must be provided together")
		return
	}

	bp, found := eucast.Lookup(pathogen, antimicrobial)
	if !found {
		h.formatter.WriteError(w, req, http.StatusNotFound, fmt.Sprintf("no reference breakpoint for %s / %s", pathogen, antimicrobial))
		return
	}

	resp := &EucastResponse{Breakpoint: bp}
	if raw := req.URL.Query().Get("mic"); raw != "" {
		mic, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "mic must be a number")
			return
		}
		resp.MIC = &mic
		resp.Interpretation = eucast.Interpret(mic, bp)
	}

	h.formatter.WriteResponse(w, req, resp, nil)
}

// GetQuiz serves the question bank with answers withheld.
func (h *Handlers) GetQuiz(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, quiz.Questions(), nil)
}

// PostQuizGrade grades a set of answers.
func (h *Handlers) PostQuizGrade(w http.ResponseWriter, req *http.Request) {
	var body GradeRequest
	if !h.decodeJSONBody(w, req, &body) {
		return
	}

	attempt, err := quiz.Grade(body.Answers)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	h.formatter.WriteResponse(w, req, attempt, nil)
}
