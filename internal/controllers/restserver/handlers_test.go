package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/amrlab/amrserver/internal/database"
	"github.com/amrlab/amrserver/internal/log"
	"github.com/amrlab/amrserver/internal/surveillance"
	"github.com/amrlab/amrserver/pkg/config"
	"github.com/amrlab/amrserver/pkg/eucast"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()

	db := database.NewClient(&config.DatabaseData{Backend: "sqlite", Path: ":memory:"}, log.GetSugaredLogger())
	if err := db.Connect(); err != nil {
		t.Fatalf("connecting to in-memory store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, nil, config.ServerData{Port: 8090}, db, log.GetSugaredLogger())
	if err != nil {
		t.Fatalf("creating controller: %v", err)
	}
	return ctrl
}

func seedObservations(t *testing.T, ctrl *Controller) {
	t.Helper()
	observations := []surveillance.Observation{
		{Pathogen: "E. coli", Antimicrobial: "Ciprofloxacin", Region: "Europe", Period: 2020, ResistancePercentage: 10, SampleSize: 100},
		{Pathogen: "E. coli", Antimicrobial: "Ciprofloxacin", Region: "Europe", Period: 2021, ResistancePercentage: 12, SampleSize: 100},
		{Pathogen: "E. coli", Antimicrobial: "Ciprofloxacin", Region: "Europe", Period: 2022, ResistancePercentage: 14, SampleSize: 100},
		{Pathogen: "E. coli", Antimicrobial: "Ciprofloxacin", Region: "Europe", Period: 2023, ResistancePercentage: 16, SampleSize: 100},
		{Pathogen: "K. pneumoniae", Antimicrobial: "Meropenem", Region: "Asia", Period: 2022, ResistancePercentage: 72, SampleSize: 80},
		{Pathogen: "K. pneumoniae", Antimicrobial: "Meropenem", Region: "Asia", Period: 2022, ResistancePercentage: 68, SampleSize: 60},
		{Pathogen: "K. pneumoniae", Antimicrobial: "Meropenem", Region: "Asia", Period: 2023, ResistancePercentage: 75, SampleSize: 90},
	}
	if err := ctrl.DB.InsertObservations(observations); err != nil {
		t.Fatalf("seeding observations: %v", err)
	}
}

func doRequest(t *testing.T, ctrl *Controller, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

func TestGetTrends(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/trends?pathogen=E.+coli&antimicrobial=Ciprofloxacin", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats []surveillance.PeriodStatistic
	decodeBody(t, w, &stats)
	if len(stats) != 4 {
		t.Fatalf("expected 4 periods, got %d", len(stats))
	}
	if stats[0].Period != 2020 || stats[0].ResistanceRate != 10 {
		t.Errorf("unexpected first period: %+v", stats[0])
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestGetTrendsParameterValidation(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/trends?pathogen=E.+coli", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing antimicrobial: expected 400, got %d", w.Code)
	}
}

func TestGetTrendsNoData(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/trends?pathogen=P.+aeruginosa&antimicrobial=Colistin", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var payload map[string]string
	decodeBody(t, w, &payload)
	if payload["error"] == "" {
		t.Error("expected an error message in the body")
	}
}

func TestGetForecast(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/forecast?pathogen=E.+coli&antimicrobial=Ciprofloxacin&horizon=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ForecastResponse
	decodeBody(t, w, &resp)
	if len(resp.History) != 4 {
		t.Errorf("expected 4 history points, got %d", len(resp.History))
	}
	if len(resp.Forecast) != 2 {
		t.Fatalf("expected 2 forecast points, got %d", len(resp.Forecast))
	}
	if resp.Forecast[0].Period != 2024 || resp.Forecast[1].Period != 2025 {
		t.Errorf("forecast periods not contiguous: %+v", resp.Forecast)
	}
}

func TestGetForecastInsufficientHistory(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	// Meropenem has only two distinct periods.
	w := doRequest(t, ctrl, http.MethodGet, "/api/forecast?pathogen=K.+pneumoniae&antimicrobial=Meropenem", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetForecastHorizonValidation(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	for _, horizon := range []string{"0", "-1", "two"} {
		w := doRequest(t, ctrl, http.MethodGet, "/api/forecast?pathogen=E.+coli&antimicrobial=Ciprofloxacin&horizon="+horizon, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("horizon %q: expected 400, got %d", horizon, w.Code)
		}
	}
}

func TestGetHeatmapAndPriorities(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/heatmap", "")
	if w.Code != http.StatusOK {
		t.Fatalf("heatmap: expected 200, got %d", w.Code)
	}
	var cells []surveillance.HeatmapCell
	decodeBody(t, w, &cells)
	if len(cells) != 2 {
		t.Errorf("expected 2 observed combinations, got %d", len(cells))
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/priorities?threshold=50", "")
	if w.Code != http.StatusOK {
		t.Fatalf("priorities: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var priorities []surveillance.PriorityCombination
	decodeBody(t, w, &priorities)
	if len(priorities) != 1 || priorities[0].Pathogen != "K. pneumoniae" {
		t.Errorf("unexpected priorities: %+v", priorities)
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/priorities?threshold=99", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("empty priorities: expected 404, got %d", w.Code)
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/priorities?threshold=high", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad threshold: expected 400, got %d", w.Code)
	}
}

func TestGetPrioritiesDefaultThreshold(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	// Mean 35: above the default threshold of 20 but below 50.
	midRange := []surveillance.Observation{
		{Pathogen: "E. coli", Antimicrobial: "Ampicillin", Region: "Europe", Period: 2021, ResistancePercentage: 30, SampleSize: 100},
		{Pathogen: "E. coli", Antimicrobial: "Ampicillin", Region: "Europe", Period: 2022, ResistancePercentage: 35, SampleSize: 100},
		{Pathogen: "E. coli", Antimicrobial: "Ampicillin", Region: "Europe", Period: 2023, ResistancePercentage: 40, SampleSize: 100},
	}
	if err := ctrl.DB.InsertObservations(midRange); err != nil {
		t.Fatalf("seeding mid-range combination: %v", err)
	}

	w := doRequest(t, ctrl, http.MethodGet, "/api/priorities", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var priorities []surveillance.PriorityCombination
	decodeBody(t, w, &priorities)
	if len(priorities) != 2 {
		t.Fatalf("default threshold of 20 should admit 2 combinations, got %d: %+v", len(priorities), priorities)
	}
	if priorities[0].Antimicrobial != "Meropenem" || priorities[1].Antimicrobial != "Ampicillin" {
		t.Errorf("unexpected ordering: %+v", priorities)
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/priorities?threshold=50", "")
	decodeBody(t, w, &priorities)
	if len(priorities) != 1 {
		t.Errorf("threshold 50 should exclude the mid-range combination, got %+v", priorities)
	}
}

func TestGetCatalog(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/catalog", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var catalog surveillance.Catalog
	decodeBody(t, w, &catalog)
	if len(catalog.Pathogens) != 2 || catalog.MinPeriod != 2020 || catalog.MaxPeriod != 2023 {
		t.Errorf("unexpected catalog: %+v", catalog)
	}
}

func TestPostObservations(t *testing.T) {
	ctrl := newTestController(t)

	csv := "pathogen,antimicrobial,region,period,resistance_percentage,sample_size\n" +
		"E. coli,Ciprofloxacin,Europe,2020,15.5,120\n" +
		"S. aureus,Vancomycin,Europe,2020,1.5,80\n"

	w := doRequest(t, ctrl, http.MethodPost, "/api/observations", csv)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp UploadResponse
	decodeBody(t, w, &resp)
	if resp.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", resp.Inserted)
	}

	count, err := ctrl.DB.Count()
	if err != nil {
		t.Fatalf("counting observations: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 stored observations, got %d", count)
	}
}

func TestPostObservationsRejectsInvalid(t *testing.T) {
	ctrl := newTestController(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing columns", "pathogen,antimicrobial\nE. coli,Ciprofloxacin\n"},
		{"out of range rate", "pathogen,antimicrobial,region,period,resistance_percentage,sample_size\nE. coli,Ciprofloxacin,Europe,2020,150,120\n"},
		{"empty body", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, ctrl, http.MethodPost, "/api/observations", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	count, err := ctrl.DB.Count()
	if err != nil {
		t.Fatalf("counting observations: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected uploads must not store rows, found %d", count)
	}
}

func TestPostStewardshipSimulate(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodPost, "/api/stewardship/simulate", `{"name":"Antibiotic Timeout","years":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sim struct {
		Intervention string `json:"intervention"`
		Years        []struct {
			Year           int     `json:"year"`
			ResistanceRate float64 `json:"resistance_rate"`
		} `json:"years"`
	}
	decodeBody(t, w, &sim)
	if sim.Intervention != "Antibiotic Timeout" {
		t.Errorf("unexpected intervention name %q", sim.Intervention)
	}
	if len(sim.Years) != 6 {
		t.Errorf("expected baseline plus 5 years, got %d entries", len(sim.Years))
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/stewardship/simulate", `{"name":"No Such Program","years":5}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown intervention: expected 400, got %d", w.Code)
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/stewardship/simulate", `{"name":"Antibiotic Timeout","years":0}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-positive years: expected 400, got %d", w.Code)
	}
}

func TestPostStewardshipCostBenefit(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodPost, "/api/stewardship/costbenefit", `{"name":"Antibiotic Timeout"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var cb struct {
		AnnualCostSavings float64 `json:"annual_cost_savings"`
	}
	decodeBody(t, w, &cb)
	// 75 prevented infections x 5 days x $1500/day at the default hospital.
	if cb.AnnualCostSavings != 562500 {
		t.Errorf("expected 562500 annual savings, got %v", cb.AnnualCostSavings)
	}
}

func TestPostStewardshipCompare(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodPost, "/api/stewardship/compare", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rows []struct {
		Intervention string `json:"intervention"`
	}
	decodeBody(t, w, &rows)
	if len(rows) != 4 {
		t.Errorf("expected the 4 reference interventions, got %d rows", len(rows))
	}
}

func TestPostNetwork(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodPost, "/api/network", `{"synthetic":12,"seed":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp NetworkResponse
	decodeBody(t, w, &resp)
	if resp.Nodes != 12 {
		t.Errorf("expected 12 nodes, got %d", resp.Nodes)
	}
	if len(resp.Isolates) != 12 {
		t.Errorf("expected 12 isolates, got %d", len(resp.Isolates))
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/network", `{"sequences":{"a":"ACGT","b":"ACGA"},"threshold":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("uploaded sequences: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &resp)
	if len(resp.Edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(resp.Edges))
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/network", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty request: expected 400, got %d", w.Code)
	}
}

func TestPostNetworkDefaultClusterSize(t *testing.T) {
	ctrl := newTestController(t)

	// A three-isolate chain, a close pair, and a distant singleton.
	body := `{"sequences":{
		"a":"AAAAAAAAAA",
		"b":"AAAAAAAAAT",
		"c":"AAAAAAAATT",
		"d":"CCCCCCCCCC",
		"e":"CCCCCCCCCT",
		"f":"GGGGGGGGGG"}}`

	w := doRequest(t, ctrl, http.MethodPost, "/api/network", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp NetworkResponse
	decodeBody(t, w, &resp)
	if len(resp.Clusters) != 1 || resp.Clusters[0].Size != 3 {
		t.Errorf("default minimum cluster size of 3 should keep only the 3-isolate chain, got %+v", resp.Clusters)
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/network", `{"sequences":{
		"a":"AAAAAAAAAA",
		"b":"AAAAAAAAAT",
		"c":"AAAAAAAATT",
		"d":"CCCCCCCCCC",
		"e":"CCCCCCCCCT",
		"f":"GGGGGGGGGG"},"min_cluster_size":2}`)
	decodeBody(t, w, &resp)
	if len(resp.Clusters) != 2 {
		t.Errorf("minimum cluster size 2 should also surface the pair, got %+v", resp.Clusters)
	}
}

func TestPostNetworkFASTAMetadata(t *testing.T) {
	ctrl := newTestController(t)

	request, err := json.Marshal(NetworkRequest{
		Fasta: ">iso1\nAAAAAAAAAA\n>iso2\nAAAAAAAAAT\n>iso3\nAAAAAAAATT\n",
		MetadataCSV: "isolate_id,pathogen,region\n" +
			"iso1,K. pneumoniae,Europe\n" +
			"iso2,K. pneumoniae,Europe\n",
		MinClusterSize: 2,
	})
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	w := doRequest(t, ctrl, http.MethodPost, "/api/network", string(request))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp NetworkResponse
	decodeBody(t, w, &resp)
	if resp.Nodes != 3 {
		t.Errorf("expected 3 nodes from FASTA, got %d", resp.Nodes)
	}
	if len(resp.Metadata) != 2 {
		t.Fatalf("expected metadata joined for 2 isolates, got %+v", resp.Metadata)
	}
	if m := resp.Metadata["iso1"]; m.Pathogen != "K. pneumoniae" || m.Region != "Europe" {
		t.Errorf("unexpected iso1 metadata: %+v", m)
	}
	if _, present := resp.Metadata["iso3"]; present {
		t.Error("iso3 has no metadata row and must not appear in the join")
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/network", `{"fasta":"not fasta at all"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed FASTA: expected 400, got %d", w.Code)
	}

	malformed, err := json.Marshal(NetworkRequest{
		Fasta:       ">iso1\nAAAA\n",
		MetadataCSV: "pathogen\nE. coli\n",
	})
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	w = doRequest(t, ctrl, http.MethodPost, "/api/network", string(malformed))
	if w.Code != http.StatusBadRequest {
		t.Errorf("metadata CSV without isolate IDs: expected 400, got %d", w.Code)
	}
}

func TestGetEucast(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodGet, "/api/eucast", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var table []eucast.Breakpoint
	decodeBody(t, w, &table)
	if len(table) != len(eucast.ReferenceBreakpoints) {
		t.Errorf("expected the full reference table, got %d rows", len(table))
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/eucast?pathogen=E.+coli&antimicrobial=Ciprofloxacin&mic=0.25", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp EucastResponse
	decodeBody(t, w, &resp)
	if resp.Interpretation != eucast.Susceptible {
		t.Errorf("MIC at the susceptible bound should classify S, got %q", resp.Interpretation)
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/eucast?pathogen=E.+coli&antimicrobial=Colistin", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown pair: expected 404, got %d", w.Code)
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/eucast?pathogen=E.+coli", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("pathogen without antimicrobial: expected 400, got %d", w.Code)
	}

	w = doRequest(t, ctrl, http.MethodGet, "/api/eucast?pathogen=E.+coli&antimicrobial=Ciprofloxacin&mic=low", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric mic: expected 400, got %d", w.Code)
	}
}

func TestQuizEndpoints(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodGet, "/api/quiz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "correct") {
		t.Error("quiz payload must not expose answers")
	}

	var questions []struct {
		ID int `json:"id"`
	}
	decodeBody(t, w, &questions)
	if len(questions) == 0 {
		t.Fatal("expected a non-empty question bank")
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/quiz/grade", `{"answers":{"1":0}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("grade: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var attempt struct {
		AttemptID string `json:"attempt_id"`
		Verdict   string `json:"verdict"`
	}
	decodeBody(t, w, &attempt)
	if attempt.AttemptID == "" || attempt.Verdict == "" {
		t.Errorf("incomplete attempt: %+v", attempt)
	}

	w = doRequest(t, ctrl, http.MethodPost, "/api/quiz/grade", `{"answers":{"999":0}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown question: expected 400, got %d", w.Code)
	}
}

func TestMsgPackNegotiation(t *testing.T) {
	ctrl := newTestController(t)
	seedObservations(t, ctrl)

	w := doRequest(t, ctrl, http.MethodGet, "/api/catalog?format=msgpack", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/x-msgpack" {
		t.Errorf("expected msgpack content type, got %q", got)
	}
}

func TestDashboardServed(t *testing.T) {
	ctrl := newTestController(t)

	w := doRequest(t, ctrl, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "AMR Surveillance Dashboard") {
		t.Error("dashboard page not served at /")
	}
}
