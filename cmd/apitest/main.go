package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// PredictionData is the payload of /api/v1/predictions
type PredictionData struct {
	PredictedStartDate string   `json:"predicted_start_date"`
	Range              []string `json:"range"`
	Confidence         string   `json:"confidence"`
	BasedOn            string   `json:"based_on"`
	AverageCycleLength int      `json:"average_cycle_length"`
	CycleLengths       []int    `json:"cycle_lengths"`
	Error              string   `json:"error"`
}

// PhaseData is the payload of /api/v1/phase
type PhaseData struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Status   string `json:"status"`
	Phase    string `json:"phase"`
	CycleDay int    `json:"cycle_day"`
}

type SummaryData struct {
	Prediction PredictionData `json:"prediction"`
	Phase      PhaseData      `json:"phase"`
}

type PhaseRange struct {
	Name          string `json:"name"`
	FirstCycleDay int    `json:"first_cycle_day"`
	LastCycleDay  *int   `json:"last_cycle_day"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Cycle API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testPhases()
	tr.testPredictions()
	tr.testPhaseClassification()
	tr.testSummary()
	tr.testEdgeCases()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.get("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testPhases() {
	tr.printSection("Phase Policy")

	var phases []PhaseRange
	if err := tr.get("/api/v1/phases", &phases); err != nil {
		tr.recordError("Phases", err.Error())
		return
	}
	if len(phases) == 0 {
		tr.recordError("Phases", "Empty phase policy")
		return
	}

	last := phases[len(phases)-1]
	if last.LastCycleDay != nil {
		tr.recordError("Phases", fmt.Sprintf("Last phase %s should be open-ended", last.Name))
		return
	}
	tr.recordSuccess(fmt.Sprintf("%d phases, last is %s", len(phases), last.Name))

	if tr.verbose {
		for _, p := range phases {
			end := "…"
			if p.LastCycleDay != nil {
				end = fmt.Sprint(*p.LastCycleDay)
			}
			fmt.Printf("    %-12s days %d-%s\n", p.Name, p.FirstCycleDay, end)
		}
	}
}

func (tr *TestRunner) testPredictions() {
	tr.printSection("Predictions")

	testCases := []struct {
		starts      []string
		expected    string
		description string
	}{
		{[]string{"2025-10-06", "2025-11-01"}, "2025-11-27", "Single 26-day cycle"},
		{[]string{"2025-01-01", "2025-01-29", "2025-02-26"}, "2025-03-26", "Two 28-day cycles"},
		{[]string{"2025-01-01", "2025-01-27", "2025-02-23"}, "2025-03-22", "Mean 26.5 rounds up"},
		{[]string{"2024-02-01", "2024-02-29", "2024-03-28"}, "2024-04-25", "Across leap day"},
		{[]string{"2025-11-01", "2025-10-06"}, "2025-11-27", "Unordered log"},
	}

	for _, tc := range testCases {
		var data PredictionData
		if err := tr.post("/api/v1/predictions", map[string]any{"period_starts": tc.starts}, &data); err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}

		if data.PredictedStartDate != tc.expected {
			tr.recordError(tc.description, fmt.Sprintf("Expected %s, got %s", tc.expected, data.PredictedStartDate))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s", tc.description, data.PredictedStartDate))

		if tr.verbose {
			tr.printPredictionDetail(data)
		}
	}

	var data PredictionData
	if err := tr.post("/api/v1/predictions", map[string]any{"period_starts": []string{"2025-10-06"}}, &data); err != nil {
		tr.recordError("Insufficient data", err.Error())
	} else if data.Error == "" || data.PredictedStartDate != "" {
		tr.recordError("Insufficient data", "Expected an error message and no prediction")
	} else {
		tr.recordSuccess(fmt.Sprintf("Single start: %q", data.Error))
	}
}

func (tr *TestRunner) testPhaseClassification() {
	tr.printSection("Phase Classification")

	starts := []string{"2025-10-06", "2025-11-01"}
	testCases := []struct {
		date     string
		expected string
	}{
		{"2025-11-01", "Cycle Day 1 — Menstrual Phase"},
		{"2025-11-06", "Cycle Day 6 — Menstrual Phase"},
		{"2025-11-07", "Cycle Day 7 — Follicular Phase"},
		{"2025-11-14", "Cycle Day 14 — Ovulatory Phase"},
		{"2025-11-17", "Cycle Day 17 — Luteal Phase"},
		{"2025-10-20", "Invalid current date: before last period logged"},
	}

	for _, tc := range testCases {
		var data PhaseData
		if err := tr.post("/api/v1/phase", map[string]any{"period_starts": starts, "date": tc.date}, &data); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		if data.Label == tc.expected {
			tr.recordSuccess(fmt.Sprintf("%s: %s", tc.date, data.Label))
		} else {
			tr.recordError(tc.date, fmt.Sprintf("Expected %q, got %q", tc.expected, data.Label))
		}
	}

	var today PhaseData
	if err := tr.post("/api/v1/phase", map[string]any{"period_starts": starts}, &today); err != nil {
		tr.recordError("Phase (today)", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("Today (%s): %s", today.Date, today.Label))
	}
}

func (tr *TestRunner) testSummary() {
	tr.printSection("Summary")

	var data SummaryData
	body := map[string]any{
		"period_starts": []string{"2025-10-06", "2025-11-01"},
		"date":          "2025-11-10",
	}
	if err := tr.post("/api/v1/summary", body, &data); err != nil {
		tr.recordError("Summary", err.Error())
		return
	}

	if data.Prediction.PredictedStartDate == "2025-11-27" && data.Phase.Phase == "Follicular" {
		tr.recordSuccess(fmt.Sprintf("Summary: %s / %s", data.Prediction.PredictedStartDate, data.Phase.Label))
	} else {
		tr.recordError("Summary", fmt.Sprintf("Unexpected result %+v", data))
	}

	if tr.verbose {
		tr.printPredictionDetail(data.Prediction)
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	testCases := []struct {
		path        string
		body        string
		status      int
		code        string
		description string
	}{
		{"/api/v1/predictions", `{"period_starts":["2025-10-06","11/01/2025"]}`, 400, "INVALID_DATE", "Invalid date format rejected"},
		{"/api/v1/predictions", `{"period_starts":["2025-02-30","2025-03-28"]}`, 400, "INVALID_DATE", "Impossible date rejected"},
		{"/api/v1/predictions", `{}`, 400, "VALIDATION_FAILED", "Missing period_starts rejected"},
		{"/api/v1/predictions", ``, 400, "BAD_REQUEST", "Empty body rejected"},
		{"/api/v1/predictions", `{"period_starts":[],"extra":1}`, 400, "BAD_REQUEST", "Unknown field rejected"},
		{"/api/v1/phase", `{"period_starts":["2025-10-06"],"date":"tomorrow"}`, 400, "", "Invalid evaluation date rejected"},
	}

	for _, tc := range testCases {
		resp, err := tr.do(http.MethodPost, tc.path, strings.NewReader(tc.body))
		if err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}

		if resp.status != tc.status {
			tr.recordError(tc.description, fmt.Sprintf("Expected HTTP %d, got %d", tc.status, resp.status))
			continue
		}
		if tc.code != "" && (resp.body.Error == nil || resp.body.Error.Code != tc.code) {
			tr.recordError(tc.description, fmt.Sprintf("Expected code %s", tc.code))
			continue
		}
		tr.recordSuccess(tc.description)
	}

	var empty PhaseData
	if err := tr.post("/api/v1/phase", map[string]any{"period_starts": []string{}}, &empty); err != nil {
		tr.recordError("Empty log", err.Error())
	} else if empty.Status == "insufficient_data" {
		tr.recordSuccess(fmt.Sprintf("Empty log: %s", empty.Label))
	} else {
		tr.recordError("Empty log", fmt.Sprintf("Unexpected status %s", empty.Status))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

type rawResponse struct {
	status int
	body   APIResponse
}

func (tr *TestRunner) get(path string, target any) error {
	resp, err := tr.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return resp.decode(target)
}

func (tr *TestRunner) post(path string, payload, target any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := tr.do(http.MethodPost, path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	return resp.decode(target)
}

func (tr *TestRunner) do(method, path string, body io.Reader) (*rawResponse, error) {
	req, err := http.NewRequest(method, tr.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}

	httpResp, err := tr.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	out := &rawResponse{status: httpResp.StatusCode}
	if err := json.Unmarshal(data, &out.body); err != nil {
		return nil, fmt.Errorf("parse error (HTTP %d): %w", httpResp.StatusCode, err)
	}
	return out, nil
}

func (r *rawResponse) decode(target any) error {
	if !r.body.Success {
		errMsg := "unknown error"
		if r.body.Error != nil {
			errMsg = r.body.Error.Message
		}
		return fmt.Errorf("API error (HTTP %d): %s", r.status, errMsg)
	}
	return json.Unmarshal(r.body.Data, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printPredictionDetail(p PredictionData) {
	if len(p.Range) == 2 {
		fmt.Printf("    Range: %s to %s\n", p.Range[0], p.Range[1])
	}
	fmt.Printf("    Confidence: %s\n", p.Confidence)
	fmt.Printf("    Cycle lengths: %v (avg %d)\n", p.CycleLengths, p.AverageCycleLength)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key sent as X-API-Key")
	verbose := flag.Bool("v", false, "Verbose output (show prediction details)")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
