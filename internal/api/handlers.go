// Package api exposes the cycle predictor over HTTP. Handlers only translate
// between JSON and the cycle package; all domain rules live there.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zapponejosh/cycle-api/internal/config"
	"github.com/zapponejosh/cycle-api/internal/cycle"
	"github.com/zapponejosh/cycle-api/internal/logger"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	cfg    *config.Config
	policy cycle.PhasePolicy
	clock  cycle.Clock
	loc    *time.Location
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance. A nil clock means the
// system clock.
func NewHandlers(cfg *config.Config, policy cycle.PhasePolicy, clock cycle.Clock, log *slog.Logger) *Handlers {
	if clock == nil {
		clock = cycle.SystemClock
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		cfg:    cfg,
		policy: policy,
		clock:  clock,
		loc:    cfg.Location(),
		logger: log,
	}
}

// =============================================================================
// Response payloads
// =============================================================================

// PredictionData is the prediction payload. On insufficient data only
// Error is set.
type PredictionData struct {
	PredictedStartDate string   `json:"predicted_start_date,omitempty"`
	Range              []string `json:"range,omitempty"`
	Confidence         string   `json:"confidence,omitempty"`
	BasedOn            string   `json:"based_on,omitempty"`
	AverageCycleLength int      `json:"average_cycle_length,omitempty"`
	CycleLengths       []int    `json:"cycle_lengths,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// PhaseData is the phase payload. Label is the user-facing text; Phase and
// CycleDay are set only when Status is "classified".
type PhaseData struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Status   string `json:"status"`
	Phase    string `json:"phase,omitempty"`
	CycleDay int    `json:"cycle_day,omitempty"`
}

// SummaryData combines both results for one log.
type SummaryData struct {
	Prediction PredictionData `json:"prediction"`
	Phase      PhaseData      `json:"phase"`
}

// PhaseRange describes one row of the active phase policy in cycle days.
type PhaseRange struct {
	Name          string `json:"name"`
	FirstCycleDay int    `json:"first_cycle_day"`
	LastCycleDay  *int   `json:"last_cycle_day"` // null for the open-ended phase
}

// =============================================================================
// Handlers
// =============================================================================

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// ListPhases handles GET /api/v1/phases
func (h *Handlers) ListPhases(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, phaseRanges(h.policy))
}

// Predict handles POST /api/v1/predictions
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	p, ok := h.buildPredictor(w, r, req.PeriodStarts)
	if !ok {
		return
	}

	data := predictionData(p)
	h.logPrediction(r, p, data)
	WriteSuccess(w, data)
}

// Phase handles POST /api/v1/phase
func (h *Handlers) Phase(w http.ResponseWriter, r *http.Request) {
	var req PhaseRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	p, ok := h.buildPredictor(w, r, req.PeriodStarts)
	if !ok {
		return
	}

	on, ok := h.resolveDate(w, req.Date)
	if !ok {
		return
	}

	WriteSuccess(w, phaseData(p, on))
}

// Summary handles POST /api/v1/summary: prediction and phase in one call.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	var req PhaseRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	p, ok := h.buildPredictor(w, r, req.PeriodStarts)
	if !ok {
		return
	}

	on, ok := h.resolveDate(w, req.Date)
	if !ok {
		return
	}

	data := predictionData(p)
	h.logPrediction(r, p, data)
	WriteSuccess(w, SummaryData{
		Prediction: data,
		Phase:      phaseData(p, on),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// readRequest decodes and validates a request body, writing a 400 on
// failure.
func (h *Handlers) readRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	if err := validateRequest(v); err != nil {
		WriteBadRequest(w, err.Error(), CodeValidationFailed)
		return false
	}
	return true
}

// buildPredictor parses the log, then sorts and de-duplicates it before
// constructing the predictor. Blank entries are dropped by cycle.New.
func (h *Handlers) buildPredictor(w http.ResponseWriter, r *http.Request, starts []string) (*cycle.Predictor, bool) {
	if len(starts) > h.cfg.MaxLogEntries {
		WriteBadRequest(w, fmt.Sprintf("period_starts cannot exceed %d entries", h.cfg.MaxLogEntries), CodeValidationFailed)
		return nil, false
	}

	parsed, err := cycle.New(starts)
	if err != nil {
		if errors.Is(err, cycle.ErrInvalidDate) {
			WriteBadRequest(w, err.Error(), CodeInvalidDate)
			return nil, false
		}
		logger.Error(r.Context(), h.logger, "failed to build predictor", err)
		WriteInternalError(w, "Failed to read period log")
		return nil, false
	}

	return cycle.FromDates(cycle.Normalize(parsed.Starts())).WithPolicy(h.policy), true
}

// resolveDate resolves the optional evaluation date against the injected
// clock in the configured zone.
func (h *Handlers) resolveDate(w http.ResponseWriter, s string) (time.Time, bool) {
	on, err := cycle.ResolveDate(s, h.clock, h.loc)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("date: %v", err), CodeInvalidDate)
		return time.Time{}, false
	}
	return on, true
}

func (h *Handlers) logPrediction(r *http.Request, p *cycle.Predictor, data PredictionData) {
	if data.Error != "" {
		logger.Debug(r.Context(), h.logger, "prediction skipped",
			slog.Int("logged_starts", len(p.Starts())),
		)
		return
	}
	logger.Debug(r.Context(), h.logger, "prediction computed",
		slog.Int("cycle_count", len(data.CycleLengths)),
		slog.Int("average_cycle_length", data.AverageCycleLength),
		slog.String("predicted_start", data.PredictedStartDate),
	)
}

func predictionData(p *cycle.Predictor) PredictionData {
	switch out := p.PredictNextPeriod().(type) {
	case cycle.Prediction:
		rng := out.Range()
		return PredictionData{
			PredictedStartDate: out.PredictedStartDate(),
			Range:              rng[:],
			Confidence:         out.Confidence(),
			BasedOn:            out.BasedOn(),
			AverageCycleLength: out.AverageLength,
			CycleLengths:       p.CycleLengths(),
		}
	case cycle.InsufficientData:
		return PredictionData{Error: out.Message}
	default:
		return PredictionData{Error: fmt.Sprintf("unexpected prediction outcome %T", out)}
	}
}

func phaseData(p *cycle.Predictor, on time.Time) PhaseData {
	label := p.CurrentPhase(on)
	data := PhaseData{
		Date:   cycle.FormatDate(on),
		Label:  label.String(),
		Status: string(label.Status),
	}
	if label.Classified() {
		data.Phase = string(label.Phase)
		data.CycleDay = label.CycleDay
	}
	return data
}

func phaseRanges(policy cycle.PhasePolicy) []PhaseRange {
	boundaries := policy.Boundaries()
	ranges := make([]PhaseRange, 0, len(boundaries))

	first := 1
	for _, b := range boundaries {
		pr := PhaseRange{Name: string(b.Phase), FirstCycleDay: first}
		if b.ThroughDay != cycle.OpenEnded {
			last := b.ThroughDay + 1
			pr.LastCycleDay = &last
			first = last + 1
		}
		ranges = append(ranges, pr)
	}
	return ranges
}
