package cycle

import (
	"errors"
	"fmt"
)

// Phase names a bucket of the menstrual cycle.
type Phase string

const (
	PhaseMenstrual  Phase = "Menstrual"
	PhaseFollicular Phase = "Follicular"
	PhaseOvulatory  Phase = "Ovulatory"
	PhaseLuteal     Phase = "Luteal"
)

// PhaseStatus tells whether a PhaseLabel carries a phase or a sentinel.
type PhaseStatus string

const (
	// StatusClassified means the label holds a cycle day and a phase.
	StatusClassified PhaseStatus = "classified"

	// StatusInsufficient means no period start has been logged.
	StatusInsufficient PhaseStatus = "insufficient_data"

	// StatusBeforeLastPeriod means the evaluation date precedes the last
	// logged period start.
	StatusBeforeLastPeriod PhaseStatus = "before_last_period"
)

// Sentinel texts for the two non-classified outcomes.
const (
	InsufficientPhaseMessage = "Insufficient data to determine current phase."
	InvalidPhaseDateMessage  = "Invalid current date: before last period logged"
)

// PhaseLabel is the classification of one evaluation date.
type PhaseLabel struct {
	Status   PhaseStatus
	CycleDay int // 1-indexed; zero unless Status is StatusClassified
	Phase    Phase
}

// Classified reports whether the label carries a phase.
func (l PhaseLabel) Classified() bool {
	return l.Status == StatusClassified
}

// String renders the label the way it is shown to users, e.g.
// "Cycle Day 1 — Menstrual Phase".
func (l PhaseLabel) String() string {
	switch l.Status {
	case StatusInsufficient:
		return InsufficientPhaseMessage
	case StatusBeforeLastPeriod:
		return InvalidPhaseDateMessage
	default:
		return fmt.Sprintf("Cycle Day %d — %s Phase", l.CycleDay, l.Phase)
	}
}

// =============================================================================
// Phase Policy
// =============================================================================

// PhaseBoundary maps elapsed days (0-indexed, inclusive) to a phase.
// ThroughDay < 0 marks the open-ended final bucket.
type PhaseBoundary struct {
	Phase      Phase
	ThroughDay int
}

// OpenEnded is the ThroughDay value of the final bucket.
const OpenEnded = -1

// PhasePolicy is an ordered table of phase boundaries.
type PhasePolicy struct {
	boundaries []PhaseBoundary
}

// DefaultPolicy is the built-in table:
//
//	0–5   Menstrual
//	6–12  Follicular
//	13–15 Ovulatory
//	16+   Luteal
func DefaultPolicy() PhasePolicy {
	return PhasePolicy{boundaries: []PhaseBoundary{
		{Phase: PhaseMenstrual, ThroughDay: 5},
		{Phase: PhaseFollicular, ThroughDay: 12},
		{Phase: PhaseOvulatory, ThroughDay: 15},
		{Phase: PhaseLuteal, ThroughDay: OpenEnded},
	}}
}

// NewPhasePolicy validates boundaries and builds a policy from them.
//
// Rules: at least one entry, unique non-empty names, strictly increasing
// non-negative bounds, and exactly the last entry open-ended.
func NewPhasePolicy(boundaries []PhaseBoundary) (PhasePolicy, error) {
	if len(boundaries) == 0 {
		return PhasePolicy{}, errors.New("phase policy needs at least one phase")
	}

	var errs []error
	seen := make(map[Phase]bool, len(boundaries))
	prev := -1
	last := len(boundaries) - 1

	for i, b := range boundaries {
		if b.Phase == "" {
			errs = append(errs, fmt.Errorf("phase %d: name is required", i))
		} else if seen[b.Phase] {
			errs = append(errs, fmt.Errorf("phase %d: duplicate name %q", i, b.Phase))
		}
		seen[b.Phase] = true

		if i == last {
			if b.ThroughDay != OpenEnded {
				errs = append(errs, fmt.Errorf("phase %d (%s): last phase must be open-ended", i, b.Phase))
			}
			continue
		}

		if b.ThroughDay < 0 {
			errs = append(errs, fmt.Errorf("phase %d (%s): only the last phase may be open-ended", i, b.Phase))
			continue
		}
		if b.ThroughDay <= prev {
			errs = append(errs, fmt.Errorf("phase %d (%s): through_day %d must be greater than %d", i, b.Phase, b.ThroughDay, prev))
		}
		prev = b.ThroughDay
	}

	if len(errs) > 0 {
		return PhasePolicy{}, errors.Join(errs...)
	}

	copied := make([]PhaseBoundary, len(boundaries))
	copy(copied, boundaries)
	return PhasePolicy{boundaries: copied}, nil
}

// Boundaries returns a copy of the table.
func (p PhasePolicy) Boundaries() []PhaseBoundary {
	out := make([]PhaseBoundary, len(p.policyTable()))
	copy(out, p.policyTable())
	return out
}

// Classify returns the phase for a non-negative elapsed day count.
func (p PhasePolicy) Classify(elapsed int) Phase {
	table := p.policyTable()
	for _, b := range table {
		if b.ThroughDay == OpenEnded || elapsed <= b.ThroughDay {
			return b.Phase
		}
	}
	return table[len(table)-1].Phase
}

// policyTable falls back to the default table for a zero PhasePolicy.
func (p PhasePolicy) policyTable() []PhaseBoundary {
	if len(p.boundaries) == 0 {
		return DefaultPolicy().boundaries
	}
	return p.boundaries
}
