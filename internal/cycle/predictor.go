// Package cycle estimates the next menstrual period and classifies the
// current cycle phase from a log of period start dates.
//
// A Predictor is built once from the full history and never changes
// afterwards, so it can be shared between goroutines. Dates are parsed once
// at the boundary (New, ResolveDate) and all arithmetic is done on
// calendar dates in UTC.
package cycle

import (
	"fmt"
	"math"
	"time"
)

// Predictor holds an ordered log of period start dates and the cycle
// lengths derived from it.
type Predictor struct {
	starts  []time.Time
	lengths []int
	policy  PhasePolicy
}

// New parses a log of YYYY-MM-DD strings. Empty entries are skipped; any
// other entry that does not parse fails the whole construction.
//
// The log must already be in chronological order. New does not sort.
func New(starts []string) (*Predictor, error) {
	dates := make([]time.Time, 0, len(starts))
	for i, s := range starts {
		if s == "" {
			continue
		}
		d, err := ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("period start %d: %w", i, err)
		}
		dates = append(dates, d)
	}
	return FromDates(dates), nil
}

// FromDates builds a predictor from already parsed dates, keeping only
// their calendar date.
func FromDates(starts []time.Time) *Predictor {
	dates := make([]time.Time, len(starts))
	for i, s := range starts {
		dates[i] = DateOnly(s)
	}
	return &Predictor{
		starts:  dates,
		lengths: cycleLengths(dates),
		policy:  DefaultPolicy(),
	}
}

// WithPolicy returns a copy of p that classifies phases with policy.
func (p *Predictor) WithPolicy(policy PhasePolicy) *Predictor {
	return &Predictor{
		starts:  p.starts,
		lengths: p.lengths,
		policy:  policy,
	}
}

// Starts returns a copy of the parsed log.
func (p *Predictor) Starts() []time.Time {
	out := make([]time.Time, len(p.starts))
	copy(out, p.starts)
	return out
}

// CycleLengths returns a copy of the gaps, in days, between consecutive
// starts. It is empty when fewer than two starts are logged.
func (p *Predictor) CycleLengths() []int {
	out := make([]int, len(p.lengths))
	copy(out, p.lengths)
	return out
}

// PredictNextPeriod projects the next start from the mean cycle length.
// With fewer than two logged starts it returns InsufficientData.
func (p *Predictor) PredictNextPeriod() Outcome {
	if len(p.starts) < 2 {
		return InsufficientData{Message: NotEnoughDataMessage}
	}

	avg := averageLength(p.lengths)
	last := p.starts[len(p.starts)-1]
	predicted := AddDays(last, avg)

	return Prediction{
		PredictedStart: predicted,
		RangeStart:     AddDays(predicted, -RangeHalfWidth),
		RangeEnd:       AddDays(predicted, RangeHalfWidth),
		CycleCount:     len(p.lengths),
		AverageLength:  avg,
	}
}

// CurrentPhase classifies the date on relative to the last logged start.
// The caller resolves on (see ResolveDate); the predictor never reads the
// clock.
func (p *Predictor) CurrentPhase(on time.Time) PhaseLabel {
	if len(p.starts) == 0 {
		return PhaseLabel{Status: StatusInsufficient}
	}

	elapsed := DaysBetween(p.starts[len(p.starts)-1], on)
	if elapsed < 0 {
		return PhaseLabel{Status: StatusBeforeLastPeriod}
	}

	return PhaseLabel{
		Status:   StatusClassified,
		CycleDay: elapsed + 1,
		Phase:    p.policy.Classify(elapsed),
	}
}

// cycleLengths returns the day gaps between adjacent dates.
func cycleLengths(dates []time.Time) []int {
	if len(dates) < 2 {
		return []int{}
	}
	lengths := make([]int, 0, len(dates)-1)
	for i := 0; i+1 < len(dates); i++ {
		lengths = append(lengths, DaysBetween(dates[i], dates[i+1]))
	}
	return lengths
}

// averageLength is the arithmetic mean rounded half-up to whole days,
// so a mean of 26.5 becomes 27.
func averageLength(lengths []int) int {
	sum := 0
	for _, l := range lengths {
		sum += l
	}
	mean := float64(sum) / float64(len(lengths))
	return int(math.Floor(mean + 0.5))
}
