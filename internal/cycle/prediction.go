package cycle

import (
	"fmt"
	"time"
)

// Fixed texts reported with predictions.
const (
	NotEnoughDataMessage = "Not enough data. Please log at least 2 cycles."
	BasisAverageLength   = "average cycle length"
)

// RangeHalfWidth is how many days the prediction window extends on each
// side of the predicted start.
const RangeHalfWidth = 2

// Outcome is the result of PredictNextPeriod. It is either a Prediction or
// an InsufficientData; callers switch on the concrete type.
type Outcome interface {
	isOutcome()
}

// Prediction is a successful next-period estimate.
type Prediction struct {
	PredictedStart time.Time
	RangeStart     time.Time
	RangeEnd       time.Time
	CycleCount     int // number of derived cycle lengths
	AverageLength  int // rounded mean cycle length in days
}

// InsufficientData is returned when fewer than two starts are logged.
type InsufficientData struct {
	Message string
}

func (Prediction) isOutcome()       {}
func (InsufficientData) isOutcome() {}

// PredictedStartDate returns the predicted start as YYYY-MM-DD.
func (p Prediction) PredictedStartDate() string {
	return FormatDate(p.PredictedStart)
}

// Range returns the inclusive window as two YYYY-MM-DD strings, low first.
func (p Prediction) Range() [2]string {
	return [2]string{FormatDate(p.RangeStart), FormatDate(p.RangeEnd)}
}

// Confidence describes how much history backs the prediction.
func (p Prediction) Confidence() string {
	return fmt.Sprintf("Moderate — Based on average of %d cycle(s)", p.CycleCount)
}

// BasedOn names the method used.
func (p Prediction) BasedOn() string {
	return BasisAverageLength
}
