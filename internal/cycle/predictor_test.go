package cycle

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustPredictor builds a predictor or fails the test.
func mustPredictor(t *testing.T, starts ...string) *Predictor {
	t.Helper()
	p, err := New(starts)
	require.NoError(t, err)
	return p
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

// -----------------------------------------------------------------
// Construction
// -----------------------------------------------------------------

func TestNew_SkipsEmptyEntries(t *testing.T) {
	p := mustPredictor(t, "", "2025-10-06", "", "2025-11-01", "")

	assert.Len(t, p.Starts(), 2)
	assert.Equal(t, []int{26}, p.CycleLengths())
}

func TestNew_InvalidDate(t *testing.T) {
	tests := []string{"2025/10/06", "06-10-2025", "2025-1-5", "2025-13-01", "yesterday", "2025-10-06 "}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			p, err := New([]string{"2025-09-01", in})
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrInvalidDate), "error should wrap ErrInvalidDate: %v", err)
			assert.Contains(t, err.Error(), "period start 1")
		})
	}
}

func TestCycleLengths(t *testing.T) {
	tests := []struct {
		name   string
		starts []string
		want   []int
	}{
		{name: "empty", starts: nil, want: []int{}},
		{name: "single", starts: []string{"2025-10-06"}, want: []int{}},
		{name: "two", starts: []string{"2025-10-06", "2025-11-01"}, want: []int{26}},
		{
			name:   "across leap day",
			starts: []string{"2024-02-01", "2024-03-01", "2024-03-29"},
			want:   []int{29, 28},
		},
		{
			name:   "across year end",
			starts: []string{"2025-12-10", "2026-01-07"},
			want:   []int{28},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPredictor(t, tt.starts...)
			lengths := p.CycleLengths()
			assert.Equal(t, tt.want, lengths)

			if len(p.Starts()) >= 2 {
				assert.Len(t, lengths, len(p.Starts())-1)
			}
		})
	}
}

func TestCycleLengths_ReturnsCopy(t *testing.T) {
	p := mustPredictor(t, "2025-10-06", "2025-11-01")

	lengths := p.CycleLengths()
	lengths[0] = 99

	assert.Equal(t, []int{26}, p.CycleLengths())
}

func TestFromDates_DropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	p := FromDates([]time.Time{
		time.Date(2025, time.October, 6, 23, 30, 0, 0, loc),
		time.Date(2025, time.November, 1, 1, 0, 0, 0, loc),
	})

	assert.Equal(t, []int{26}, p.CycleLengths())
	assert.Equal(t, "2025-10-06", FormatDate(p.Starts()[0]))
}

// -----------------------------------------------------------------
// PredictNextPeriod
// -----------------------------------------------------------------

func TestPredictNextPeriod_InsufficientData(t *testing.T) {
	for _, starts := range [][]string{nil, {}, {"2025-10-06"}, {"", "2025-10-06", ""}} {
		p := mustPredictor(t, starts...)

		out := p.PredictNextPeriod()
		insufficient, ok := out.(InsufficientData)
		require.True(t, ok, "want InsufficientData, got %T", out)
		assert.Equal(t, "Not enough data. Please log at least 2 cycles.", insufficient.Message)
	}
}

func TestPredictNextPeriod_TwoStarts(t *testing.T) {
	p := mustPredictor(t, "2025-10-06", "2025-11-01")

	out := p.PredictNextPeriod()
	pred, ok := out.(Prediction)
	require.True(t, ok, "want Prediction, got %T", out)

	assert.Equal(t, "2025-11-27", pred.PredictedStartDate())
	assert.Equal(t, [2]string{"2025-11-25", "2025-11-29"}, pred.Range())
	assert.Equal(t, "Moderate — Based on average of 1 cycle(s)", pred.Confidence())
	assert.Equal(t, "average cycle length", pred.BasedOn())
	assert.Equal(t, 26, pred.AverageLength)
	assert.Equal(t, 1, pred.CycleCount)
}

func TestPredictNextPeriod_Average(t *testing.T) {
	tests := []struct {
		name       string
		starts     []string
		wantAvg    int
		wantStart  string
		wantCycles int
	}{
		{
			name:       "exact mean",
			starts:     []string{"2025-01-01", "2025-01-29", "2025-02-26"},
			wantAvg:    28,
			wantStart:  "2025-03-26",
			wantCycles: 2,
		},
		{
			name:       "rounds down below half",
			starts:     []string{"2025-01-01", "2025-01-27", "2025-02-22", "2025-03-21"},
			wantAvg:    26,
			wantStart:  "2025-04-16",
			wantCycles: 3,
		},
		{
			name:       "half rounds up",
			starts:     []string{"2025-01-01", "2025-01-27", "2025-02-23"},
			wantAvg:    27,
			wantStart:  "2025-03-22",
			wantCycles: 2,
		},
		{
			name:       "rounds up above half",
			starts:     []string{"2025-01-01", "2025-01-27", "2025-02-23", "2025-03-22"},
			wantAvg:    27,
			wantStart:  "2025-04-18",
			wantCycles: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPredictor(t, tt.starts...)

			pred, ok := p.PredictNextPeriod().(Prediction)
			require.True(t, ok)

			assert.Equal(t, tt.wantAvg, pred.AverageLength)
			assert.Equal(t, tt.wantStart, pred.PredictedStartDate())
			assert.Equal(t, tt.wantCycles, pred.CycleCount)
			assert.Equal(t, len(tt.starts)-1, pred.CycleCount)

			last := p.Starts()[len(p.Starts())-1]
			assert.Equal(t, AddDays(last, tt.wantAvg), pred.PredictedStart)
		})
	}
}

func TestPredictNextPeriod_RangeBracketsPrediction(t *testing.T) {
	logs := [][]string{
		{"2025-10-06", "2025-11-01"},
		{"2024-02-01", "2024-02-29"},
		{"2025-11-20", "2025-12-17"},
		{"2025-01-01", "2025-02-01", "2025-03-01", "2025-04-01"},
	}

	for _, log := range logs {
		pred, ok := mustPredictor(t, log...).PredictNextPeriod().(Prediction)
		require.True(t, ok)

		assert.Equal(t, AddDays(pred.PredictedStart, -2), pred.RangeStart)
		assert.Equal(t, AddDays(pred.PredictedStart, 2), pred.RangeEnd)
		assert.True(t, pred.RangeStart.Before(pred.PredictedStart))
		assert.True(t, pred.PredictedStart.Before(pred.RangeEnd))
	}
}

func TestPredictNextPeriod_Deterministic(t *testing.T) {
	p := mustPredictor(t, "2025-10-06", "2025-11-01")

	assert.Equal(t, p.PredictNextPeriod(), p.PredictNextPeriod())
}

// -----------------------------------------------------------------
// CurrentPhase
// -----------------------------------------------------------------

func TestCurrentPhase_NoData(t *testing.T) {
	p := mustPredictor(t)

	label := p.CurrentPhase(mustDate(t, "2025-10-06"))
	assert.Equal(t, StatusInsufficient, label.Status)
	assert.False(t, label.Classified())
	assert.Equal(t, "Insufficient data to determine current phase.", label.String())
}

func TestPredictor_CenturiesApart(t *testing.T) {
	p := mustPredictor(t, "1700-01-01", "2025-01-01")
	assert.Equal(t, []int{118704}, p.CycleLengths())

	pred, ok := p.PredictNextPeriod().(Prediction)
	require.True(t, ok)
	assert.Equal(t, "2350-01-02", pred.PredictedStartDate())

	single := mustPredictor(t, "1700-01-01")
	label := single.CurrentPhase(mustDate(t, "2025-01-01"))
	assert.Equal(t, 118705, label.CycleDay)
	assert.Equal(t, "Cycle Day 118705 — Luteal Phase", label.String())
}

func TestCurrentPhase_SingleStartSameDay(t *testing.T) {
	p := mustPredictor(t, "2025-10-06")

	label := p.CurrentPhase(mustDate(t, "2025-10-06"))
	assert.Equal(t, "Cycle Day 1 — Menstrual Phase", label.String())
}

func TestCurrentPhase_Boundaries(t *testing.T) {
	p := mustPredictor(t, "2025-09-10", "2025-10-06")
	last := mustDate(t, "2025-10-06")

	tests := []struct {
		elapsed int
		phase   Phase
	}{
		{0, PhaseMenstrual},
		{5, PhaseMenstrual},
		{6, PhaseFollicular},
		{12, PhaseFollicular},
		{13, PhaseOvulatory},
		{15, PhaseOvulatory},
		{16, PhaseLuteal},
		{100, PhaseLuteal},
	}

	for _, tt := range tests {
		label := p.CurrentPhase(AddDays(last, tt.elapsed))

		assert.Equal(t, StatusClassified, label.Status, "elapsed %d", tt.elapsed)
		assert.Equal(t, tt.phase, label.Phase, "elapsed %d", tt.elapsed)
		assert.Equal(t, tt.elapsed+1, label.CycleDay, "elapsed %d", tt.elapsed)
	}
}

func TestCurrentPhase_BeforeLastPeriod(t *testing.T) {
	p := mustPredictor(t, "2025-09-10", "2025-10-06")

	for _, on := range []string{"2025-10-05", "2025-09-10", "2020-01-01"} {
		label := p.CurrentPhase(mustDate(t, on))
		assert.Equal(t, StatusBeforeLastPeriod, label.Status, on)
		assert.Equal(t, "Invalid current date: before last period logged", label.String())
	}
}

func TestCurrentPhase_IgnoresTimeOfDay(t *testing.T) {
	p := mustPredictor(t, "2025-10-06")

	late := time.Date(2025, time.October, 12, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "Cycle Day 7 — Follicular Phase", p.CurrentPhase(late).String())
}

func TestWithPolicy(t *testing.T) {
	policy, err := NewPhasePolicy([]PhaseBoundary{
		{Phase: "Early", ThroughDay: 2},
		{Phase: "Late", ThroughDay: OpenEnded},
	})
	require.NoError(t, err)

	base := mustPredictor(t, "2025-10-06")
	custom := base.WithPolicy(policy)

	on := mustDate(t, "2025-10-09")
	assert.Equal(t, "Cycle Day 4 — Late Phase", custom.CurrentPhase(on).String())
	assert.Equal(t, "Cycle Day 4 — Menstrual Phase", base.CurrentPhase(on).String())
}

func TestPredictor_ConcurrentUse(t *testing.T) {
	p := mustPredictor(t, "2025-09-10", "2025-10-06", "2025-11-01")
	on := mustDate(t, "2025-11-10")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pred, ok := p.PredictNextPeriod().(Prediction)
			assert.True(t, ok)
			assert.Equal(t, "2025-11-27", pred.PredictedStartDate())
			assert.Equal(t, "Cycle Day 10 — Follicular Phase", p.CurrentPhase(on).String())
		}()
	}
	wg.Wait()
}
