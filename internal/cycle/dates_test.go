package cycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-10-06")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-10-06", FormatDate(d))
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-02-30", "20251006", "2025-10-6", "Oct 6 2025"} {
		_, err := ParseDate(in)
		assert.True(t, errors.Is(err, ErrInvalidDate), "ParseDate(%q) error = %v", in, err)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2025-10-06", "2025-10-06", 0},
		{"2025-10-06", "2025-11-01", 26},
		{"2025-11-01", "2025-10-06", -26},
		{"2024-02-28", "2024-03-01", 2},
		{"2025-02-28", "2025-03-01", 1},
		{"2025-12-31", "2026-01-01", 1},
		{"1700-01-01", "2025-01-01", 118704},
		{"2025-01-01", "1700-01-01", -118704},
		{"0001-01-01", "9999-12-31", 3652058},
	}

	for _, tt := range tests {
		got := DaysBetween(mustDate(t, tt.from), mustDate(t, tt.to))
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestToday_UsesLocation(t *testing.T) {
	// 2025-10-06 23:30 UTC is already 2025-10-07 in Tokyo.
	now := time.Date(2025, time.October, 6, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)

	assert.Equal(t, "2025-10-06", FormatDate(Today(now, time.UTC)))
	assert.Equal(t, "2025-10-07", FormatDate(Today(now, tokyo)))
}

func TestResolveDate(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2025, time.November, 10, 8, 0, 0, 0, time.UTC)
	}

	got, err := ResolveDate("", clock, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-10", FormatDate(got))

	got, err = ResolveDate("2025-12-01", clock, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", FormatDate(got))

	_, err = ResolveDate("12/01/2025", clock, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]time.Time{
		mustDate(t, "2025-11-01"),
		mustDate(t, "2025-10-06"),
		mustDate(t, "2025-11-01"),
		mustDate(t, "2025-09-10"),
	})

	want := []time.Time{mustDate(t, "2025-09-10"), mustDate(t, "2025-10-06"), mustDate(t, "2025-11-01")}
	assert.Equal(t, want, got)
	assert.Empty(t, Normalize(nil))
}
