package raffle_test

import (
	"math"
	"testing"

	"ms-raffle/internal/raffle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const angleTolerance = 0.01

func TestWheelMapper_ModeThreshold(t *testing.T) {
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	assert.Equal(t, raffle.WheelModePerTicket, m.Mode(1))
	assert.Equal(t, raffle.WheelModePerTicket, m.Mode(2000))
	assert.Equal(t, raffle.WheelModeAggregated, m.Mode(2001))
	assert.Equal(t, raffle.WheelModeAggregated, m.Mode(5000))
}

func TestWheelMapper_PerTicketStopAngle(t *testing.T) {
	entries, total := allocated(t, entry("A", "user-a", 1), entry("B", "user-b", 3))
	require.Equal(t, int64(4), total)
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	// 4 tickets, 90 degrees each. Ticket 1 spans [90, 180), midpoint 135,
	// physical stop angle 360-135 = 225.
	angle, err := m.StopAngle(entries, total, 1)
	require.NoError(t, err)
	assert.InDelta(t, 225.0, angle, angleTolerance)

	angle, err = m.StopAngle(entries, total, 0)
	require.NoError(t, err)
	assert.InDelta(t, 315.0, angle, angleTolerance)
}

func TestWheelMapper_AggregatedStopAngle(t *testing.T) {
	entries, total := allocated(t,
		entry("A", "user-a", 100), entry("B", "user-b", 400), entry("C", "user-c", 4500),
	)
	require.Equal(t, int64(5000), total)
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	// B spans tickets [100, 500): arc [7.2, 36) degrees, midpoint 21.6,
	// stop angle 360-21.6 = 338.4. Any ticket inside B's range maps there.
	for _, ticket := range []int64{100, 250, 499} {
		angle, err := m.StopAngle(entries, total, ticket)
		require.NoError(t, err)
		assert.InDelta(t, 338.4, angle, angleTolerance)
	}
}

func TestWheelMapper_AggregatedArcsSumTo360(t *testing.T) {
	entries, total := allocated(t,
		entry("A", "user-a", 100), entry("B", "user-b", 400), entry("C", "user-c", 4500),
	)
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	segments := m.BuildSegments(entries, total)
	require.Len(t, segments, 3)

	sum := 0.0
	for i, s := range segments {
		width := s.EndAngle - s.StartAngle
		sum += width
		// Each arc is proportional to its ticket share.
		want := float64(entries[i].Tickets) / float64(total) * 360.0
		assert.InDelta(t, want, width, angleTolerance)
		if i > 0 {
			assert.InDelta(t, segments[i-1].EndAngle, s.StartAngle, angleTolerance)
		}
	}
	assert.InDelta(t, 360.0, sum, angleTolerance)
}

func TestWheelMapper_SingleEntryRaffle(t *testing.T) {
	entries, total := allocated(t, entry("A", "user-a", 1))
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	angle, err := m.StopAngle(entries, total, 0)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(angle))
	assert.False(t, math.IsInf(angle, 0))
	assert.InDelta(t, 180.0, angle, angleTolerance)

	segments := m.BuildSegments(entries, total)
	require.Len(t, segments, 1)
	assert.InDelta(t, 0.0, segments[0].StartAngle, angleTolerance)
	assert.InDelta(t, 360.0, segments[0].EndAngle, angleTolerance)
}

func TestWheelMapper_SkewedPoolKeepsNonzeroArc(t *testing.T) {
	// One entry holds >99.9% of tickets; the one-ticket entry must still get a
	// strictly positive arc in aggregated mode.
	entries, total := allocated(t, entry("whale", "user-w", 999_999), entry("minnow", "user-m", 1))
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	segments := m.BuildSegments(entries, total)
	require.Len(t, segments, 2)
	assert.Greater(t, segments[1].EndAngle-segments[1].StartAngle, 0.0)

	angle, err := m.StopAngle(entries, total, 999_999)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(angle))
}

func TestWheelMapper_PureFunction(t *testing.T) {
	entries, total := allocated(t, entry("A", "user-a", 10), entry("B", "user-b", 20), entry("C", "user-c", 70))
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	first, err := m.StopAngle(entries, total, 42)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.StopAngle(entries, total, 42)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWheelMapper_PerTicketSegments(t *testing.T) {
	entries, total := allocated(t, entry("A", "user-a", 2), entry("B", "user-b", 2))
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)

	segments := m.BuildSegments(entries, total)
	require.Len(t, segments, 4)
	assert.Equal(t, "A", segments[0].EntryID)
	assert.Equal(t, "A", segments[1].EntryID)
	assert.Equal(t, "B", segments[2].EntryID)
	assert.Equal(t, "B", segments[3].EntryID)
	assert.InDelta(t, 90.0, segments[0].EndAngle-segments[0].StartAngle, angleTolerance)
}

func TestWheelMapper_SegmentsMatchStopAngles(t *testing.T) {
	// Aggregated mode: the stop angle must point inside the winning entry's arc.
	entries, total := allocated(t,
		entry("A", "user-a", 1000), entry("B", "user-b", 1500), entry("C", "user-c", 2500),
	)
	m := raffle.NewWheelMapper(raffle.DefaultSegmentThreshold)
	segments := m.BuildSegments(entries, total)

	for i := range entries {
		mid := (segments[i].StartAngle + segments[i].EndAngle) / 2
		ticket := entries[i].RangeStart + entries[i].Tickets/2
		angle, err := m.StopAngle(entries, total, ticket)
		require.NoError(t, err)
		assert.InDelta(t, 360.0-mid, angle, angleTolerance)
	}
}
