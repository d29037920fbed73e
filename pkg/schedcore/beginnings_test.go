package schedcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeBeginningsSingleActivityFillsWorkHour covers S5: one activity
// exactly filling a work hour has exactly one legal beginning.
func TestComputeBeginningsSingleActivityFillsWorkHour(t *testing.T) {
	wh := []TimeInterval{{Beginning: Minutes(8, 0), End: Minutes(9, 0)}}
	bm, err := ComputeBeginnings(wh, []uint16{60})
	require.NoError(t, err)
	assert.Equal(t, Beginnings{Minutes(8, 0): {}}, bm[60])
}

// TestComputeBeginningsTwoEqualActivitiesShareSlack covers a two-activity
// scenario where each must leave exactly enough room for the other.
func TestComputeBeginningsTwoEqualActivitiesShareSlack(t *testing.T) {
	wh := []TimeInterval{{Beginning: 0, End: 20}}
	bm, err := ComputeBeginnings(wh, []uint16{10, 10})
	require.NoError(t, err)
	assert.Equal(t, Beginnings{0: {}, 10: {}}, bm[10])
}

// TestComputeBeginningsSlackAllowsMiddlePlacement covers slack large enough
// that a duration can legally begin anywhere on the grid within the
// work hour, not just at its edges.
func TestComputeBeginningsSlackAllowsMiddlePlacement(t *testing.T) {
	wh := []TimeInterval{{Beginning: 0, End: 60}}
	bm, err := ComputeBeginnings(wh, []uint16{10})
	require.NoError(t, err)
	assert.Len(t, bm[10], 11) // 0,5,...,50
}

func TestComputeBeginningsMultipleWorkHourIntervals(t *testing.T) {
	wh := []TimeInterval{
		{Beginning: 0, End: 30},
		{Beginning: 100, End: 130},
	}
	bm, err := ComputeBeginnings(wh, []uint16{30, 30})
	require.NoError(t, err)
	assert.Equal(t, Beginnings{0: {}, 100: {}}, bm[30])
}

func TestComputeBeginningsRejectsCapacityOverflow(t *testing.T) {
	wh := []TimeInterval{{Beginning: 0, End: 30}}
	_, err := ComputeBeginnings(wh, []uint16{60})
	assert.ErrorIs(t, err, ErrDurationExceedsCapacity)
}

func TestComputeBeginningsRejectsInvalidDuration(t *testing.T) {
	wh := []TimeInterval{{Beginning: 0, End: 60}}
	_, err := ComputeBeginnings(wh, []uint16{7})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestComputeBeginningsRejectsInvalidInterval(t *testing.T) {
	_, err := ComputeBeginnings([]TimeInterval{{Beginning: 3, End: 10}}, []uint16{5})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestComputeBeginningsRejectsTooManyActivities(t *testing.T) {
	durations := make([]uint16, maxBitsetActivities+1)
	for i := range durations {
		durations[i] = 5
	}
	wh := []TimeInterval{{Beginning: 0, End: MaxMinutes}}
	_, err := ComputeBeginnings(wh, durations)
	assert.ErrorIs(t, err, ErrTooManyActivities)
}

func TestComputeBeginningsDistinctDurationsEachGetTheirOwnMap(t *testing.T) {
	wh := []TimeInterval{{Beginning: 0, End: 30}}
	bm, err := ComputeBeginnings(wh, []uint16{10, 20})
	require.NoError(t, err)
	assert.Contains(t, bm, uint16(10))
	assert.Contains(t, bm, uint16(20))
}
