package schedcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeIntervalValid(t *testing.T) {
	iv, err := NewTimeInterval(Minutes(8, 0), Minutes(9, 0))
	require.NoError(t, err)
	assert.Equal(t, uint16(60), iv.Duration())
}

func TestNewTimeIntervalRejectsOffGrid(t *testing.T) {
	_, err := NewTimeInterval(1, 10)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewTimeIntervalRejectsTooShort(t *testing.T) {
	_, err := NewTimeInterval(Minutes(8, 0), Minutes(8, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewTimeIntervalRejectsPastMidnight(t *testing.T) {
	_, err := NewTimeInterval(MaxMinutes-Grid, MaxMinutes+Grid)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestTimeIntervalContains(t *testing.T) {
	iv := TimeInterval{Beginning: Minutes(8, 0), End: Minutes(10, 0)}
	assert.True(t, iv.Contains(Minutes(9, 0), 30))
	assert.False(t, iv.Contains(Minutes(9, 45), 30))
}

func TestTimeIntervalOverlaps(t *testing.T) {
	a := TimeInterval{Beginning: Minutes(8, 0), End: Minutes(9, 0)}
	b := TimeInterval{Beginning: Minutes(8, 30), End: Minutes(9, 30)}
	c := TimeInterval{Beginning: Minutes(9, 0), End: Minutes(10, 0)}
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "half-open intervals touching at the boundary do not overlap")
}
