package schedcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleKeyCanonicalizesOrder(t *testing.T) {
	a := NewSchedule(
		[]TimeInterval{{Beginning: 0, End: 60}, {Beginning: 120, End: 180}},
		[]uint16{30, 10},
	)
	b := NewSchedule(
		[]TimeInterval{{Beginning: 120, End: 180}, {Beginning: 0, End: 60}},
		[]uint16{10, 30},
	)
	assert.Equal(t, a.Key(), b.Key())
}

func TestScheduleKeyDiffersOnContent(t *testing.T) {
	a := NewSchedule([]TimeInterval{{Beginning: 0, End: 60}}, []uint16{30})
	b := NewSchedule([]TimeInterval{{Beginning: 0, End: 60}}, []uint16{45})
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestScheduleTotals(t *testing.T) {
	s := NewSchedule(
		[]TimeInterval{{Beginning: 0, End: 60}, {Beginning: 120, End: 150}},
		[]uint16{10, 20},
	)
	assert.Equal(t, uint16(90), s.TotalWorkMinutes())
	assert.Equal(t, uint16(30), s.TotalActivityMinutes())
}

func TestBeginningsSorted(t *testing.T) {
	b := Beginnings{20: {}, 5: {}, 10: {}}
	assert.Equal(t, []uint16{5, 10, 20}, b.Sorted())
}

func TestBeginningsMapCloneIsIndependent(t *testing.T) {
	m := BeginningsMap{10: {5: {}}}
	clone := m.clone()
	clone[10][15] = struct{}{}
	assert.Len(t, m[10], 1, "mutating the clone must not affect the original")
}
