package schedcore

import (
	"fmt"
	"sort"
	"strings"
)

// Schedule is the cache key for the Beginnings Enumerator (component A):
// a resolved set of work-hour intervals paired with the sorted durations
// of the activities that will be packed into them. Two Schedules compare
// equal up to ordering of their component slices (§3), so Schedule.Key
// canonicalizes both before hashing.
type Schedule struct {
	WorkHours []TimeInterval
	Durations []uint16
}

// NewSchedule builds a Schedule, sorting both slices into the canonical
// order Key relies on. The caller retains ownership of the input slices;
// NewSchedule copies them.
func NewSchedule(workHours []TimeInterval, durations []uint16) Schedule {
	wh := append([]TimeInterval(nil), workHours...)
	sort.Slice(wh, func(i, j int) bool {
		if wh[i].Beginning != wh[j].Beginning {
			return wh[i].Beginning < wh[j].Beginning
		}
		return wh[i].End < wh[j].End
	})
	d := append([]uint16(nil), durations...)
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })
	return Schedule{WorkHours: wh, Durations: d}
}

// Key returns a canonical string uniquely identifying the Schedule's
// content, suitable for use as a map key in the Beginnings Cache. Schedule
// values constructed via NewSchedule already carry sorted slices, but Key
// sorts defensively so a Schedule assembled by hand still canonicalizes.
func (s Schedule) Key() string {
	wh := append([]TimeInterval(nil), s.WorkHours...)
	sort.Slice(wh, func(i, j int) bool {
		if wh[i].Beginning != wh[j].Beginning {
			return wh[i].Beginning < wh[j].Beginning
		}
		return wh[i].End < wh[j].End
	})
	d := append([]uint16(nil), s.Durations...)
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })

	var b strings.Builder
	for _, iv := range wh {
		fmt.Fprintf(&b, "%d-%d;", iv.Beginning, iv.End)
	}
	b.WriteByte('|')
	for _, dur := range d {
		fmt.Fprintf(&b, "%d;", dur)
	}
	return b.String()
}

// TotalWorkMinutes returns the sum of the work-hour interval durations.
func (s Schedule) TotalWorkMinutes() uint16 {
	var total uint16
	for _, iv := range s.WorkHours {
		total += iv.Duration()
	}
	return total
}

// TotalActivityMinutes returns the sum of the activity durations.
func (s Schedule) TotalActivityMinutes() uint16 {
	var total uint16
	for _, d := range s.Durations {
		total += d
	}
	return total
}

// Beginnings is a set of grid-aligned start minutes.
type Beginnings map[uint16]struct{}

// Sorted returns the set's members in ascending order.
func (b Beginnings) Sorted() []uint16 {
	out := make([]uint16, 0, len(b))
	for s := range b {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b Beginnings) clone() Beginnings {
	out := make(Beginnings, len(b))
	for s := range b {
		out[s] = struct{}{}
	}
	return out
}

// BeginningsMap is the output of the Beginnings Enumerator: for each
// distinct duration present in the input, the set of minutes at which an
// activity of that duration could legally begin (§3).
type BeginningsMap map[uint16]Beginnings

func (m BeginningsMap) clone() BeginningsMap {
	out := make(BeginningsMap, len(m))
	for d, b := range m {
		out[d] = b.clone()
	}
	return out
}

// InsertionCost pairs a legal beginning with its bother-count cost
// (§4.2). Lower cost is better; 0 means the placement bothers no
// not-yet-placed incompatible activity.
type InsertionCost struct {
	Beginning uint16
	Cost      uint32
}
