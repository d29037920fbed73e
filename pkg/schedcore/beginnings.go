package schedcore

import "sort"

// maxBitsetActivities bounds both the number of activity durations and the
// number of work-hour intervals the feasibility oracle below will reason
// about in one call: both the excluded-activity set and the used-work-hour
// set are tracked as uint32 bitsets. The reference domain keeps n small
// (§9), so this is not a practical limitation.
const maxBitsetActivities = 32

// subsetSum records one subset-sum decomposition of a duration list: the
// sum itself and the bitset of indexes that produced it.
type subsetSum struct {
	sum  uint16
	mask uint32
}

// computeAllSums builds every subset-sum decomposition of durations,
// extending the table one activity at a time, iterating in reverse, per
// §4.1 step 1. len(durations) must not exceed maxBitsetActivities.
func computeAllSums(durations []uint16) []subsetSum {
	sums := []subsetSum{{sum: 0, mask: 0}}
	for i := len(durations) - 1; i >= 0; i-- {
		bit := uint32(1) << uint(i)
		extended := make([]subsetSum, len(sums))
		for j, s := range sums {
			extended[j] = subsetSum{sum: s.sum + durations[i], mask: s.mask | bit}
		}
		sums = append(sums, extended...)
	}
	return sums
}

// bestSubset returns the largest sum <= limit among sums whose mask is
// disjoint from excluded and which contains mustContain, or ok=false if no
// such subset exists.
func bestSubset(sums []subsetSum, limit uint16, excluded uint32, mustContain uint32) (subsetSum, bool) {
	best := subsetSum{}
	found := false
	for _, s := range sums {
		if s.mask&excluded != 0 {
			continue
		}
		if s.mask&mustContain != mustContain {
			continue
		}
		if s.sum > limit {
			continue
		}
		if !found || s.sum > best.sum {
			best = s
			found = true
		}
	}
	return best, found
}

// feasibilityOracle evaluates fits(durations, work_hours, slack, excluded)
// per §4.1 step 2. A work-hour interval is committed to at most one
// subset-sum batch per branch: consuming it for one batch removes it from
// consideration for the rest of that branch, so the oracle never counts a
// single interval's capacity twice. State is memoized on the pair
// (excluded activities, used work hours) — durations is fixed for the
// lifetime of one oracle (built once per candidate beginning); workHours
// are the lengths of the virtual work-hour intervals, sorted descending.
type feasibilityOracle struct {
	durations []uint16
	workHours []uint16
	allSums   []subsetSum
	memo      map[uint64]bool
}

func newFeasibilityOracle(durations, workHours []uint16) *feasibilityOracle {
	wh := append([]uint16(nil), workHours...)
	sort.Slice(wh, func(i, j int) bool { return wh[i] > wh[j] })
	return &feasibilityOracle{
		durations: durations,
		workHours: wh,
		allSums:   computeAllSums(durations),
		memo:      make(map[uint64]bool),
	}
}

func (f *feasibilityOracle) fits(slack int, excludedAct, usedWH uint32) bool {
	n := len(f.durations)
	fullMask := uint32(0)
	if n > 0 {
		fullMask = uint32(1)<<uint(n) - 1
	}
	if excludedAct&fullMask == fullMask {
		return true
	}

	key := uint64(excludedAct) | uint64(usedWH)<<32
	if v, ok := f.memo[key]; ok {
		return v
	}
	// Guard against unbounded recursion on pathological slack values; a
	// negative slack can never recover.
	if slack < 0 {
		f.memo[key] = false
		return false
	}

	maxIdx := -1
	var maxDur uint16
	for i := 0; i < n; i++ {
		if excludedAct&(1<<uint(i)) != 0 {
			continue
		}
		if maxIdx == -1 || f.durations[i] > maxDur {
			maxIdx = i
			maxDur = f.durations[i]
		}
	}

	mustContain := uint32(1) << uint(maxIdx)
	result := false
	for whIdx, wh := range f.workHours {
		whBit := uint32(1) << uint(whIdx)
		if usedWH&whBit != 0 {
			continue
		}
		if maxDur > wh {
			continue
		}
		sub, ok := bestSubset(f.allSums, wh, excludedAct, mustContain)
		if !ok {
			continue
		}
		newExcluded := excludedAct | sub.mask
		newUsedWH := usedWH | whBit
		newSlack := slack - int(wh-sub.sum)
		if newSlack < 0 {
			continue
		}
		if f.fits(newSlack, newExcluded, newUsedWH) {
			result = true
			break
		}
	}
	f.memo[key] = result
	return result
}

// ComputeBeginnings is the Beginnings Enumerator (component A, §4.1). Given
// an entity's work hours and the durations of the activities it
// participates in, it returns, for each distinct duration, the set of
// grid-aligned start minutes at which an activity of that duration could
// begin without making the remaining activities unschedulable.
func ComputeBeginnings(workHours []TimeInterval, durations []uint16) (BeginningsMap, error) {
	// A split of the carved work-hour interval can add one extra entry to
	// the virtual work-hours list the oracle reasons about, so leave a
	// slot of headroom below the bitset width.
	if len(durations) > maxBitsetActivities || len(workHours) >= maxBitsetActivities {
		return nil, ErrTooManyActivities
	}
	for _, iv := range workHours {
		if !iv.Valid() {
			return nil, ErrInvalidInterval
		}
	}
	for _, d := range durations {
		if !validDuration(d) {
			return nil, ErrInvalidDuration
		}
	}

	var totalWork, totalActivities uint16
	for _, iv := range workHours {
		totalWork += iv.Duration()
	}
	for _, d := range durations {
		totalActivities += d
	}
	if totalActivities > totalWork {
		return nil, ErrDurationExceedsCapacity
	}

	result := make(BeginningsMap)
	distinct := distinctDurations(durations)
	for _, d := range distinct {
		result[d] = make(Beginnings)
	}

	for _, d := range distinct {
		reduced := removeOneOccurrence(durations, d)
		var reducedTotal uint16
		for _, r := range reduced {
			reducedTotal += r
		}

		for whIdx, wh := range workHours {
			for s := wh.Beginning; s+d <= wh.End; s += Grid {
				virtual := carveWorkHours(workHours, whIdx, s, d)
				var capacity uint16
				for _, v := range virtual {
					capacity += v
				}
				if capacity < reducedTotal {
					continue
				}
				slack := int(capacity) - int(reducedTotal)
				oracle := newFeasibilityOracle(reduced, virtual)
				if oracle.fits(slack, 0, 0) {
					result[d][s] = struct{}{}
				}
			}
		}
	}
	return result, nil
}

// distinctDurations returns the distinct values in durations, in
// ascending order.
func distinctDurations(durations []uint16) []uint16 {
	seen := make(map[uint16]struct{}, len(durations))
	out := make([]uint16, 0, len(durations))
	for _, d := range durations {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// removeOneOccurrence returns a copy of durations with a single occurrence
// of target removed.
func removeOneOccurrence(durations []uint16, target uint16) []uint16 {
	out := make([]uint16, 0, len(durations)-1)
	removed := false
	for _, d := range durations {
		if !removed && d == target {
			removed = true
			continue
		}
		out = append(out, d)
	}
	return out
}

// carveWorkHours removes the interval [start, start+duration) from
// workHours[idx], which may split it into a left and a right remainder
// (either possibly empty, in which case it is dropped), and returns the
// resulting interval lengths of every work hour (unsplit ones unchanged).
func carveWorkHours(workHours []TimeInterval, idx int, start, duration uint16) []uint16 {
	out := make([]uint16, 0, len(workHours)+1)
	for i, wh := range workHours {
		if i != idx {
			out = append(out, wh.Duration())
			continue
		}
		if left := start - wh.Beginning; left > 0 {
			out = append(out, left)
		}
		if right := wh.End - (start + duration); right > 0 {
			out = append(out, right)
		}
	}
	return out
}
