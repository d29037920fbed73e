package schedcore

// neighbor describes one incompatible activity's current state, as seen
// from the activity whose insertion costs are being computed (§4.2).
type neighbor struct {
	placed    bool
	beginning uint16 // valid only if placed
	duration  uint16
	// candidateBeginnings is the neighbor's own legal beginnings (B_X),
	// used for the bother-count only when the neighbor is not yet placed.
	candidateBeginnings []uint16
}

// evaluateInsertionCosts implements §4.2's ranking: it removes beginnings
// that would collide with an already-placed incompatible activity (step
// 1), then scores every surviving beginning by how many of its
// not-yet-placed neighbors' own candidate beginnings it would rule out
// (step 2, the "bother count"), with the 10000/|L_T| normalization. It
// returns the full ranked list — the caller decides whether to keep only
// the zero-cost entries (spec.md's "the caller may discard all non-zero
// entries"); callers for whom that discard is mandatory, namely D's node
// expansion, apply keepOnlyZeroCost themselves.
//
// This is the shared core behind both the public Insertion-Cost Evaluator
// (ComputeInsertionCosts) and the per-node cost evaluation the
// autoinsertion engine performs at each search step — both reduce to the
// same target duration + candidate beginnings + incompatible-neighbor
// view.
func evaluateInsertionCosts(duration uint16, beginnings []uint16, neighbors []neighbor) []InsertionCost {
	if len(beginnings) == 0 {
		return []InsertionCost{}
	}

	blocked := make(map[uint16]bool, len(beginnings))
	offset := duration - Grid // duration is always >= Grid by construction
	for _, nb := range neighbors {
		if !nb.placed {
			continue
		}
		lower := int(nb.beginning) - int(offset)
		upper := int(nb.beginning) + int(nb.duration) // exclusive
		for _, s := range beginnings {
			if int(s) >= lower && int(s) < upper {
				blocked[s] = true
			}
		}
	}

	legal := make([]uint16, 0, len(beginnings))
	for _, s := range beginnings {
		if !blocked[s] {
			legal = append(legal, s)
		}
	}
	if len(legal) == 0 {
		return []InsertionCost{}
	}

	costs := make([]InsertionCost, 0, len(legal))
	for _, s := range legal {
		var bother uint32
		for _, nb := range neighbors {
			if nb.placed {
				continue
			}
			lower := int(s) - int(nb.duration-Grid)
			upper := int(s) + int(duration) // exclusive
			for _, sp := range nb.candidateBeginnings {
				if int(sp) >= lower && int(sp) < upper {
					bother++
				}
			}
		}
		cost := bother * 10000 / uint32(len(legal))
		costs = append(costs, InsertionCost{Beginning: s, Cost: cost})
	}
	return costs
}

// keepOnlyZeroCost implements §4.4 step 5's mandatory pruning: if any
// candidate has zero cost, discard every non-zero one. Unlike
// evaluateInsertionCosts itself, this is specific to D's node expansion,
// not Component C's public ranked-list contract.
func keepOnlyZeroCost(costs []InsertionCost) []InsertionCost {
	if len(costs) == 0 {
		return costs
	}
	minCost := costs[0].Cost
	for _, c := range costs {
		if c.Cost < minCost {
			minCost = c.Cost
		}
	}
	if minCost != 0 {
		return costs
	}
	filtered := costs[:0:0]
	for _, c := range costs {
		if c.Cost == 0 {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// ActivityView is the information the Insertion-Cost Evaluator needs about
// one activity: its own duration and candidate beginnings when it is the
// target, and its placement/candidate-beginnings when it is someone else's
// incompatible neighbor.
type ActivityView struct {
	ID                  ActivityID
	Duration            uint16
	Incompatible        []ActivityID
	CandidateBeginnings []uint16 // sorted ascending; B_T from component A/B
	Placement           *TimeInterval
}

// ComputeInsertionCosts is the Insertion-Cost Evaluator (component C,
// §4.2). lookup resolves an incompatible id to its current ActivityView;
// ids it cannot resolve (already unregistered) are treated as having no
// effect.
func ComputeInsertionCosts(target ActivityView, lookup func(ActivityID) (ActivityView, bool)) []InsertionCost {
	neighbors := make([]neighbor, 0, len(target.Incompatible))
	for _, id := range target.Incompatible {
		view, ok := lookup(id)
		if !ok {
			continue
		}
		n := neighbor{duration: view.Duration}
		if view.Placement != nil {
			n.placed = true
			n.beginning = view.Placement.Beginning
		} else {
			n.candidateBeginnings = view.CandidateBeginnings
		}
		neighbors = append(neighbors, n)
	}
	return evaluateInsertionCosts(target.Duration, target.CandidateBeginnings, neighbors)
}
