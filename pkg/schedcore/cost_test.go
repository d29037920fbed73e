package schedcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateInsertionCostsRemovesPlacedCollisions(t *testing.T) {
	beginnings := []uint16{0, 10, 20}
	neighbors := []neighbor{{placed: true, beginning: 10, duration: 10}}
	costs := evaluateInsertionCosts(10, beginnings, neighbors)

	var surviving []uint16
	for _, c := range costs {
		surviving = append(surviving, c.Beginning)
	}
	assert.NotContains(t, surviving, uint16(10))
}

func TestEvaluateInsertionCostsNoNeighborsAllZeroCost(t *testing.T) {
	costs := evaluateInsertionCosts(10, []uint16{0, 10, 20}, nil)
	for _, c := range costs {
		assert.Zero(t, c.Cost)
	}
	assert.Len(t, costs, 3)
}

// TestEvaluateInsertionCostsReturnsFullRankedListEvenWhenZeroCostExists
// covers Component C's contract (spec.md §2/§4.2): the evaluator itself
// never prunes non-zero entries. Grounded against
// original_source/felix-data/felix-computation-api/tests/compute_insertion_costs.rs::test_insertion_costs_simplest,
// which asserts compute_insertion_costs returns the full mixed-cost
// ranking, not a zero-only subset.
func TestEvaluateInsertionCostsReturnsFullRankedListEvenWhenZeroCostExists(t *testing.T) {
	beginnings := []uint16{0, 5, 10}
	neighbors := []neighbor{
		{duration: 5, candidateBeginnings: []uint16{0}},
		{duration: 5, candidateBeginnings: []uint16{10}},
	}
	costs := evaluateInsertionCosts(5, beginnings, neighbors)

	byBeginning := make(map[uint16]uint32, len(costs))
	for _, c := range costs {
		byBeginning[c.Beginning] = c.Cost
	}
	assert.Len(t, costs, 3, "the caller decides whether to discard non-zero entries, not the evaluator")
	assert.Zero(t, byBeginning[5])
	assert.NotZero(t, byBeginning[0])
	assert.NotZero(t, byBeginning[10])
}

// TestKeepOnlyZeroCostPrunesWhenAnyZeroExists covers §4.4 step 5's
// mandatory pruning, which is specific to D's node expansion
// (evaluateNodeCosts) and applied on top of the unpruned evaluator output.
func TestKeepOnlyZeroCostPrunesWhenAnyZeroExists(t *testing.T) {
	costs := keepOnlyZeroCost([]InsertionCost{
		{Beginning: 0, Cost: 3333},
		{Beginning: 5, Cost: 0},
		{Beginning: 10, Cost: 3333},
	})
	require.Len(t, costs, 1)
	assert.Equal(t, uint16(5), costs[0].Beginning)
}

func TestKeepOnlyZeroCostIsNoopWhenNoZeroExists(t *testing.T) {
	costs := keepOnlyZeroCost([]InsertionCost{{Beginning: 0, Cost: 10}, {Beginning: 5, Cost: 20}})
	assert.Len(t, costs, 2)
}

func TestKeepOnlyZeroCostHandlesEmptyInput(t *testing.T) {
	assert.Empty(t, keepOnlyZeroCost(nil))
}

func TestEvaluateInsertionCostsEmptyWhenAllBlocked(t *testing.T) {
	beginnings := []uint16{10}
	neighbors := []neighbor{{placed: true, beginning: 10, duration: 10}}
	costs := evaluateInsertionCosts(10, beginnings, neighbors)
	assert.Empty(t, costs)
}

func TestComputeInsertionCostsIgnoresUnresolvableNeighbor(t *testing.T) {
	target := ActivityView{
		Duration:            10,
		Incompatible:        []ActivityID{"gone"},
		CandidateBeginnings: []uint16{0, 10},
	}
	costs := ComputeInsertionCosts(target, func(ActivityID) (ActivityView, bool) {
		return ActivityView{}, false
	})
	assert.Len(t, costs, 2)
}

func TestComputeInsertionCostsPlacedNeighborBlocksOverlap(t *testing.T) {
	placement := TimeInterval{Beginning: 10, End: 20}
	target := ActivityView{
		Duration:            10,
		Incompatible:        []ActivityID{"n"},
		CandidateBeginnings: []uint16{0, 10, 20},
	}
	costs := ComputeInsertionCosts(target, func(id ActivityID) (ActivityView, bool) {
		return ActivityView{ID: "n", Duration: 10, Placement: &placement}, true
	})
	var beginnings []uint16
	for _, c := range costs {
		beginnings = append(beginnings, c.Beginning)
	}
	assert.NotContains(t, beginnings, uint16(10))
}
