package schedcore

import "sync"

// ActivityID is the stable opaque handle an activity keeps for the
// lifetime of the application run (§3). The core never interprets it; it
// only uses it as a map key and to report identities back to the caller.
type ActivityID = string

// EntityID identifies a participant (person or resource). Like
// ActivityID, the core treats it as an opaque comparable value.
type EntityID = string

// InsertionCostsSlot is the shared, mutex-guarded handle between the Core
// and its worker pool described in §3 and §9: readers observe either the
// previous complete value or a freshly published one, never a torn write.
// A round-number guard implements the staleness rule in §4.3/§4.5: a write
// is only accepted if it belongs to the round that most recently
// invalidated the slot, so a write from a superseded round is silently
// discarded.
type InsertionCostsSlot struct {
	mu           sync.Mutex
	pendingRound uint64
	published    bool
	costs        []InsertionCost
}

// NewInsertionCostsSlot returns an empty, stale slot.
func NewInsertionCostsSlot() *InsertionCostsSlot {
	return &InsertionCostsSlot{}
}

// markStale invalidates the slot for the given round; any write belonging
// to an earlier round will now be rejected by publish.
func (s *InsertionCostsSlot) markStale(round uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRound = round
	s.published = false
	s.costs = nil
}

// publish writes costs into the slot if round is still the round the slot
// is currently waiting on. It reports whether the write was accepted.
func (s *InsertionCostsSlot) publish(round uint64, costs []InsertionCost) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if round != s.pendingRound {
		return false
	}
	s.costs = costs
	s.published = true
	return true
}

// Snapshot returns a defensive copy of the slot's current value. The
// second return value is false while the slot is stale (recomputing).
func (s *InsertionCostsSlot) Snapshot() ([]InsertionCost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.published {
		return nil, false
	}
	out := make([]InsertionCost, len(s.costs))
	copy(out, s.costs)
	return out, true
}
