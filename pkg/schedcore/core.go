package schedcore

import (
	"context"

	"github.com/google/uuid"
)

// NewActivityID generates a fresh, collision-resistant ActivityID. A
// collaborator is free to use its own id scheme instead — the core
// treats ActivityID as an opaque comparable value (§3) — but most
// callers that don't already have a stable external id for an activity
// should use this rather than rolling their own counter.
func NewActivityID() ActivityID {
	return uuid.NewString()
}

// Core is the scheduling engine's external surface (§6): it owns a
// Dispatcher for round-based insertion-cost recomputation (components A,
// B, C) and exposes Autoinsert as a separate on-demand entry point
// (component D). A collaborator creates one Core per application run
// and registers every activity with it before issuing rounds.
type Core struct {
	dispatcher *Dispatcher
}

// NewCore returns a Core backed by a fresh Dispatcher sized per §4.3's
// P = max(1, cpu_count - 1).
func NewCore() *Core {
	return &Core{dispatcher: NewDispatcher()}
}

// Close shuts down the Core's internal worker pool. No further rounds
// may be submitted afterward; in-flight work is allowed to finish.
func (c *Core) Close() {
	c.dispatcher.Shutdown()
}

// RegisterActivity implements §6's register_activity: it associates id
// with the slot the collaborator will read insertion costs from. The
// slot starts stale and is populated the first time a round concerns
// id.
func (c *Core) RegisterActivity(id ActivityID, slot *InsertionCostsSlot) error {
	return c.dispatcher.RegisterActivity(ActivityRegistration{ID: id, Slot: slot})
}

// UnregisterActivity implements §6's unregister_activity.
func (c *Core) UnregisterActivity(id ActivityID) {
	c.dispatcher.UnregisterActivity(id)
}

// UpdateActivity records id's current static inputs — duration, the
// Schedule of each entity it participates in, and the ids it is
// incompatible with — ahead of a round that concerns it. This is the
// elaboration §6's minimal register/submit_round pair implies but does
// not spell out: the fuser needs each concerned activity's per-
// participant Schedules to perform the cross-participant intersection
// in §4.3, and Schedules carry no activity identity of their own.
func (c *Core) UpdateActivity(id ActivityID, duration uint16, participants []Schedule, incompatible []ActivityID) error {
	return c.dispatcher.UpdateActivity(id, duration, participants, incompatible)
}

// SetPlacement records id's current placement (nil if currently
// unplaced), consumed by the insertion-cost computation of later rounds
// as a neighbor's state. PrepareSearchOrder and Autoinsert do not read
// it; they take placements from their own arguments.
func (c *Core) SetPlacement(id ActivityID, placement *TimeInterval) error {
	return c.dispatcher.SetPlacement(id, placement)
}

// SubmitRound implements §6's submit_round: one round of B's three-step
// protocol — stale the concerned slots, recompute any schedules missing
// from the cache, then fuse and publish insertion costs for every
// concerned activity. The caller is expected to have called
// UpdateActivity/SetPlacement for any activity whose inputs changed
// before calling this. It returns the round number assigned so the
// caller can correlate logs or tests with a particular submission.
func (c *Core) SubmitRound(ctx context.Context, schedules []Schedule, concernedActivityIDs []ActivityID) (uint64, error) {
	return c.dispatcher.SubmitRound(ctx, schedules, concernedActivityIDs)
}

// Autoinsert implements §6's autoinsert entry point: it runs component D
// over the given snapshot, starting from currentPlacements, using the
// Core's own worker count convention (§4.3's P, shared with the
// dispatcher's pool per the design notes on a single process-wide
// pool). Use PrepareSearchOrder to build static and currentPlacements
// from a collaborator's activity records in the required search order.
func (c *Core) Autoinsert(static []ActivityStatic, currentPlacements []uint16) *AutoinsertionHandle {
	return Autoinsert(static, currentPlacements, defaultDispatcherWorkers())
}
