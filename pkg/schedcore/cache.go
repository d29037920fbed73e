package schedcore

import (
	"context"
	"runtime"
	"sync"

	"github.com/feliscore/schedcore/internal/parallel"
)

// beginningsCache memoizes ComputeBeginnings results keyed by Schedule.Key
// (§4.3). Writes are insert-if-absent: once a Schedule has been computed,
// later rounds that reference the same Schedule reuse the stored result
// rather than recomputing it.
type beginningsCache struct {
	mu    sync.Mutex
	byKey map[string]BeginningsMap
}

func newBeginningsCache() *beginningsCache {
	return &beginningsCache{byKey: make(map[string]BeginningsMap)}
}

// get returns a defensive copy of the cached BeginningsMap for key, if
// present. The copy is deep: mutating it, nested sets included, does not
// affect the cached value.
func (c *beginningsCache) get(key string) (BeginningsMap, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bm, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	return bm.clone(), true
}

// has reports whether key is already present, without copying the value.
func (c *beginningsCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byKey[key]
	return ok
}

// storeIfAbsent inserts bm under key unless key is already present, per
// the insert-if-absent rule in §5 ("Shared-resource policy").
func (c *beginningsCache) storeIfAbsent(key string, bm BeginningsMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byKey[key]; ok {
		return
	}
	c.byKey[key] = bm
}

// ActivityRegistration is what the surrounding application hands to the
// Core when an activity comes into existence (§6 register_activity): a
// stable id and the slot the Core will publish its insertion costs into
// once computed. The application owns the slot and reads it with
// Snapshot; the Core never exposes a pointer to activity-private state.
type ActivityRegistration struct {
	ID   ActivityID
	Slot *InsertionCostsSlot
}

// activityEntry is the Core's internal bookkeeping for one registered
// activity: the caller-owned slot plus whatever the Core itself needs to
// answer lookups from ComputeInsertionCosts and the fuser (§4.3).
type activityEntry struct {
	slot *InsertionCostsSlot

	duration            uint16
	participants        []Schedule
	incompatible        []ActivityID
	candidateBeginnings []uint16
	placement           *TimeInterval
}

// Dispatcher runs Component B (§4.3): it owns the Beginnings Cache and a
// worker pool, and implements submit_round's three steps — mark concerned
// slots stale, recompute missing Schedules in parallel, then fuse results
// into each concerned activity's insertion-cost slot.
type Dispatcher struct {
	cache *beginningsCache
	pool  *parallel.StaticWorkerPool
	stats *parallel.ExecutionStats

	mu         sync.Mutex
	activities map[ActivityID]*activityEntry
	nextRound  uint64
}

// defaultDispatcherWorkers implements P = max(1, cpu_count - 1) from §4.3.
func defaultDispatcherWorkers() int {
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

// NewDispatcher returns a Dispatcher backed by a worker pool of
// defaultDispatcherWorkers goroutines. Callers that want a specific pool
// size (tests, or a host process reserving cores for other work) should
// use NewDispatcherWithWorkers.
func NewDispatcher() *Dispatcher {
	return NewDispatcherWithWorkers(defaultDispatcherWorkers())
}

// NewDispatcherWithWorkers is NewDispatcher with an explicit worker count.
func NewDispatcherWithWorkers(workers int) *Dispatcher {
	return &Dispatcher{
		cache:      newBeginningsCache(),
		pool:       parallel.NewStaticWorkerPool(workers),
		stats:      parallel.NewExecutionStats(),
		activities: make(map[ActivityID]*activityEntry),
	}
}

// Stats returns the dispatcher's running execution statistics, suitable
// for periodic logging by the host process.
func (d *Dispatcher) Stats() *parallel.ExecutionStats {
	return d.stats
}

// Shutdown stops the dispatcher's worker pool, waiting for any in-flight
// recomputation to finish. No further rounds may be submitted afterward.
func (d *Dispatcher) Shutdown() {
	d.pool.Shutdown()
}

// RegisterActivity adds id to the Core's bookkeeping with the given
// result slot (§6 register_activity). The slot starts stale; it is
// populated by the first round that concerns id.
func (d *Dispatcher) RegisterActivity(reg ActivityRegistration) error {
	if reg.Slot == nil {
		return ErrUnknownActivity
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.activities[reg.ID]; exists {
		return ErrAlreadyRegistered
	}
	d.activities[reg.ID] = &activityEntry{slot: reg.Slot}
	return nil
}

// UnregisterActivity removes id from the Core's bookkeeping (§6
// unregister_activity). Any in-flight round that still concerns id will
// simply find no entry to fuse into and skip it.
func (d *Dispatcher) UnregisterActivity(id ActivityID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.activities, id)
}

// UpdateActivity records id's current static data: the duration, the
// Schedule of every entity it participates in (used to look up candidate
// beginnings per §4.3's cross-participant rule), and the ids it is
// incompatible with. Call this before a round that concerns id; the
// Core does not infer changes on its own (§4.5).
func (d *Dispatcher) UpdateActivity(id ActivityID, duration uint16, participants []Schedule, incompatible []ActivityID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.activities[id]
	if !ok {
		return ErrUnknownActivity
	}
	entry.duration = duration
	entry.participants = append([]Schedule(nil), participants...)
	entry.incompatible = append([]ActivityID(nil), incompatible...)
	return nil
}

// SetPlacement records id's current placement (nil if unplaced), which
// the fuser's ComputeInsertionCosts calls read as an incompatible
// neighbor's state. Autoinsert does not read it; its placements come from
// its own currentPlacements argument.
func (d *Dispatcher) SetPlacement(id ActivityID, placement *TimeInterval) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.activities[id]
	if !ok {
		return ErrUnknownActivity
	}
	entry.placement = placement
	return nil
}

// activityView implements the lookup closure ComputeInsertionCosts needs,
// reading the Dispatcher's bookkeeping under its mutex.
func (d *Dispatcher) activityView(id ActivityID) (ActivityView, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.activities[id]
	if !ok {
		return ActivityView{}, false
	}
	return ActivityView{
		ID:                  id,
		Duration:            entry.duration,
		Incompatible:        entry.incompatible,
		CandidateBeginnings: entry.candidateBeginnings,
		Placement:           entry.placement,
	}, true
}

// SubmitRound runs one round of §4.3's submit(schedules, concerned_activities):
// it stales every concerned activity's slot, computes (or reuses from
// cache) each distinct Schedule in schedules, waits for that work to
// finish, then fuses each concerned activity's candidate beginnings
// across its participants and writes the resulting insertion costs. It
// returns the round number assigned, which callers may use for logging
// or to correlate with SearchNode snapshots taken around the same time.
//
// SubmitRound blocks until the round's fuser has finished writing every
// concerned slot (§5: "no insertion_costs slot is read... until the
// fuser task for that round has completed"). Callers that want
// fire-and-forget semantics should invoke it from their own goroutine.
func (d *Dispatcher) SubmitRound(ctx context.Context, schedules []Schedule, concernedActivityIDs []ActivityID) (uint64, error) {
	round := d.beginRound(concernedActivityIDs)

	distinct := distinctSchedules(schedules)
	var wg sync.WaitGroup
	for _, sch := range distinct {
		key := sch.Key()
		if d.cache.has(key) {
			continue
		}
		wg.Add(1)
		sch := sch
		d.stats.RecordTaskSubmitted()
		err := d.pool.Submit(ctx, func() {
			defer wg.Done()
			bm, err := ComputeBeginnings(sch.WorkHours, sch.Durations)
			if err != nil {
				d.stats.RecordTaskFailed(err)
				return
			}
			d.cache.storeIfAbsent(key, bm)
			d.stats.RecordTaskCompleted()
		})
		if err != nil {
			wg.Done()
			return round, err
		}
	}
	wg.Wait()

	d.fuse(round, concernedActivityIDs)
	return round, nil
}

// beginRound allocates the next round number and marks every concerned
// activity's slot stale under that round, per §4.3 step 1.
func (d *Dispatcher) beginRound(concernedActivityIDs []ActivityID) uint64 {
	d.mu.Lock()
	d.nextRound++
	round := d.nextRound
	entries := make([]*activityEntry, 0, len(concernedActivityIDs))
	for _, id := range concernedActivityIDs {
		if entry, ok := d.activities[id]; ok {
			entries = append(entries, entry)
		}
	}
	d.mu.Unlock()

	for _, entry := range entries {
		entry.slot.markStale(round)
	}
	return round
}

// fuse implements §4.3 step 3: for each concerned activity, intersect its
// participants' BeginningsMaps restricted to its own duration, then
// invoke the Insertion-Cost Evaluator and publish the result.
func (d *Dispatcher) fuse(round uint64, concernedActivityIDs []ActivityID) {
	for _, id := range concernedActivityIDs {
		d.mu.Lock()
		entry, ok := d.activities[id]
		d.mu.Unlock()
		if !ok {
			continue
		}

		candidates := d.intersectParticipants(entry.participants, entry.duration)

		d.mu.Lock()
		entry.candidateBeginnings = candidates
		d.mu.Unlock()

		target := ActivityView{
			ID:                  id,
			Duration:            entry.duration,
			Incompatible:        entry.incompatible,
			CandidateBeginnings: candidates,
			Placement:           entry.placement,
		}
		costs := ComputeInsertionCosts(target, d.activityView)
		entry.slot.publish(round, costs)
	}
}

// intersectParticipants implements the cross-participant intersection
// rule in §4.3: an activity's candidate beginning set is the intersection
// of each participant's BeginningsMap restricted to duration, across all
// participants. An activity with no participants has no legal beginning.
func (d *Dispatcher) intersectParticipants(participants []Schedule, duration uint16) []uint16 {
	if len(participants) == 0 {
		return nil
	}
	var result Beginnings
	for i, sch := range participants {
		bm, ok := d.cache.get(sch.Key())
		if !ok {
			return nil
		}
		set, ok := bm[duration]
		if !ok {
			return nil
		}
		if i == 0 {
			result = set.clone()
			continue
		}
		for s := range result {
			if _, ok := set[s]; !ok {
				delete(result, s)
			}
		}
	}
	return result.Sorted()
}

// distinctSchedules deduplicates schedules by Key, preserving the first
// occurrence of each.
func distinctSchedules(schedules []Schedule) []Schedule {
	seen := make(map[string]struct{}, len(schedules))
	out := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		k := s.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
