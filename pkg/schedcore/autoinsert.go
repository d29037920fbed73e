package schedcore

import (
	"container/heap"
	"runtime"
	"sort"
	"sync"
)

// ActivityStatic is one activity's immutable view for the autoinsertion
// search (§6): its duration, the indexes (into the same snapshot slice)
// of the activities it is incompatible with, and its candidate
// beginnings. Index k in a SearchNode's Placements corresponds to the
// k-th entry of the snapshot slice the search was given, in search
// order — PrepareSearchOrder produces that order and the corresponding
// snapshot from a caller's activity records.
type ActivityStatic struct {
	Duration                 uint16
	IncompatibleIndexes      []int
	PossibleBeginningsSorted []uint16
}

// SearchNode is an immutable path through the search tree: the
// beginning minute assigned to each of the first len(Placements)
// activities in search order (§3). Score is the node's priority key —
// lower is explored first — computed once at construction time and
// never mutated afterward.
type SearchNode struct {
	Placements []uint16
	Score      uint32
}

// newSearchNode extends parent by one placement, per §4.4 step 5's
// scoring rule: the child's key is (parent_cost + child_cost) / (len +
// 1), where len+1 is the child's own length. Using the child's length
// rather than the parent's avoids the division-by-zero a root node (len
// 0) would otherwise cause; see the design notes on the scoring
// denominator.
// parent may be nil, representing the search root before any activity
// in the free portion of the order has been placed.
func newSearchNode(parent *SearchNode, edgeCost uint32, beginning uint16) *SearchNode {
	var parentScore uint32
	var parentPlacements []uint16
	if parent != nil {
		parentScore = parent.Score
		parentPlacements = parent.Placements
	}
	placements := make([]uint16, len(parentPlacements)+1)
	copy(placements, parentPlacements)
	placements[len(parentPlacements)] = beginning
	return &SearchNode{
		Placements: placements,
		Score:      (parentScore + edgeCost) / uint32(len(placements)),
	}
}

// evaluateNodeCosts computes §4.2's insertion costs for the activity at
// index len(node.Placements), treating the node's placements as the
// beginnings of the already-placed prefix and every other activity as
// unplaced. It is the autoinsertion-specific counterpart to
// ComputeInsertionCosts, operating on index-addressed ActivityStatic
// instead of id-addressed lookups. Unlike ComputeInsertionCosts, it
// applies §4.4 step 5's mandatory zero-cost pruning — D only ever wants
// to branch into zero-cost children when any exist.
func evaluateNodeCosts(static []ActivityStatic, node *SearchNode) []InsertionCost {
	idx := len(node.Placements)
	if idx >= len(static) {
		return nil
	}
	target := static[idx]
	neighbors := make([]neighbor, 0, len(target.IncompatibleIndexes))
	for _, j := range target.IncompatibleIndexes {
		if j < idx {
			neighbors = append(neighbors, neighbor{
				placed:    true,
				beginning: node.Placements[j],
				duration:  static[j].Duration,
			})
		} else if j < len(static) {
			neighbors = append(neighbors, neighbor{
				duration:            static[j].Duration,
				candidateBeginnings: static[j].PossibleBeginningsSorted,
			})
		}
	}
	return keepOnlyZeroCost(evaluateInsertionCosts(target.Duration, target.PossibleBeginningsSorted, neighbors))
}

// nodeHeap is a container/heap of *SearchNode ordered by ascending
// Score — the "NodesSortedByScore" priority container of §4.4. Both a
// worker's local store and the pool's global store are one of these.
type nodeHeap []*SearchNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*SearchNode)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ResultKind distinguishes the three message shapes the autoinsertion
// channel can carry (§4.4, §7).
type ResultKind int

const (
	// ResultPartial reports a new best-so-far partial placement; it may
	// be superseded by a longer partial or a complete solution.
	ResultPartial ResultKind = iota
	// ResultComplete reports every activity placed; terminal.
	ResultComplete
	// ResultNoSolution reports that the search space was exhausted
	// without placing every activity; terminal, not an API error (§7).
	ResultNoSolution
)

// AutoinsertionResult is one message on an AutoinsertionHandle's result
// channel. Placements is nil for ResultNoSolution.
type AutoinsertionResult struct {
	Kind       ResultKind
	Placements []uint16
}

// nIterBeforeSync is N_ITER_BEFORE_SYNC from §4.4 and §9: how many
// expansions a worker performs between attempts to synchronize with the
// shared pool.
const nIterBeforeSync = 1000

// autoinsertionPool is the shared state across all workers of one
// Autoinsert invocation (§4.4 "Pool"): the global priority container,
// worker activity counters, and the single-consumer result channel.
type autoinsertionPool struct {
	mu               sync.Mutex
	global           nodeHeap
	nWorkers         int
	nInactiveWorkers int
	mostInserted     int
	terminal         bool

	results chan AutoinsertionResult
	done    chan struct{}
	once    sync.Once

	static []ActivityStatic
	total  int
}

// sendPartial reports a new best-so-far placement if it is longer than
// anything reported so far. It is idempotent with respect to staler,
// shorter reports (§8 property 6: monotonic progress).
func (p *autoinsertionPool) sendPartial(placements []uint16) {
	p.mu.Lock()
	if p.terminal || len(placements) <= p.mostInserted {
		p.mu.Unlock()
		return
	}
	p.mostInserted = len(placements)
	p.mu.Unlock()

	out := append([]uint16(nil), placements...)
	select {
	case p.results <- AutoinsertionResult{Kind: ResultPartial, Placements: out}:
	case <-p.done:
	}
}

// sendComplete reports a complete solution and terminates every worker.
// Only the first caller's message is ever delivered (§5: "the consumer
// sees at most one CompleteSolution").
func (p *autoinsertionPool) sendComplete(placements []uint16) {
	p.once.Do(func() {
		p.mu.Lock()
		p.terminal = true
		p.mu.Unlock()
		out := append([]uint16(nil), placements...)
		select {
		case p.results <- AutoinsertionResult{Kind: ResultComplete, Placements: out}:
		case <-p.done:
		}
		close(p.done)
	})
}

// sendNoSolution reports search exhaustion and terminates every worker.
func (p *autoinsertionPool) sendNoSolution() {
	p.once.Do(func() {
		p.mu.Lock()
		p.terminal = true
		p.mu.Unlock()
		select {
		case p.results <- AutoinsertionResult{Kind: ResultNoSolution}:
		case <-p.done:
		}
		close(p.done)
	})
}

// mergeAndLoad implements §4.4 worker-loop step 1: fold local's nodes
// into the global store, then try to hand one back. If the combined
// store is empty and this worker was active, it becomes inactive; once
// every worker is inactive the search has failed.
func (p *autoinsertionPool) mergeAndLoad(local *nodeHeap, active *bool) {
	triggerNoSolution := p.mergeAndLoadLocked(local, active)
	if triggerNoSolution {
		p.sendNoSolution()
	}
}

// tryMergeAndLoad is mergeAndLoad's non-blocking counterpart, used for
// the periodic §4.4 step 6 sync point: if the pool is currently locked
// by another worker, it gives up immediately rather than waiting.
func (p *autoinsertionPool) tryMergeAndLoad(local *nodeHeap, active *bool) bool {
	if !p.mu.TryLock() {
		return false
	}
	triggerNoSolution := p.mergeLocked(local, active)
	p.mu.Unlock()
	if triggerNoSolution {
		p.sendNoSolution()
	}
	return true
}

func (p *autoinsertionPool) mergeAndLoadLocked(local *nodeHeap, active *bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mergeLocked(local, active)
}

// mergeLocked assumes p.mu is held by the caller.
func (p *autoinsertionPool) mergeLocked(local *nodeHeap, active *bool) bool {
	for _, n := range *local {
		heap.Push(&p.global, n)
	}
	*local = (*local)[:0]

	if p.global.Len() > 0 {
		n := heap.Pop(&p.global).(*SearchNode)
		heap.Push(local, n)
		if !*active {
			p.nInactiveWorkers--
			*active = true
		}
		return false
	}
	if *active {
		p.nInactiveWorkers++
		*active = false
		return p.nInactiveWorkers == p.nWorkers
	}
	return false
}

// autoinsertionWorker is one of the P goroutines racing to complete the
// search (§4.4 "Worker").
type autoinsertionWorker struct {
	pool   *autoinsertionPool
	local  nodeHeap
	active bool
	nIter  int
}

func (w *autoinsertionWorker) run() {
	for {
		select {
		case <-w.pool.done:
			return
		default:
		}
		w.expandNode()
		select {
		case <-w.pool.done:
			return
		default:
		}
		w.nIter++
		if w.nIter >= nIterBeforeSync {
			if w.pool.tryMergeAndLoad(&w.local, &w.active) {
				w.nIter = 0
			}
		}
	}
}

// expandNode implements §4.4 worker-loop steps 1–5 for one iteration.
func (w *autoinsertionWorker) expandNode() {
	if w.local.Len() == 0 {
		w.pool.mergeAndLoad(&w.local, &w.active)
		w.nIter = 0
		return
	}

	node := heap.Pop(&w.local).(*SearchNode)
	length := len(node.Placements)

	if length == w.pool.total {
		w.pool.sendComplete(node.Placements)
		return
	}

	w.pool.sendPartial(node.Placements)

	// evaluateNodeCosts already applies the zero-cost-child pruning of
	// §4.4 step 5; an empty result means this node is a dead end and is
	// simply dropped.
	for _, c := range evaluateNodeCosts(w.pool.static, node) {
		heap.Push(&w.local, newSearchNode(node, c.Cost, c.Beginning))
	}
}

// AutoinsertionHandle is the caller-facing view of a running search
// (§6's autoinsert return type): a channel of progress/result messages
// and a way to cancel.
type AutoinsertionHandle struct {
	results chan AutoinsertionResult
	done    chan struct{}
	cancel  sync.Once
}

// Recv blocks for the next message. ok is false only if the handle's
// internal channel is closed, which Autoinsert never does on its own —
// callers should stop calling Recv once they observe a ResultComplete
// or ResultNoSolution message.
func (h *AutoinsertionHandle) Recv() (AutoinsertionResult, bool) {
	r, ok := <-h.results
	return r, ok
}

// Terminate cancels the search: workers detect this the same way they
// would detect a dropped receiver (§5) and exit at their next
// opportunity, without producing a final result.
func (h *AutoinsertionHandle) Terminate() {
	h.cancel.Do(func() { close(h.done) })
}

// Autoinsert is the Autoinsertion Engine entry point (component D,
// §4.4, §6). static is the activity snapshot in search order (see
// PrepareSearchOrder); currentPlacements is the beginning minute of
// each already-placed activity, a prefix of static in the same order.
// workers selects the worker pool size; callers that want the
// documented default (max(1, cpu_count-1), reused here since D shares
// the same parallelism budget as B) should pass 0.
func Autoinsert(static []ActivityStatic, currentPlacements []uint16, workers int) *AutoinsertionHandle {
	if workers <= 0 {
		if n := runtime.NumCPU() - 1; n > 0 {
			workers = n
		} else {
			workers = 1
		}
	}

	results := make(chan AutoinsertionResult, 4)
	done := make(chan struct{})
	handle := &AutoinsertionHandle{results: results, done: done}

	total := len(static)
	if total == len(currentPlacements) {
		placements := append([]uint16(nil), currentPlacements...)
		results <- AutoinsertionResult{Kind: ResultComplete, Placements: placements}
		close(done)
		return handle
	}

	root := &SearchNode{Placements: append([]uint16(nil), currentPlacements...)}
	var frontier []*SearchNode
	for _, c := range evaluateNodeCosts(static, root) {
		frontier = append(frontier, newSearchNode(root, c.Cost, c.Beginning))
	}

	for len(frontier) < workers {
		if len(frontier) == 0 {
			if len(root.Placements) > 0 {
				results <- AutoinsertionResult{Kind: ResultPartial, Placements: append([]uint16(nil), root.Placements...)}
			}
			results <- AutoinsertionResult{Kind: ResultNoSolution}
			close(done)
			return handle
		}

		shortest := 0
		for i, n := range frontier {
			if len(n.Placements) < len(frontier[shortest].Placements) {
				shortest = i
			}
		}
		n := frontier[shortest]
		if len(n.Placements) == total {
			results <- AutoinsertionResult{Kind: ResultComplete, Placements: append([]uint16(nil), n.Placements...)}
			close(done)
			return handle
		}
		frontier[shortest] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		for _, c := range evaluateNodeCosts(static, n) {
			frontier = append(frontier, newSearchNode(n, c.Cost, c.Beginning))
		}
	}

	fh := nodeHeap(frontier)
	heap.Init(&fh)

	pool := &autoinsertionPool{
		nWorkers: workers,
		results:  results,
		done:     done,
		static:   static,
		total:    total,
	}

	for i := 0; i < workers; i++ {
		n := heap.Pop(&fh).(*SearchNode)
		w := &autoinsertionWorker{pool: pool, active: true}
		heap.Push(&w.local, n)
		go w.run()
	}
	pool.global = fh

	return handle
}

// ActivityRecord is the collaborator-owned view of one activity that
// PrepareSearchOrder consumes. Callers should include only activities
// that are currently insertable — duration > 0 and at least one
// participant (§4.4 "Goal") — Autoinsert has no way to tell an
// activity with no legal beginnings apart from one that was never
// eligible in the first place.
type ActivityRecord struct {
	ID                  ActivityID
	Duration            uint16
	Incompatible        []ActivityID
	CandidateBeginnings []uint16
	Placement           *TimeInterval
}

// PrepareSearchOrder implements §4.4's "activity ordering" step:
// already-placed activities first (in their given relative order), then
// unplaced activities in descending order of duration × |incompatible|.
// It returns the ActivityStatic snapshot in that order, the activity id
// corresponding to each index (for translating a SearchNode's
// Placements back to per-activity results), and the beginning minutes
// of the already-placed prefix to pass as Autoinsert's currentPlacements.
func PrepareSearchOrder(activities []ActivityRecord) ([]ActivityStatic, []ActivityID, []uint16) {
	placed := make([]ActivityRecord, 0, len(activities))
	unplaced := make([]ActivityRecord, 0, len(activities))
	for _, a := range activities {
		if a.Placement != nil {
			placed = append(placed, a)
		} else {
			unplaced = append(unplaced, a)
		}
	}
	sort.SliceStable(unplaced, func(i, j int) bool {
		si := int(unplaced[i].Duration) * len(unplaced[i].Incompatible)
		sj := int(unplaced[j].Duration) * len(unplaced[j].Incompatible)
		return si > sj
	})

	ordered := make([]ActivityRecord, 0, len(activities))
	ordered = append(ordered, placed...)
	ordered = append(ordered, unplaced...)

	indexOf := make(map[ActivityID]int, len(ordered))
	order := make([]ActivityID, len(ordered))
	for i, a := range ordered {
		order[i] = a.ID
		indexOf[a.ID] = i
	}

	static := make([]ActivityStatic, len(ordered))
	placements := make([]uint16, 0, len(placed))
	for i, a := range ordered {
		incompat := make([]int, 0, len(a.Incompatible))
		for _, id := range a.Incompatible {
			if j, ok := indexOf[id]; ok {
				incompat = append(incompat, j)
			}
		}
		static[i] = ActivityStatic{
			Duration:                 a.Duration,
			IncompatibleIndexes:      incompat,
			PossibleBeginningsSorted: a.CandidateBeginnings,
		}
		if a.Placement != nil {
			placements = append(placements, a.Placement.Beginning)
		}
	}
	return static, order, placements
}
