// Package parallel provides the fixed-size worker pool the scheduling
// engine's cache dispatcher uses to fan recomputation work for one round
// out across goroutines, plus lightweight execution statistics for
// observability.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolShutdown is returned by Submit once Shutdown has been called.
var ErrPoolShutdown = fmt.Errorf("worker pool has been shutdown")

// StaticWorkerPool is a fixed-size worker pool: it starts maxWorkers
// goroutines once and never scales them, which is all the cache
// dispatcher needs — round work arrives in a single burst bounded by the
// number of schedules touched, not a sustained stream that would justify
// dynamic scaling.
type StaticWorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewStaticWorkerPool creates a pool with maxWorkers goroutines. If
// maxWorkers <= 0, it defaults to runtime.NumCPU().
func NewStaticWorkerPool(maxWorkers int) *StaticWorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &StaticWorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

func (swp *StaticWorkerPool) worker() {
	defer swp.workerWg.Done()

	for {
		select {
		case task := <-swp.taskChan:
			if task != nil {
				task()
			}
		case <-swp.shutdownChan:
			return
		}
	}
}

// Submit enqueues task for execution by one of the pool's workers. It
// blocks until the task is queued (the queue holds up to twice the worker
// count), ctx is done, or the pool has been shut down.
func (swp *StaticWorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-swp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case swp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-swp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops all workers and waits for in-flight tasks to finish.
// Safe to call more than once.
func (swp *StaticWorkerPool) Shutdown() {
	swp.once.Do(func() {
		close(swp.shutdownChan)
		close(swp.taskChan)
		swp.workerWg.Wait()
	})
}

// GetWorkerCount returns the pool's fixed worker count.
func (swp *StaticWorkerPool) GetWorkerCount() int {
	return swp.maxWorkers
}

// GetQueueDepth returns the number of tasks currently queued but not yet
// picked up by a worker.
func (swp *StaticWorkerPool) GetQueueDepth() int {
	return len(swp.taskChan)
}

// ExecutionStats accumulates counters about tasks the pool has run,
// independent of any one round — a collaborator can keep one instance
// alive for the lifetime of a Dispatcher and log a summary periodically.
type ExecutionStats struct {
	mu sync.RWMutex

	StartTime          time.Time
	TotalExecutionTime time.Duration

	TasksSubmitted int64
	TasksCompleted int64
	TasksFailed    int64

	LastError  error
	ErrorCount int64
}

// NewExecutionStats returns a fresh, zeroed stats collector.
func NewExecutionStats() *ExecutionStats {
	return &ExecutionStats{StartTime: time.Now()}
}

// RecordTaskSubmitted records that a task was handed to the pool.
func (es *ExecutionStats) RecordTaskSubmitted() {
	atomic.AddInt64(&es.TasksSubmitted, 1)
}

// RecordTaskCompleted records that a task finished without error.
func (es *ExecutionStats) RecordTaskCompleted() {
	atomic.AddInt64(&es.TasksCompleted, 1)
}

// RecordTaskFailed records that a task returned an error.
func (es *ExecutionStats) RecordTaskFailed(err error) {
	atomic.AddInt64(&es.TasksFailed, 1)
	atomic.AddInt64(&es.ErrorCount, 1)
	es.mu.Lock()
	es.LastError = err
	es.mu.Unlock()
}

// Snapshot returns a copy of the current counters, safe to read
// concurrently with further Record* calls.
func (es *ExecutionStats) Snapshot() ExecutionStats {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return ExecutionStats{
		StartTime:      es.StartTime,
		TasksSubmitted: atomic.LoadInt64(&es.TasksSubmitted),
		TasksCompleted: atomic.LoadInt64(&es.TasksCompleted),
		TasksFailed:    atomic.LoadInt64(&es.TasksFailed),
		LastError:      es.LastError,
		ErrorCount:     atomic.LoadInt64(&es.ErrorCount),
	}
}

// String renders a one-line human-readable summary.
func (es *ExecutionStats) String() string {
	s := es.Snapshot()
	return fmt.Sprintf("tasks: %d submitted, %d completed, %d failed (last error: %v)",
		s.TasksSubmitted, s.TasksCompleted, s.TasksFailed, s.LastError)
}
