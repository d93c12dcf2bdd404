package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/komplek-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs queued jobs on a fixed pool and drives scheduled pollers
type Worker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	queue   chan namedJob
	workers int

	pendingMu sync.Mutex
	pending   map[string]bool

	statsMu sync.RWMutex
	stats   WorkerStats
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	Workers       int   `json:"workers"`
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	CoalescedJobs int64 `json:"coalesced_jobs"`
	QueueLength   int   `json:"queue_length"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan namedJob, 64),
		workers: numWorkers,
		pending: make(map[string]bool),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}
	return w
}

// Enqueue adds a job to the pool. While a job with the same name is still queued,
// further submissions are dropped: a burst of change signals yields one refresh.
func (w *Worker) Enqueue(name string, job Job) {
	w.pendingMu.Lock()
	if w.pending[name] {
		w.pendingMu.Unlock()
		w.statsMu.Lock()
		w.stats.CoalescedJobs++
		w.statsMu.Unlock()
		return
	}
	w.pending[name] = true
	w.pendingMu.Unlock()

	select {
	case <-w.ctx.Done():
		w.release(name)
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
		w.release(name)
		w.run(-1, name, job)
	}
}

func (w *Worker) release(name string) {
	w.pendingMu.Lock()
	delete(w.pending, name)
	w.pendingMu.Unlock()
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job := <-w.queue:
			// released before running so a change arriving mid-run schedules another pass
			w.release(job.name)
			w.run(workerID, job.name, job.run)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(-1, name, job)
			}
		}
	}()
}

// Go runs a long-lived loop (e.g. a file watcher) under the worker's lifecycle
func (w *Worker) Go(name string, loop Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := loop(w.ctx); err != nil {
			logger.Error("[Worker] Loop stopped", "job", name, "error", err)
		}
	}()
}

func (w *Worker) run(workerID int, name string, job Job) {
	w.track(func(s *WorkerStats) { s.ActiveJobs++ })
	start := time.Now()
	failed := false

	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Worker] Job panic", "job", name, "panic", r)
			failed = true
		}
		w.track(func(s *WorkerStats) {
			s.ActiveJobs--
			s.CompletedJobs++
			if failed {
				s.FailedJobs++
			}
		})
	}()

	if err := job(w.ctx); err != nil {
		failed = true
		logger.Error("[Worker] Job error", "job", name, "worker", workerID, "error", err)
		return
	}
	logger.Debug("[Worker] Job completed", "job", name, "worker", workerID, "elapsed", time.Since(start))
}

func (w *Worker) track(fn func(s *WorkerStats)) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	fn(&w.stats)
}

// Shutdown gracefully stops all workers and pollers
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.Workers = w.workers
	stats.QueueLength = len(w.queue)
	return stats
}
