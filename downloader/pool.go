package downloader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultWorkers is the default number of concurrent transfer workers
	DefaultWorkers = 3

	// DefaultQueueSize bounds the submission queue. Submissions beyond it
	// are rejected rather than queued indefinitely.
	DefaultQueueSize = 32
)

var (
	// ErrQueueFull is returned by Submit when the submission queue is at capacity
	ErrQueueFull = errors.New("downloader: submission queue is full")

	// ErrPoolClosed is returned by Submit after Shutdown has been called
	ErrPoolClosed = errors.New("downloader: pool is shut down")
)

// Pool executes download jobs on a fixed set of workers. Each job runs to
// completion on one worker; an error or panic in one job never affects the
// others or the pool's ability to accept further work.
type Pool struct {
	engine *Engine
	bridge *Bridge
	logger *log.Logger

	jobs chan pooledJob
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type pooledJob struct {
	id   string
	req  Request
	done chan Result
}

// NewPool creates a pool and starts its workers. workers and queueSize fall
// back to the package defaults when non-positive.
func NewPool(engine *Engine, bridge *Bridge, workers, queueSize int, logger *log.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = log.Default()
	}

	p := &Pool{
		engine: engine,
		bridge: bridge,
		logger: logger,
		jobs:   make(chan pooledJob, queueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Submit enqueues a download job and returns a handle carrying its ID and
// result channel. Returns ErrQueueFull when the queue is at capacity and
// ErrPoolClosed after Shutdown.
func (p *Pool) Submit(req Request) (*JobHandle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	job := pooledJob{
		id:   uuid.NewString(),
		req:  req,
		done: make(chan Result, 1),
	}

	select {
	case p.jobs <- job:
	default:
		p.mu.Unlock()
		return nil, ErrQueueFull
	}
	p.mu.Unlock()

	p.logger.Printf("Job %s queued: %s", job.id, req.URL)
	return &JobHandle{ID: job.id, Done: job.done}, nil
}

// Shutdown stops accepting new jobs and waits for every in-flight and queued
// job to reach a terminal state. In-flight transfers are drained, not aborted.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Printf("Download pool drained")
}

// worker executes jobs one at a time until the queue is closed
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		p.logger.Printf("Worker %d picked up job %s", id, job.id)
		p.run(job)
	}
}

// run executes a single job with panic isolation. The job's progress events
// are flushed through the bridge before the result is delivered.
func (p *Pool) run(job pooledJob) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("Job %s panicked: %v", job.id, r)
			p.finish(job, Result{
				JobID: job.id,
				Err:   NewDownloadError(ErrorUnknown, fmt.Sprintf("job panicked: %v", r)),
			})
		}
	}()

	var onProgress ProgressFunc
	if p.bridge != nil {
		onProgress = p.bridge.ProgressFunc(job.id)
	}

	path, err := p.engine.Download(context.Background(), job.id, job.req, onProgress)
	p.finish(job, Result{JobID: job.id, Path: path, Err: err})
}

func (p *Pool) finish(job pooledJob, result Result) {
	if p.bridge != nil {
		p.bridge.Finish(job.id)
	}
	job.done <- result
}
