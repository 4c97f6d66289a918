package bot

import (
	"log"
	"sync"

	"go-leech-bot/downloader"
)

// ReporterRegistry routes progress events from the download bridge to the
// status reporter of the job they belong to. Jobs register before submission
// and deregister once terminal, so late events for finished jobs are dropped.
type ReporterRegistry struct {
	mu        sync.Mutex
	reporters map[string]*downloader.StatusReporter
	logger    *log.Logger
}

// NewReporterRegistry creates an empty registry
func NewReporterRegistry(logger *log.Logger) *ReporterRegistry {
	return &ReporterRegistry{
		reporters: make(map[string]*downloader.StatusReporter),
		logger:    logger,
	}
}

// Register binds a job ID to its status reporter
func (r *ReporterRegistry) Register(jobID string, reporter *downloader.StatusReporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reporters[jobID] = reporter
}

// Deregister removes the binding for a job
func (r *ReporterRegistry) Deregister(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reporters, jobID)
}

// Sink returns the progress sink to plug into the download bridge
func (r *ReporterRegistry) Sink() downloader.Sink {
	return func(event downloader.ProgressEvent) {
		r.mu.Lock()
		reporter := r.reporters[event.JobID]
		r.mu.Unlock()

		if reporter == nil {
			return
		}

		if err := reporter.UpdateProgress(event.Percent); err != nil {
			r.logger.Printf("Failed to update progress for job %s: %v", event.JobID, err)
		}
	}
}

// Size returns the number of currently registered jobs
func (r *ReporterRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reporters)
}
