package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medidata/dataset-system/internal/api/metrics"
	"github.com/medidata/dataset-system/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
)

// Dispatcher runs ingestion jobs on a fixed worker pool. Uploads are
// acknowledged with 202 before any processing happens; workers drain the
// queue in the background. Jobs are independent, so no ordering is enforced
// across them.
type Dispatcher struct {
	jobs       chan ports.IngestJob
	service    ports.IngestService
	numWorkers int
	log        zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.IngestService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{
		jobs:       make(chan ports.IngestJob, channelBuffer),
		service:    service,
		numWorkers: numWorkers,
		log:        log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// a job already dequeued runs to completion.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.numWorkers; i++ {
		go d.runWorker(ctx, i)
	}
}

// Enqueue hands a job to the worker pool. Non-blocking up to channelBuffer
// capacity.
func (d *Dispatcher) Enqueue(job ports.IngestJob) {
	d.jobs <- job
	metrics.IngestQueueDepth.Set(float64(len(d.jobs)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-d.jobs:
			if !ok {
				return
			}
			metrics.IngestQueueDepth.Set(float64(len(d.jobs)))
			if err := d.service.Process(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("job_id", job.ID).
					Str("dataset", job.Name).
					Int("worker_id", id).
					Msg("ingestion job failed")
			}
		}
	}
}
