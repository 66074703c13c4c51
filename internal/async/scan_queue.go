package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
	"github.com/DandaAkhilReddy/reddy/internal/store"
)

// Job is one queued scan.
type Job struct {
	JobID   string
	Request *pipeline.ScanRequest
}

// Runner executes one scan end to end.
type Runner interface {
	Run(ctx context.Context, req *pipeline.ScanRequest) (*pipeline.Report, error)
}

// Saver persists completed reports. Optional: a nil Saver means results are
// only logged.
type Saver interface {
	SaveScan(ctx context.Context, report *pipeline.Report) (*store.ScanRecord, error)
}

// ScanQueue runs scans on a bounded in-process worker pool.
type ScanQueue struct {
	runner  Runner
	saver   Saver
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ScanQueue)

func WithWorkers(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithScanTimeout(d time.Duration) Option {
	return func(q *ScanQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewScanQueue(runner Runner, saver Saver, logger *slog.Logger, opts ...Option) *ScanQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ScanQueue{
		runner:  runner,
		saver:   saver,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScanQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ScanQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	report, err := q.runner.Run(ctx, job.Request)
	if err != nil {
		q.logger.Error("scan failed", "worker_id", workerID, "job_id", job.JobID, "error", err)
		return
	}
	if q.saver != nil {
		if _, err := q.saver.SaveScan(ctx, report); err != nil {
			q.logger.Error("scan save failed", "worker_id", workerID, "job_id", job.JobID, "error", err)
			return
		}
	}
	q.logger.Info("scan processed",
		"worker_id", workerID,
		"job_id", job.JobID,
		"signature", report.Signature,
		"low_confidence", report.LowConfidence,
	)
}

func (q *ScanQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.JobID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued scan", "job_id", job.JobID)
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", job.JobID)
		q.ch <- job
	}
	return nil
}

func (q *ScanQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
