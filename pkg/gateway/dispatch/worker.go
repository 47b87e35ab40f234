package dispatch

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	fmtjson "github.com/vpbank/intellivue-gateway/format/json"
	"github.com/vpbank/intellivue-gateway/models"
)

// webhookJob is one subscriber POST to perform.
type webhookJob struct {
	url     string
	payload models.WebhookPayload
}

// WorkerPool fans webhookJob values out to a fixed number of goroutines,
// mirroring poller.WorkerPool: a buffered jobs channel, Submit/TrySubmit, and
// Stop draining via wg.Wait after close(jobs). Explicitly NOT one goroutine
// per POST.
type WorkerPool struct {
	numWorkers int
	client     *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	formatter  *fmtjson.JSONFormatter

	jobs chan webhookJob
	wg   sync.WaitGroup
}

// NewWorkerPool creates a pool of numWorkers goroutines, each POSTing jobs
// with the given per-request timeout. numWorkers defaults to 16 when <= 0.
func NewWorkerPool(numWorkers int, timeout time.Duration, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 16
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		client:     &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger,
		formatter:  fmtjson.New(fmtjson.Config{}, logger),
		jobs:       make(chan webhookJob, numWorkers*4),
	}
}

// Start launches the worker goroutines. They run until ctx is cancelled or
// Stop is called.
func (w *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		go w.worker(ctx)
	}
}

// Submit enqueues a job, blocking if the channel is full.
func (w *WorkerPool) Submit(job webhookJob) {
	w.jobs <- job
}

// TrySubmit enqueues a job without blocking, returning false if the channel
// is full.
func (w *WorkerPool) TrySubmit(job webhookJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop closes the job channel and waits for every worker to drain.
func (w *WorkerPool) Stop() {
	close(w.jobs)
	w.wg.Wait()
}

func (w *WorkerPool) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.post(ctx, job)
		case <-ctx.Done():
			return
		}
	}
}

// post sends one webhook POST. Failures are logged and never retried within
// the same poll cycle: the next poll carries fresh data.
func (w *WorkerPool) post(ctx context.Context, job webhookJob) {
	body, err := w.formatter.Format(&job.payload)
	if err != nil {
		w.logger.Error("dispatch: marshal webhook payload", "url", job.url, "error", err.Error())
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, job.url, bytes.NewReader(body))
	if err != nil {
		w.logger.Error("dispatch: build webhook request", "url", job.url, "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("dispatch: webhook post failed", "url", job.url, "error", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.logger.Warn("dispatch: webhook rejected", "url", job.url, "status", resp.StatusCode)
	}
}
