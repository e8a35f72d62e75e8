package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// ProcessorConfig carries the retry and timing policy for the processor.
type ProcessorConfig struct {
	// BatchSize is the maximum number of jobs claimed per run.
	BatchSize int

	// MaxAttempts is the attempt count at which a transiently failing job
	// becomes terminally failed.
	MaxAttempts int

	// RetryDelay is the fixed delay before a requeued job becomes eligible
	// again. Backoff is deliberately flat, not exponential.
	RetryDelay time.Duration

	// JobTimeout bounds the wall-clock execution of a single job.
	JobTimeout time.Duration
}

// Processor drives one worker pass: claim a batch of jobs, run each one
// sequentially through the dispatcher, and record the outcome. No error
// escapes a pass; every failure ends up on the job row.
type Processor struct {
	jobs       store.JobStore
	dispatcher *Dispatcher
	cfg        ProcessorConfig
	logger     *slog.Logger
}

// NewProcessor creates a processor with the given dependencies.
func NewProcessor(jobs store.JobStore, dispatcher *Dispatcher, cfg ProcessorConfig, log *slog.Logger) *Processor {
	if jobs == nil {
		panic("jobs cannot be nil")
	}

	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}

	if cfg.BatchSize <= 0 {
		panic("batch size must be positive")
	}

	if cfg.MaxAttempts <= 0 {
		panic("max attempts must be positive")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Processor{
		jobs:       jobs,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     log.With(slog.String("component", "processor")),
	}
}

// ProcessBatch claims up to BatchSize due jobs and runs them to completion,
// strictly in claim order. It returns the number of jobs claimed. Handler
// failures are absorbed into job state; only a claim failure is returned
// as an error.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	jobs, err := p.jobs.Claim(ctx, p.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	for _, job := range jobs {
		p.processJob(ctx, job)
	}

	if len(jobs) > 0 {
		log.Info("worker pass complete", slog.Int("picked", len(jobs)))
	}
	return len(jobs), nil
}

// processJob runs a single claimed job and records its outcome. The retry
// policy: success marks the job succeeded; a permanent error fails it
// immediately; a transient error requeues it with a fixed delay until the
// attempt budget is spent, after which it is terminally failed.
func (p *Processor) processJob(ctx context.Context, job *domain.Job) {
	log := logger.FromContextOrDefault(ctx, p.logger).With(
		slog.String("job_id", job.ID.String()),
		slog.String("kind", string(job.Kind)))

	jobCtx := ctx
	if p.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.cfg.JobTimeout)
		defer cancel()
	}

	handlerErr := p.dispatcher.Dispatch(jobCtx, job)
	if handlerErr == nil {
		if err := p.jobs.MarkSucceeded(ctx, job.ID); err != nil {
			log.Error("failed to mark job succeeded",
				slog.String("error", err.Error()))
		}
		return
	}

	attempts := job.Attempts + 1

	switch {
	case IsPermanent(handlerErr):
		log.Warn("job failed permanently",
			slog.Int("attempts", attempts),
			slog.String("error", handlerErr.Error()))
		if err := p.jobs.MarkFailed(ctx, job.ID, attempts, handlerErr.Error()); err != nil {
			log.Error("failed to mark job failed",
				slog.String("error", err.Error()))
		}

	case attempts >= p.cfg.MaxAttempts:
		log.Warn("job exhausted retry attempts",
			slog.Int("attempts", attempts),
			slog.String("error", handlerErr.Error()))
		if err := p.jobs.MarkFailed(ctx, job.ID, attempts, handlerErr.Error()); err != nil {
			log.Error("failed to mark job failed",
				slog.String("error", err.Error()))
		}

	default:
		runAfter := time.Now().UTC().Add(p.cfg.RetryDelay)
		log.Info("job requeued after transient failure",
			slog.Int("attempts", attempts),
			slog.Time("run_after", runAfter),
			slog.String("error", handlerErr.Error()))
		if err := p.jobs.Requeue(ctx, job.ID, attempts, handlerErr.Error(), runAfter); err != nil {
			log.Error("failed to requeue job",
				slog.String("error", err.Error()))
		}
	}
}
