package worker

import (
	"context"
	"log/slog"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/platform/logger"
)

// Handler executes one kind of job. Returned errors are classified by the
// processor: wrap with Permanent for terminal failures, return plain errors
// for retryable ones.
type Handler interface {
	Handle(ctx context.Context, job *domain.Job) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, job *domain.Job) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, job *domain.Job) error {
	return f(ctx, job)
}

// Dispatcher routes claimed jobs to the handler registered for their kind.
// Kinds with no registered handler (pdf_generate, email_send) complete as a
// no-op success so they do not sit queued forever; the pass-through is
// logged at WARN. Unknown kinds never reach the dispatcher because the
// enqueue endpoint rejects them.
type Dispatcher struct {
	handlers map[domain.JobKind]Handler
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher with an empty registry.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		handlers: make(map[domain.JobKind]Handler),
		logger:   log.With(slog.String("component", "dispatcher")),
	}
}

// Register binds a handler to a job kind, replacing any previous binding.
func (d *Dispatcher) Register(kind domain.JobKind, handler Handler) {
	if handler == nil {
		panic("handler cannot be nil")
	}
	d.handlers[kind] = handler
}

// Dispatch runs the handler for the job's kind.
func (d *Dispatcher) Dispatch(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	handler, ok := d.handlers[job.Kind]
	if !ok {
		log.Warn("no handler registered for job kind, completing as no-op",
			slog.String("job_id", job.ID.String()),
			slog.String("kind", string(job.Kind)))
		return nil
	}

	return handler.Handle(ctx, job)
}
