package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
)

// JobStore defines the interface for job queue persistence. The jobs table is
// the sole source of truth for queue state; rows are never deleted.
type JobStore interface {
	// Enqueue saves a new queued job to the store.
	// It handles domain validation internally.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Claim atomically selects up to limit eligible jobs (status queued and
	// run_after unset or due), oldest first, and marks them running. The
	// select and the status update are a single conditional statement, so
	// concurrent invocations never claim the same job twice. A store error
	// aborts the whole call; no partial claim is exposed.
	Claim(ctx context.Context, limit int) ([]*domain.Job, error)

	// GetByID retrieves a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// MarkSucceeded transitions a running job to succeeded.
	MarkSucceeded(ctx context.Context, id uuid.UUID) error

	// Requeue transitions a running job back to queued with the given attempt
	// count, error text and earliest next execution time.
	Requeue(ctx context.Context, id uuid.UUID, attempts int, lastError string, runAfter time.Time) error

	// MarkFailed transitions a running job to its terminal failed status,
	// recording the attempt count and final error. Failed jobs are excluded
	// from all future claims and never get a new run_after.
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error

	// WithTx returns a new JobStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) JobStore
}
