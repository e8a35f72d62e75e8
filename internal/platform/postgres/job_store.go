package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

const jobColumns = `id, kind, org_id, case_id, payload, status, attempts, run_after, last_error, created_at, updated_at`

// Enqueue implements store.JobStore.Enqueue
// It saves a new queued job to the database, handling domain validation.
func (s *PostgresJobStore) Enqueue(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during enqueue",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO jobs (id, kind, org_id, case_id, payload, status, attempts, run_after, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Kind,
		job.OrgID,
		job.CaseID,
		[]byte(job.Payload),
		job.Status,
		job.Attempts,
		job.RunAfter,
		nullableString(job.LastError),
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to enqueue job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()),
			slog.String("kind", string(job.Kind)))
		return MapError(err)
	}

	log.Debug("job enqueued",
		slog.String("job_id", job.ID.String()),
		slog.String("kind", string(job.Kind)))
	return nil
}

// Claim implements store.JobStore.Claim
// The select and the running transition happen in one statement: the inner
// select takes row locks with SKIP LOCKED and the update only moves rows that
// are still queued, so overlapping invocations never observe the same job.
func (s *PostgresJobStore) Claim(ctx context.Context, limit int) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = $3
			  AND (run_after IS NULL OR run_after <= $2)
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + jobColumns

	now := time.Now().UTC()

	rows, err := s.db.QueryContext(ctx, query,
		domain.JobStatusRunning,
		now,
		domain.JobStatusQueued,
		limit,
	)
	if err != nil {
		log.Error("failed to claim jobs",
			slog.String("error", err.Error()),
			slog.Int("limit", limit))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan claimed job row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating claimed job rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// RETURNING does not guarantee ordering; claimed batches are small, so
	// restore FIFO order here rather than with a wrapping CTE.
	sortJobsByCreatedAt(jobs)

	log.Debug("claimed jobs",
		slog.Int("count", len(jobs)),
		slog.Int("limit", limit))
	return jobs, nil
}

// GetByID implements store.JobStore.GetByID
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, MapError(err)
	}

	return job, nil
}

// MarkSucceeded implements store.JobStore.MarkSucceeded
func (s *PostgresJobStore) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	return s.updateJob(ctx, id, query,
		domain.JobStatusSucceeded, time.Now().UTC(), id, domain.JobStatusRunning)
}

// Requeue implements store.JobStore.Requeue
func (s *PostgresJobStore) Requeue(ctx context.Context, id uuid.UUID, attempts int, lastError string, runAfter time.Time) error {
	query := `
		UPDATE jobs
		SET status = $1, attempts = $2, last_error = $3, run_after = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`
	return s.updateJob(ctx, id, query,
		domain.JobStatusQueued, attempts, lastError, runAfter, time.Now().UTC(), id, domain.JobStatusRunning)
}

// MarkFailed implements store.JobStore.MarkFailed
func (s *PostgresJobStore) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	query := `
		UPDATE jobs
		SET status = $1, attempts = $2, last_error = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	return s.updateJob(ctx, id, query,
		domain.JobStatusFailed, attempts, lastError, time.Now().UTC(), id, domain.JobStatusRunning)
}

// updateJob runs one of the running→X transition statements. Every such
// statement is conditional on the row still being in running status, which
// keeps the lifecycle invariant enforced at the database boundary too.
func (s *PostgresJobStore) updateJob(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return MapError(err)
	}

	if rowsAffected == 0 {
		log.Warn("no running job found to update",
			slog.String("job_id", id.String()))
		return store.ErrUpdateFailed
	}

	return nil
}

// WithTx implements store.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job       domain.Job
		caseID    uuid.NullUUID
		payload   []byte
		runAfter  sql.NullTime
		lastError sql.NullString
	)

	err := row.Scan(
		&job.ID,
		&job.Kind,
		&job.OrgID,
		&caseID,
		&payload,
		&job.Status,
		&job.Attempts,
		&runAfter,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if caseID.Valid {
		id := caseID.UUID
		job.CaseID = &id
	}
	job.Payload = payload
	if runAfter.Valid {
		t := runAfter.Time
		job.RunAfter = &t
	}
	job.LastError = lastError.String

	return &job, nil
}

func sortJobsByCreatedAt(jobs []*domain.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
