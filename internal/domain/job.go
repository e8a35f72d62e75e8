package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a job in the queue.
type JobStatus string

// Possible job status values
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobKind is the discriminator selecting which pipeline handles a job.
type JobKind string

// Known job kinds. PDFGenerate and EmailSend are enqueue-able but currently
// have no handler; the dispatcher passes them through as a no-op success.
const (
	JobKindChunkEmbed  JobKind = "chunk_embed"
	JobKindEvaluate    JobKind = "evaluate"
	JobKindPDFGenerate JobKind = "pdf_generate"
	JobKindEmailSend   JobKind = "email_send"
)

// Common validation errors for Job
var (
	ErrEmptyJobID        = errors.New("job ID cannot be empty")
	ErrEmptyJobOrgID     = errors.New("job org ID cannot be empty")
	ErrInvalidJobKind    = errors.New("invalid job kind")
	ErrInvalidJobStatus  = errors.New("invalid job status")
	ErrNegativeAttempts  = errors.New("job attempts cannot be negative")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Job represents a unit of deferred work. Rows are created by an enqueuer,
// mutated only by the claimer and the retry manager, and retained after
// completion as an audit trail.
type Job struct {
	ID        uuid.UUID       `json:"id"`
	Kind      JobKind         `json:"kind"`
	OrgID     uuid.UUID       `json:"org_id"`
	CaseID    *uuid.UUID      `json:"case_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Status    JobStatus       `json:"status"`
	Attempts  int             `json:"attempts"`
	RunAfter  *time.Time      `json:"run_after,omitempty"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewJob creates a queued Job for the given kind, org and optional case.
// It generates a new UUID for the job ID and sets creation/update timestamps.
// Returns an error if validation fails.
func NewJob(kind JobKind, orgID uuid.UUID, caseID *uuid.UUID, payload json.RawMessage) (*Job, error) {
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}

	job := &Job{
		ID:        uuid.New(),
		Kind:      kind,
		OrgID:     orgID,
		CaseID:    caseID,
		Payload:   payload,
		Status:    JobStatusQueued,
		Attempts:  0,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.OrgID == uuid.Nil {
		return ErrEmptyJobOrgID
	}

	if !IsValidJobKind(j.Kind) {
		return ErrInvalidJobKind
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if j.Attempts < 0 {
		return ErrNegativeAttempts
	}

	return nil
}

// CanTransitionTo reports whether moving to the given status is a valid
// lifecycle transition. The only valid transitions are queued→running,
// running→succeeded, running→queued (requeue after transient failure) and
// running→failed (terminal).
func (j *Job) CanTransitionTo(status JobStatus) bool {
	switch j.Status {
	case JobStatusQueued:
		return status == JobStatusRunning
	case JobStatusRunning:
		return status == JobStatusSucceeded ||
			status == JobStatusQueued ||
			status == JobStatusFailed
	default:
		return false
	}
}

// TransitionTo updates the job's status and refreshes UpdatedAt.
// Returns ErrInvalidTransition when the move violates the lifecycle.
func (j *Job) TransitionTo(status JobStatus) error {
	if !j.CanTransitionTo(status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidJobKind checks if the given kind is one of the known job kinds.
func IsValidJobKind(kind JobKind) bool {
	switch kind {
	case JobKindChunkEmbed, JobKindEvaluate, JobKindPDFGenerate, JobKindEmailSend:
		return true
	default:
		return false
	}
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusQueued, JobStatusRunning, JobStatusSucceeded, JobStatusFailed:
		return true
	default:
		return false
	}
}
