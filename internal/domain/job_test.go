package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	orgID := uuid.New()
	caseID := uuid.New()

	job, err := NewJob(JobKindChunkEmbed, orgID, &caseID, json.RawMessage(`{"storage_path":"cases/x/a.txt"}`))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, JobStatusQueued, job.Status)
	assert.Equal(t, 0, job.Attempts)
	assert.Nil(t, job.RunAfter)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestNewJobDefaultsPayload(t *testing.T) {
	job, err := NewJob(JobKindEvaluate, uuid.New(), nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(job.Payload))
}

func TestNewJobValidation(t *testing.T) {
	tests := []struct {
		name    string
		kind    JobKind
		orgID   uuid.UUID
		wantErr error
	}{
		{"invalid kind", JobKind("resize_image"), uuid.New(), ErrInvalidJobKind},
		{"empty org", JobKindEvaluate, uuid.Nil, ErrEmptyJobOrgID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJob(tt.kind, tt.orgID, nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJobTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  JobStatus
		to    JobStatus
		valid bool
	}{
		{"queued to running", JobStatusQueued, JobStatusRunning, true},
		{"running to succeeded", JobStatusRunning, JobStatusSucceeded, true},
		{"running to queued", JobStatusRunning, JobStatusQueued, true},
		{"running to failed", JobStatusRunning, JobStatusFailed, true},
		{"queued to succeeded", JobStatusQueued, JobStatusSucceeded, false},
		{"queued to failed", JobStatusQueued, JobStatusFailed, false},
		{"succeeded to running", JobStatusSucceeded, JobStatusRunning, false},
		{"failed to queued", JobStatusFailed, JobStatusQueued, false},
		{"failed to running", JobStatusFailed, JobStatusRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{Status: tt.from}
			assert.Equal(t, tt.valid, job.CanTransitionTo(tt.to))

			err := job.TransitionTo(tt.to)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.to, job.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, job.Status)
			}
		})
	}
}

func TestIsValidJobKind(t *testing.T) {
	for _, kind := range []JobKind{JobKindChunkEmbed, JobKindEvaluate, JobKindPDFGenerate, JobKindEmailSend} {
		assert.True(t, IsValidJobKind(kind), string(kind))
	}
	assert.False(t, IsValidJobKind(JobKind("")))
	assert.False(t, IsValidJobKind(JobKind("unknown")))
}
