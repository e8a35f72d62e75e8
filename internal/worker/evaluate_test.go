package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/store"
)

type fakeEvaluator struct {
	err        error
	lastOrgID  uuid.UUID
	lastCaseID uuid.UUID
	calls      int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, orgID, caseID uuid.UUID) error {
	f.calls++
	f.lastOrgID = orgID
	f.lastCaseID = caseID
	return f.err
}

func evaluateJob(t *testing.T, caseID *uuid.UUID) *domain.Job {
	t.Helper()

	job, err := domain.NewJob(domain.JobKindEvaluate, uuid.New(), caseID, nil)
	require.NoError(t, err)
	job.Status = domain.JobStatusRunning
	return job
}

func TestEvaluateHandlerDelegates(t *testing.T) {
	t.Parallel()

	evaluator := &fakeEvaluator{}
	handler := NewEvaluateHandler(evaluator, slog.Default())

	caseID := uuid.New()
	job := evaluateJob(t, &caseID)

	require.NoError(t, handler.Handle(context.Background(), job))
	assert.Equal(t, 1, evaluator.calls)
	assert.Equal(t, job.OrgID, evaluator.lastOrgID)
	assert.Equal(t, caseID, evaluator.lastCaseID)
}

func TestEvaluateHandlerMissingCaseIDIsPermanent(t *testing.T) {
	t.Parallel()

	evaluator := &fakeEvaluator{}
	handler := NewEvaluateHandler(evaluator, slog.Default())

	err := handler.Handle(context.Background(), evaluateJob(t, nil))
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 0, evaluator.calls)
}

func TestEvaluateHandlerCaseNotFoundIsPermanent(t *testing.T) {
	t.Parallel()

	evaluator := &fakeEvaluator{err: fmt.Errorf("fetch case: %w", store.ErrCaseNotFound)}
	handler := NewEvaluateHandler(evaluator, slog.Default())

	caseID := uuid.New()
	err := handler.Handle(context.Background(), evaluateJob(t, &caseID))

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestEvaluateHandlerOtherErrorsAreRetryable(t *testing.T) {
	t.Parallel()

	evaluator := &fakeEvaluator{err: errors.New("model timeout")}
	handler := NewEvaluateHandler(evaluator, slog.Default())

	caseID := uuid.New()
	err := handler.Handle(context.Background(), evaluateJob(t, &caseID))

	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}
