package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/store"
)

// Evaluator runs the evaluation pipeline for a case. It is satisfied by
// evaluation.Service.
type Evaluator interface {
	Evaluate(ctx context.Context, orgID, caseID uuid.UUID) error
}

// EvaluateHandler processes evaluate jobs by delegating to the evaluation
// service. Missing case references are permanent failures; everything else
// is left retryable.
type EvaluateHandler struct {
	evaluator Evaluator
	logger    *slog.Logger
}

// NewEvaluateHandler creates an evaluate handler.
func NewEvaluateHandler(evaluator Evaluator, log *slog.Logger) *EvaluateHandler {
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &EvaluateHandler{
		evaluator: evaluator,
		logger:    log.With(slog.String("component", "evaluate_handler")),
	}
}

// Handle implements Handler.
func (h *EvaluateHandler) Handle(ctx context.Context, job *domain.Job) error {
	if job.CaseID == nil {
		return Permanentf("evaluate job %s has no case_id", job.ID)
	}

	if err := h.evaluator.Evaluate(ctx, job.OrgID, *job.CaseID); err != nil {
		if errors.Is(err, store.ErrCaseNotFound) {
			return Permanent(fmt.Errorf("evaluate case %s: %w", job.CaseID, err))
		}
		return fmt.Errorf("evaluate case %s: %w", job.CaseID, err)
	}

	return nil
}
