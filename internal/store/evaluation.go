package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
)

// EvaluationStore defines the interface for evaluation persistence.
// Evaluations are written once and never updated.
type EvaluationStore interface {
	// Create saves a new evaluation to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, eval *domain.Evaluation) error

	// GetCurrent retrieves the most recently created succeeded evaluation for
	// the case. Older evaluations are retained as history.
	// Returns ErrEvaluationNotFound if the case has no succeeded evaluation.
	GetCurrent(ctx context.Context, caseID uuid.UUID) (*domain.Evaluation, error)

	// WithTx returns a new EvaluationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EvaluationStore
}
