package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EvaluationStatus represents the state of a persisted evaluation.
type EvaluationStatus string

// Possible evaluation status values. Rows are written once with their final
// status and never mutated afterwards.
const (
	EvaluationStatusSucceeded EvaluationStatus = "succeeded"
	EvaluationStatusFailed    EvaluationStatus = "failed"
)

// Common validation errors for Evaluation
var (
	ErrEmptyEvaluationID     = errors.New("evaluation ID cannot be empty")
	ErrEmptyEvaluationOrgID  = errors.New("evaluation org ID cannot be empty")
	ErrEmptyEvaluationCaseID = errors.New("evaluation case ID cannot be empty")
	ErrEmptyEvaluationOutput = errors.New("evaluation output cannot be empty")
)

// Evaluation is the structured output of a case assessment. Readers select
// the single most-recent succeeded evaluation per case as "current"; older
// rows are retained as history.
type Evaluation struct {
	ID               uuid.UUID        `json:"id"`
	OrgID            uuid.UUID        `json:"org_id"`
	CaseID           uuid.UUID        `json:"case_id"`
	Status           EvaluationStatus `json:"status"`
	Output           json.RawMessage  `json:"output"`
	ModelInfo        json.RawMessage  `json:"model_info"`
	RetrievalContext json.RawMessage  `json:"retrieval_context"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewEvaluation creates a succeeded Evaluation row for the given case.
// Returns an error if validation fails.
func NewEvaluation(orgID, caseID uuid.UUID, output, modelInfo, retrievalContext json.RawMessage) (*Evaluation, error) {
	eval := &Evaluation{
		ID:               uuid.New(),
		OrgID:            orgID,
		CaseID:           caseID,
		Status:           EvaluationStatusSucceeded,
		Output:           output,
		ModelInfo:        modelInfo,
		RetrievalContext: retrievalContext,
		CreatedAt:        time.Now().UTC(),
	}

	if err := eval.Validate(); err != nil {
		return nil, err
	}

	return eval, nil
}

// Validate checks if the Evaluation has valid data.
func (e *Evaluation) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEvaluationID
	}

	if e.OrgID == uuid.Nil {
		return ErrEmptyEvaluationOrgID
	}

	if e.CaseID == uuid.Nil {
		return ErrEmptyEvaluationCaseID
	}

	if len(e.Output) == 0 {
		return ErrEmptyEvaluationOutput
	}

	return nil
}
