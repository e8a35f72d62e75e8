package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/api/shared"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// EvaluationHandler exposes the current evaluation per case: the latest
// succeeded row, with older rows retained as history.
type EvaluationHandler struct {
	evals  store.EvaluationStore
	logger *slog.Logger
}

// NewEvaluationHandler creates an evaluation handler with the given dependencies.
func NewEvaluationHandler(evals store.EvaluationStore, log *slog.Logger) *EvaluationHandler {
	if evals == nil {
		panic("evals cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &EvaluationHandler{
		evals:  evals,
		logger: log.With(slog.String("component", "evaluation_handler")),
	}
}

// GetCurrent handles GET /api/cases/{caseID}/evaluation.
func (h *EvaluationHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid case ID")
		return
	}

	eval, err := h.evals.GetCurrent(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, store.ErrEvaluationNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "No evaluation for case")
			return
		}
		log.Error("failed to fetch current evaluation",
			slog.String("error", err.Error()),
			slog.String("case_id", caseID.String()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch evaluation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, eval)
}
