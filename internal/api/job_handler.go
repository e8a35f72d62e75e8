package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/api/shared"
	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// JobHandler exposes the enqueue seam used by the web API layer.
type JobHandler struct {
	jobs   store.JobStore
	logger *slog.Logger
}

// NewJobHandler creates a job handler with the given dependencies.
func NewJobHandler(jobs store.JobStore, log *slog.Logger) *JobHandler {
	if jobs == nil {
		panic("jobs cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &JobHandler{
		jobs:   jobs,
		logger: log.With(slog.String("component", "job_handler")),
	}
}

// enqueueRequest is the POST /api/jobs body.
type enqueueRequest struct {
	Kind    string          `json:"kind"`
	OrgID   uuid.UUID       `json:"org_id"`
	CaseID  *uuid.UUID      `json:"case_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// enqueueResponse is the successful enqueue body.
type enqueueResponse struct {
	ID uuid.UUID `json:"id"`
}

// Enqueue handles POST /api/jobs. Unknown kinds are rejected here at the
// boundary; known kinds without a worker handler are still accepted and
// pass through the dispatcher as a no-op.
func (h *JobHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind := domain.JobKind(req.Kind)
	if !domain.IsValidJobKind(kind) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown job kind")
		return
	}

	if req.OrgID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "org_id is required")
		return
	}

	if err := validateKindPayload(kind, req); err != "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, err)
		return
	}

	job, err := domain.NewJob(kind, req.OrgID, req.CaseID, req.Payload)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job")
		return
	}

	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		log.Error("failed to enqueue job",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	log.Info("job enqueued",
		slog.String("job_id", job.ID.String()),
		slog.String("kind", string(kind)))
	shared.RespondWithJSON(w, r, http.StatusCreated, enqueueResponse{ID: job.ID})
}

// jobResponse is the GET /api/jobs/{jobID} body. It exposes queue state
// for status polling; the payload itself is not echoed back.
type jobResponse struct {
	ID        uuid.UUID        `json:"id"`
	Kind      domain.JobKind   `json:"kind"`
	Status    domain.JobStatus `json:"status"`
	Attempts  int              `json:"attempts"`
	LastError string           `json:"last_error,omitempty"`
	RunAfter  *time.Time       `json:"run_after,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Get handles GET /api/jobs/{jobID}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
			return
		}
		log.Error("failed to fetch job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch job")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobResponse{
		ID:        job.ID,
		Kind:      job.Kind,
		Status:    job.Status,
		Attempts:  job.Attempts,
		LastError: job.LastError,
		RunAfter:  job.RunAfter,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	})
}

// validateKindPayload enforces the kind-specific request contract. It
// returns an empty string when the request is acceptable.
func validateKindPayload(kind domain.JobKind, req enqueueRequest) string {
	switch kind {
	case domain.JobKindChunkEmbed:
		if req.CaseID == nil {
			return "case_id is required for chunk_embed jobs"
		}
		var payload struct {
			StoragePath string `json:"storage_path"`
		}
		if len(req.Payload) == 0 {
			return "payload.storage_path is required for chunk_embed jobs"
		}
		if err := json.Unmarshal(req.Payload, &payload); err != nil || payload.StoragePath == "" {
			return "payload.storage_path is required for chunk_embed jobs"
		}
	case domain.JobKindEvaluate:
		if req.CaseID == nil {
			return "case_id is required for evaluate jobs"
		}
	}
	return ""
}
