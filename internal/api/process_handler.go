package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/devschro/next-precedent/internal/api/shared"
	"github.com/devschro/next-precedent/internal/platform/logger"
)

// BatchProcessor runs one worker pass and reports how many jobs it claimed.
// It is satisfied by worker.Processor.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context) (int, error)
}

// ProcessHandler exposes the worker entrypoint: each authenticated GET
// claims and processes one batch of due jobs.
type ProcessHandler struct {
	processor BatchProcessor
	logger    *slog.Logger
}

// NewProcessHandler creates a process handler with the given dependencies.
func NewProcessHandler(processor BatchProcessor, log *slog.Logger) *ProcessHandler {
	if processor == nil {
		panic("processor cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &ProcessHandler{
		processor: processor,
		logger:    log.With(slog.String("component", "process_handler")),
	}
}

// processResponse is the worker entrypoint's success body.
type processResponse struct {
	Picked int `json:"picked"`
}

// Process handles GET /api/cron/process.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	picked, err := h.processor.ProcessBatch(r.Context())
	if err != nil {
		log.Error("worker pass failed to claim jobs",
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to process jobs")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, processResponse{Picked: picked})
}
