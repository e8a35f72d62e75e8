package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/devschro/next-precedent/internal/api/middleware"
	"github.com/devschro/next-precedent/internal/api/shared"
)

// RouterDeps carries everything NewRouter needs to assemble the worker's
// HTTP surface.
type RouterDeps struct {
	ProcessHandler    *ProcessHandler
	JobHandler        *JobHandler
	EvaluationHandler *EvaluationHandler
	Logger            *slog.Logger

	// Secret guards every /api route; only /health is public.
	Secret func(http.Handler) http.Handler
}

// NewRouter assembles the HTTP routes: the authenticated worker entrypoint
// and enqueue seam under /api, and an unauthenticated health check.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apimiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.Secret)
		r.Get("/cron/process", deps.ProcessHandler.Process)
		r.Post("/jobs", deps.JobHandler.Enqueue)
		r.Get("/jobs/{jobID}", deps.JobHandler.Get)
		r.Get("/cases/{caseID}/evaluation", deps.EvaluationHandler.GetCurrent)
	})

	return r
}
